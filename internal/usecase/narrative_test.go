package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"insightgo/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	response string
	err      error
	system   string
	user     string
}

func (f *fakeLLM) Complete(_ context.Context, system, user string) (string, error) {
	f.system = system
	f.user = user
	return f.response, f.err
}

func sampleAnalysis() *domain.Analysis {
	return &domain.Analysis{
		Totals:   map[string]float64{"spend": 220, "clicks": 90},
		Trends:   map[string]float64{"spend": 20, "clicks": -20},
		Insights: []string{"Highest performing metric: spend (220.00)"},
		RecommendedCharts: []domain.ChartSpec{
			{Kind: domain.ChartBar, Title: "Metrics Overview", Description: "Comparison of all selected metrics", Metrics: []string{"spend", "clicks"}},
		},
		RowCount: 14,
		Metrics:  []string{"spend", "clicks"},
	}
}

func sampleConfig() *domain.ReportConfig {
	return &domain.ReportConfig{
		Platform:  domain.PlatformMeta,
		Metrics:   []string{"spend", "clicks"},
		Level:     "campaign",
		DateRange: domain.DateRangeLast7,
		Cadence:   domain.CadenceDaily,
		Delivery:  domain.DeliveryLink,
	}
}

func TestParseNarrativeSections(t *testing.T) {
	response := `1. EXECUTIVE SUMMARY:
Overall performance was strong this period.
Spend efficiency improved week over week.

2. KEY INSIGHTS:
- Spend grew 20% while clicks declined
- Cost per click is trending upward

3. ACTIONABLE RECOMMENDATIONS:
1. Shift budget toward the best performing ad sets
2. Refresh underperforming creatives

4. CHART EXPLANATIONS:
The overview bar chart compares totals.`

	sections := parseNarrativeSections(response)

	assert.Equal(t, "Overall performance was strong this period. Spend efficiency improved week over week.", sections.ExecutiveSummary)
	assert.Equal(t, []string{
		"Spend grew 20% while clicks declined",
		"Cost per click is trending upward",
	}, sections.KeyInsights)
	assert.Equal(t, []string{
		"Shift budget toward the best performing ad sets",
		"Refresh underperforming creatives",
	}, sections.Recommendations)
}

func TestParseNarrativeSectionsMarkdownHeadings(t *testing.T) {
	response := `## EXECUTIVE SUMMARY
Solid results across the board.

## Key Insights
* First finding
• Second finding

## Actionable Recommendations
- Only one idea`

	sections := parseNarrativeSections(response)

	assert.Equal(t, "Solid results across the board.", sections.ExecutiveSummary)
	assert.Equal(t, []string{"First finding", "Second finding"}, sections.KeyInsights)
	assert.Equal(t, []string{"Only one idea"}, sections.Recommendations)
}

func TestParseNarrativeSectionsUnstructured(t *testing.T) {
	sections := parseNarrativeSections("The campaign did fine. Nothing to report.")
	assert.Empty(t, sections.ExecutiveSummary)
	assert.Empty(t, sections.KeyInsights)
	assert.Empty(t, sections.Recommendations)
}

func TestExtractBulletPointsIgnoresProse(t *testing.T) {
	points := extractBulletPoints(`Here are some thoughts:
- first
plain prose line
* second
3. third
`)
	assert.Equal(t, []string{"first", "second", "third"}, points)
}

func TestGenerateUsesFallbackOnError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("rate limited")}
	gen := NewNarrativeGenerator(llm, testLogger, testMetrics)

	analysis := sampleAnalysis()
	narrative := gen.Generate(context.Background(), analysis, sampleConfig())

	assert.Contains(t, narrative.ExecutiveSummary, "meta last7 at campaign level processed successfully.")
	assert.Contains(t, narrative.ExecutiveSummary, "Highest total metric: spend=220.")
	assert.Equal(t, analysis.Insights, narrative.KeyInsights)
	require.NotEmpty(t, narrative.Recommendations)
	assert.Contains(t, narrative.Recommendations[len(narrative.Recommendations)-1], "A/B testing")
	require.Len(t, narrative.ChartExplanations, 1)
	assert.Equal(t, "Metrics Overview", narrative.ChartExplanations[0].Title)
	assert.Contains(t, narrative.ChartExplanations[0].Explanation, "spend, clicks")
}

func TestGenerateUsesFallbackWhenNotConfigured(t *testing.T) {
	llm := &fakeLLM{err: domain.ErrLLMNotConfigured}
	gen := NewNarrativeGenerator(llm, testLogger, testMetrics)

	narrative := gen.Generate(context.Background(), sampleAnalysis(), sampleConfig())
	assert.NotEmpty(t, narrative.ExecutiveSummary)
}

func TestGeneratePartialParseKeepsFallbackForMissingSections(t *testing.T) {
	llm := &fakeLLM{response: `EXECUTIVE SUMMARY:
A concise model-written summary.`}
	gen := NewNarrativeGenerator(llm, testLogger, testMetrics)

	analysis := sampleAnalysis()
	narrative := gen.Generate(context.Background(), analysis, sampleConfig())

	assert.Equal(t, "A concise model-written summary.", narrative.ExecutiveSummary)
	// Unparsed sections come from the deterministic fallback.
	assert.Equal(t, analysis.Insights, narrative.KeyInsights)
	assert.NotEmpty(t, narrative.Recommendations)
}

func TestGeneratePromptContainsContext(t *testing.T) {
	llm := &fakeLLM{response: "unstructured"}
	gen := NewNarrativeGenerator(llm, testLogger, testMetrics)

	gen.Generate(context.Background(), sampleAnalysis(), sampleConfig())

	assert.Contains(t, llm.system, "meta campaigns")
	assert.Contains(t, llm.user, "Platform: META")
	assert.Contains(t, llm.user, "Data Points Analyzed: 14 records")
	assert.Contains(t, llm.user, "- SPEND: 220.00")
	assert.Contains(t, llm.user, "- spend: +20.0% change")
	assert.Contains(t, llm.user, "- clicks: -20.0% change")
	assert.Contains(t, llm.user, "EXECUTIVE SUMMARY")
	assert.Contains(t, llm.user, "Metrics Overview")
}

func TestDefaultRecommendationsTrendRules(t *testing.T) {
	analysis := sampleAnalysis()
	analysis.Trends = map[string]float64{"spend": 16, "clicks": -11}

	recs := defaultRecommendations(analysis, sampleConfig())
	joined := strings.Join(recs, "\n")
	assert.Contains(t, joined, "Monitor spending efficiency - spend")
	assert.Contains(t, joined, "Address declining metrics: clicks")
	assert.Contains(t, joined, "Scale successful campaigns - spend")
}
