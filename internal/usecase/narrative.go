package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"insightgo/internal/domain"
	"insightgo/pkg/logger"
	"insightgo/pkg/metrics"
)

// NarrativeGenerator produces the natural-language layer of a report.
// It asks the LLM for a structured analysis and falls back to
// deterministic text whenever the model is unavailable or its answer
// cannot be parsed. A run never fails because of the narrative.
type NarrativeGenerator struct {
	llm     domain.LLMClient
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewNarrativeGenerator(llm domain.LLMClient, logger *logger.Logger, metrics *metrics.Metrics) *NarrativeGenerator {
	return &NarrativeGenerator{llm: llm, logger: logger, metrics: metrics}
}

func (g *NarrativeGenerator) Generate(ctx context.Context, analysis *domain.Analysis, cfg *domain.ReportConfig) domain.Narrative {
	fallback := g.fallbackNarrative(analysis, cfg)

	response, err := g.llm.Complete(ctx, systemPrompt(cfg), userPrompt(analysis, cfg))
	if err != nil {
		reason := "llm_error"
		if errors.Is(err, domain.ErrLLMNotConfigured) {
			reason = "not_configured"
		} else {
			g.logger.WithContext(ctx).WithError(err).Warn("LLM narrative generation failed, using fallback")
		}
		g.metrics.RecordNarrativeFallback(reason)
		return fallback
	}

	response = strings.TrimSpace(response)
	if response == "" {
		g.metrics.RecordNarrativeFallback("empty_response")
		return fallback
	}

	parsed := parseNarrativeSections(response)

	// Field-by-field fallback: a partially parseable answer still
	// contributes whatever sections it produced.
	narrative := fallback
	if parsed.ExecutiveSummary != "" {
		narrative.ExecutiveSummary = parsed.ExecutiveSummary
	}
	if len(parsed.KeyInsights) > 0 {
		narrative.KeyInsights = parsed.KeyInsights
	}
	if len(parsed.Recommendations) > 0 {
		narrative.Recommendations = parsed.Recommendations
	}
	return narrative
}

func (g *NarrativeGenerator) fallbackNarrative(analysis *domain.Analysis, cfg *domain.ReportConfig) domain.Narrative {
	explanations := make([]domain.ChartExplanation, len(analysis.RecommendedCharts))
	for i, spec := range analysis.RecommendedCharts {
		explanations[i] = domain.ChartExplanation{
			Title:       spec.Title,
			Explanation: fmt.Sprintf("%s - showing %s", spec.Description, strings.Join(spec.Metrics, ", ")),
		}
	}
	return domain.Narrative{
		ExecutiveSummary:  defaultSummary(analysis, cfg),
		KeyInsights:       analysis.Insights,
		Recommendations:   defaultRecommendations(analysis, cfg),
		ChartExplanations: explanations,
	}
}

func defaultSummary(analysis *domain.Analysis, cfg *domain.ReportConfig) string {
	topMetric := "n/a"
	if ranked := MetricsByTotal(analysis.Metrics, analysis.Totals); len(ranked) > 0 {
		topMetric = fmt.Sprintf("%s=%s", ranked[0], strconv.FormatFloat(analysis.Totals[ranked[0]], 'f', -1, 64))
	}
	return strings.Join([]string{
		fmt.Sprintf("• %s %s at %s level processed successfully.", cfg.Platform, cfg.DateRange, cfg.Level),
		fmt.Sprintf("• Highest total metric: %s.", topMetric),
		"• Review chart for quick relative magnitudes.",
	}, "\n")
}

func defaultRecommendations(analysis *domain.Analysis, cfg *domain.ReportConfig) []string {
	var recs []string

	ranked := MetricsByTotal(analysis.Metrics, analysis.Totals)
	if len(ranked) > 0 && strings.Contains(ranked[0], "spend") {
		recs = append(recs, fmt.Sprintf("Monitor spending efficiency - %s represents %s of total budget allocation", ranked[0], FormatNumber(analysis.Totals[ranked[0]])))
	}

	var decliners, growers []string
	for _, m := range analysis.Metrics {
		if analysis.Trends[m] < -10 {
			decliners = append(decliners, m)
		} else if analysis.Trends[m] > 15 {
			growers = append(growers, m)
		}
	}
	if len(decliners) > 0 {
		recs = append(recs, fmt.Sprintf("Address declining metrics: %s show negative trends", strings.Join(decliners, ", ")))
	}
	if len(growers) > 0 {
		recs = append(recs, fmt.Sprintf("Scale successful campaigns - %s show strong positive momentum", strings.Join(growers, ", ")))
	}

	switch cfg.Platform {
	case domain.PlatformMeta:
		recs = append(recs, "Consider A/B testing different ad creative formats to improve engagement rates")
	case domain.PlatformTikTok:
		recs = append(recs, "Leverage trending hashtags and music to increase organic reach and engagement")
	}

	return recs
}

func systemPrompt(cfg *domain.ReportConfig) string {
	return fmt.Sprintf(`You are an expert digital advertising analyst specializing in %s campaigns.
Your role is to provide actionable insights from advertising performance data.

Key expertise areas:
- Performance marketing metrics and KPIs
- Campaign optimization strategies
- Trend analysis and forecasting
- ROI and efficiency improvements
- Platform-specific best practices

Always provide data-driven, actionable insights that help improve campaign performance.`, cfg.Platform)
}

func userPrompt(analysis *domain.Analysis, cfg *domain.ReportConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze this %s advertising performance data and provide comprehensive insights:\n\n", cfg.Platform)
	fmt.Fprintf(&b, "CAMPAIGN CONTEXT:\n")
	fmt.Fprintf(&b, "- Platform: %s\n", strings.ToUpper(string(cfg.Platform)))
	fmt.Fprintf(&b, "- Time Period: %s\n", strings.Replace(string(cfg.DateRange), "last", "Last ", 1)+" days")
	fmt.Fprintf(&b, "- Analysis Level: %s\n", cfg.Level)
	fmt.Fprintf(&b, "- Data Points Analyzed: %d records\n\n", analysis.RowCount)

	fmt.Fprintf(&b, "PERFORMANCE METRICS:\n")
	for _, m := range analysis.Metrics {
		fmt.Fprintf(&b, "- %s: %s\n", strings.ToUpper(strings.ReplaceAll(m, "_", " ")), FormatNumber(analysis.Totals[m]))
	}

	fmt.Fprintf(&b, "\nTREND ANALYSIS:\n")
	for _, m := range analysis.Metrics {
		trend := analysis.Trends[m]
		sign := ""
		if trend > 0 {
			sign = "+"
		}
		fmt.Fprintf(&b, "- %s: %s%.1f%% change\n", m, sign, trend)
	}

	fmt.Fprintf(&b, "\nPRELIMINARY INSIGHTS:\n")
	for _, insight := range analysis.Insights {
		fmt.Fprintf(&b, "- %s\n", insight)
	}

	chartTitles := make([]string, len(analysis.RecommendedCharts))
	for i, c := range analysis.RecommendedCharts {
		chartTitles[i] = c.Title
	}

	fmt.Fprintf(&b, `
REQUESTED ANALYSIS:
Please provide a comprehensive report with the following sections:

1. EXECUTIVE SUMMARY (3-4 sentences):
   - Overall performance assessment
   - Key wins and concerns
   - Primary takeaways

2. KEY INSIGHTS (3-5 bullet points):
   - Most important findings from the data
   - Performance patterns and anomalies
   - Cost efficiency observations

3. ACTIONABLE RECOMMENDATIONS (3-5 bullet points):
   - Specific optimization opportunities
   - Budget reallocation suggestions
   - Targeting or creative improvements

4. CHART EXPLANATIONS:
   For each chart type: %s
   - Why this visualization is valuable
   - What to look for in the data
   - How to interpret the results

Format your response as a structured analysis that helps drive better campaign performance.`, strings.Join(chartTitles, ", "))

	return b.String()
}

type parsedSections struct {
	ExecutiveSummary string
	KeyInsights      []string
	Recommendations  []string
}

// headingPattern matches section headings as models actually emit them:
// optionally numbered, optionally markdown-prefixed, any case.
var headingPattern = regexp.MustCompile(`(?im)^\s*(?:#+\s*)?(?:\d+\.\s*)?(EXECUTIVE SUMMARY|KEY INSIGHTS|ACTIONABLE RECOMMENDATIONS|CHART EXPLANATIONS)\b[:\s]*`)

var leadingBulletPattern = regexp.MustCompile(`^\s*[-•]\s*`)
var whitespacePattern = regexp.MustCompile(`\s+`)
var numberedBulletPattern = regexp.MustCompile(`^\d+\.\s*`)

// parseNarrativeSections slices the completion into named sections by
// scanning heading positions. Each section body runs to the next
// heading or end of text.
func parseNarrativeSections(response string) parsedSections {
	var sections parsedSections

	matches := headingPattern.FindAllStringSubmatchIndex(response, -1)
	for i, m := range matches {
		name := strings.ToUpper(response[m[2]:m[3]])
		bodyStart := m[1]
		bodyEnd := len(response)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := response[bodyStart:bodyEnd]

		switch name {
		case "EXECUTIVE SUMMARY":
			sections.ExecutiveSummary = cleanupText(body)
		case "KEY INSIGHTS":
			sections.KeyInsights = extractBulletPoints(body)
		case "ACTIONABLE RECOMMENDATIONS":
			sections.Recommendations = extractBulletPoints(body)
		}
	}

	return sections
}

func cleanupText(text string) string {
	text = strings.TrimSpace(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return leadingBulletPattern.ReplaceAllString(text, "")
}

func extractBulletPoints(text string) []string {
	var points []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		isBullet := strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") ||
			strings.HasPrefix(line, "*") || numberedBulletPattern.MatchString(line)
		if !isBullet {
			continue
		}
		line = strings.TrimLeft(line, "-•* ")
		line = numberedBulletPattern.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line != "" {
			points = append(points, line)
		}
	}
	return points
}
