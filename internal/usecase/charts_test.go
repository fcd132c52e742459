package usecase

import (
	"testing"

	"insightgo/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSkipsFailedChartAndKeepsTheRest(t *testing.T) {
	analysis := &domain.Analysis{
		Totals:  map[string]float64{"spend": 220, "clicks": 90},
		Metrics: []string{"spend", "clicks"},
		RecommendedCharts: []domain.ChartSpec{
			{Kind: domain.ChartBar, Title: "Metrics Overview", Metrics: []string{"spend", "clicks"}},
			// None of these metrics exist in the totals, so this chart
			// cannot render.
			{Kind: domain.ChartDoughnut, Title: "Performance Distribution", Metrics: []string{"conversions"}},
		},
	}

	rendered := NewChartGenerator(testLogger, testMetrics).Generate(analysis)

	require.Len(t, rendered, 1)
	assert.Equal(t, "Metrics Overview", rendered[0].Title)
	assert.Equal(t, domain.ChartBar, rendered[0].Kind)
	assert.NotEmpty(t, rendered[0].PNG)
}

func TestGenerateUnsupportedKindSkipped(t *testing.T) {
	analysis := &domain.Analysis{
		Totals:  map[string]float64{"spend": 220},
		Metrics: []string{"spend"},
		RecommendedCharts: []domain.ChartSpec{
			{Kind: domain.ChartKind("radar"), Title: "Radar", Metrics: []string{"spend"}},
			{Kind: domain.ChartBar, Title: "Metrics Overview", Metrics: []string{"spend"}},
		},
	}

	rendered := NewChartGenerator(testLogger, testMetrics).Generate(analysis)

	require.Len(t, rendered, 1)
	assert.Equal(t, "Metrics Overview", rendered[0].Title)
}

func TestGenerateLineChartWithSingleMetric(t *testing.T) {
	analysis := &domain.Analysis{
		Totals:  map[string]float64{"spend": 220},
		Metrics: []string{"spend"},
		RecommendedCharts: []domain.ChartSpec{
			{Kind: domain.ChartLine, Title: "Trend Analysis", Metrics: []string{"spend"}},
		},
	}

	rendered := NewChartGenerator(testLogger, testMetrics).Generate(analysis)

	require.Len(t, rendered, 1)
	assert.Equal(t, domain.ChartLine, rendered[0].Kind)
	assert.NotEmpty(t, rendered[0].PNG)
}

func TestGenerateAllKinds(t *testing.T) {
	analysis := &domain.Analysis{
		Totals:  map[string]float64{"spend": 220, "clicks": 90, "conversions": 12},
		Metrics: []string{"spend", "clicks", "conversions"},
		RecommendedCharts: []domain.ChartSpec{
			{Kind: domain.ChartBar, Title: "Metrics Overview", Metrics: []string{"spend", "clicks", "conversions"}},
			{Kind: domain.ChartDoughnut, Title: "Performance Distribution", Metrics: []string{"spend", "conversions"}},
			{Kind: domain.ChartPie, Title: "Share", Metrics: []string{"spend", "clicks"}},
			{Kind: domain.ChartLine, Title: "Trend Analysis", Metrics: []string{"spend", "clicks"}},
		},
	}

	rendered := NewChartGenerator(testLogger, testMetrics).Generate(analysis)

	require.Len(t, rendered, 4)
	for _, rc := range rendered {
		assert.NotEmpty(t, rc.PNG, "chart %q produced no image", rc.Title)
	}
}
