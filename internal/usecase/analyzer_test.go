package usecase

import (
	"testing"

	"insightgo/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metaRow(date string, values map[string]any) domain.Row {
	row := domain.Row{"date_start": date}
	for k, v := range values {
		row[k] = v
	}
	return row
}

func tiktokRow(date string, values map[string]any) domain.Row {
	return domain.Row{
		"dimensions": map[string]any{"stat_time_day": date},
		"metrics":    values,
	}
}

func TestAnalyzeTotalsAndRounding(t *testing.T) {
	cfg := &domain.ReportConfig{
		Platform:  domain.PlatformMeta,
		Metrics:   []string{"spend", "clicks"},
		Level:     "campaign",
		DateRange: domain.DateRangeLast7,
	}
	rows := []domain.Row{
		metaRow("2026-08-01", map[string]any{"spend": 1.005, "clicks": 10.0}),
		metaRow("2026-08-02", map[string]any{"spend": 1.005, "clicks": 15.0}),
	}

	analysis := Analyze(rows, cfg)

	assert.Equal(t, 2.01, analysis.Totals["spend"])
	assert.Equal(t, 25.0, analysis.Totals["clicks"])
	assert.Equal(t, 2, analysis.RowCount)
	assert.Equal(t, []string{"spend", "clicks"}, analysis.Metrics)
}

func TestAnalyzeExcludesNonNumericValues(t *testing.T) {
	cfg := &domain.ReportConfig{Metrics: []string{"spend"}}
	rows := []domain.Row{
		metaRow("2026-08-01", map[string]any{"spend": "12.5"}),
		metaRow("2026-08-02", map[string]any{"spend": "not a number"}),
		metaRow("2026-08-03", map[string]any{"spend": nil}),
		metaRow("2026-08-04", map[string]any{}),
	}

	analysis := Analyze(rows, cfg)
	assert.Equal(t, 12.5, analysis.Totals["spend"])
}

func TestAnalyzeTrendFirstVersusLast(t *testing.T) {
	cfg := &domain.ReportConfig{Metrics: []string{"clicks"}}
	// Rows arrive out of order; trend compares earliest vs latest date.
	rows := []domain.Row{
		tiktokRow("2026-08-03", map[string]any{"clicks": "150"}),
		tiktokRow("2026-08-01", map[string]any{"clicks": "100"}),
		tiktokRow("2026-08-02", map[string]any{"clicks": "50"}),
	}

	analysis := Analyze(rows, cfg)
	assert.InDelta(t, 50.0, analysis.Trends["clicks"], 1e-9)
}

func TestAnalyzeTrendEdgeCases(t *testing.T) {
	cfg := &domain.ReportConfig{Metrics: []string{"a", "b", "c"}}
	rows := []domain.Row{
		// "a": single point, no trend. "b": first value is zero, trend
		// pinned to 0. "c": rows without dates contribute no series.
		metaRow("2026-08-01", map[string]any{"a": 5.0, "b": 0.0}),
		metaRow("2026-08-02", map[string]any{"b": 10.0}),
		domain.Row{"c": 1.0},
		domain.Row{"c": 2.0},
	}

	analysis := Analyze(rows, cfg)
	assert.Zero(t, analysis.Trends["a"])
	assert.Zero(t, analysis.Trends["b"])
	assert.Zero(t, analysis.Trends["c"])
	assert.Equal(t, 3.0, analysis.Totals["c"])
}

func TestAnalyzeInsights(t *testing.T) {
	cfg := &domain.ReportConfig{Metrics: []string{"spend", "clicks"}}
	rows := []domain.Row{
		metaRow("2026-08-01", map[string]any{"spend": 100.0, "clicks": 50.0}),
		metaRow("2026-08-07", map[string]any{"spend": 120.0, "clicks": 40.0}),
	}

	analysis := Analyze(rows, cfg)

	require.Len(t, analysis.Insights, 3)
	assert.Equal(t, "Highest performing metric: spend (220.00)", analysis.Insights[0])
	assert.Equal(t, "Growing metrics: spend (+20.0%)", analysis.Insights[1])
	assert.Equal(t, "Declining metrics: clicks (-20.0%)", analysis.Insights[2])
}

func TestRecommendChartsAlwaysIncludesOverviewBar(t *testing.T) {
	charts := recommendCharts([]string{"impressions"}, map[string]float64{"impressions": 0})
	require.Len(t, charts, 1)
	assert.Equal(t, domain.ChartBar, charts[0].Kind)
	assert.Equal(t, "Metrics Overview", charts[0].Title)
}

func TestRecommendChartsDoughnutNeedsCostAndConversion(t *testing.T) {
	trends := map[string]float64{}
	charts := recommendCharts([]string{"spend", "conversions", "impressions"}, trends)
	require.Len(t, charts, 2)
	assert.Equal(t, domain.ChartDoughnut, charts[1].Kind)
	assert.Equal(t, []string{"spend", "conversions"}, charts[1].Metrics)

	// Cost metrics alone do not trigger the breakdown.
	charts = recommendCharts([]string{"spend", "impressions"}, trends)
	assert.Len(t, charts, 1)
}

func TestRecommendChartsLineForMovingMetrics(t *testing.T) {
	trends := map[string]float64{"a": 2.0, "b": -1.5, "c": 0.5, "d": 8.0, "e": 3.0, "f": -9.0}
	charts := recommendCharts([]string{"a", "b", "c", "d", "e", "f"}, trends)

	require.Len(t, charts, 2)
	assert.Equal(t, domain.ChartLine, charts[1].Kind)
	// Capped at four metrics, configured order preserved.
	assert.Equal(t, []string{"a", "b", "d", "e"}, charts[1].Metrics)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	cfg := &domain.ReportConfig{Metrics: []string{"spend", "clicks", "conversions"}}
	rows := []domain.Row{
		metaRow("2026-08-01", map[string]any{"spend": 10.0, "clicks": 100.0, "conversions": 5.0}),
		metaRow("2026-08-02", map[string]any{"spend": 20.0, "clicks": 80.0, "conversions": 7.0}),
	}

	first := Analyze(rows, cfg)
	second := Analyze(rows, cfg)
	assert.Equal(t, first, second)
}

func TestMetricsByTotal(t *testing.T) {
	totals := map[string]float64{"a": 5, "b": 10, "c": 5}
	assert.Equal(t, []string{"b", "a", "c"}, MetricsByTotal([]string{"a", "b", "c"}, totals))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2_500_000, "2.5M"},
		{1_000_000, "1.0M"},
		{12_340, "12.3K"},
		{1_000, "1.0K"},
		{999.99, "999.99"},
		{0.123456, "0.123"},
		{0, "0.00"},
		{-42.5, "-42.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), "FormatNumber(%v)", tt.in)
	}
}

func TestMetricLabel(t *testing.T) {
	assert.Equal(t, "Cost Per Conversion", MetricLabel("cost_per_conversion"))
	assert.Equal(t, "Spend", MetricLabel("spend"))
	assert.Equal(t, "Ctr", MetricLabel("ctr"))
}
