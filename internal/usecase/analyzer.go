package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"insightgo/internal/domain"
)

const float64Epsilon = 2.220446049250313e-16

type seriesPoint struct {
	date  string
	value float64
}

// Analyze derives totals, trends, insights and chart recommendations
// from raw upstream rows. The computation is deterministic: identical
// rows and config always yield an identical analysis.
func Analyze(rows []domain.Row, cfg *domain.ReportConfig) *domain.Analysis {
	totals := make(map[string]float64, len(cfg.Metrics))
	for _, m := range cfg.Metrics {
		totals[m] = 0
	}

	series := make(map[string][]seriesPoint)
	for _, row := range rows {
		reader := domain.ReaderFor(row)
		for _, m := range cfg.Metrics {
			val, ok := reader.MetricValue(m)
			if !ok {
				continue
			}
			totals[m] += val
			if date := reader.Date(); date != "" {
				series[m] = append(series[m], seriesPoint{date: date, value: val})
			}
		}
	}

	for _, m := range cfg.Metrics {
		totals[m] = round2(totals[m])
	}

	trends := make(map[string]float64, len(cfg.Metrics))
	for _, m := range cfg.Metrics {
		points := series[m]
		if len(points) < 2 {
			trends[m] = 0
			continue
		}
		sort.SliceStable(points, func(i, j int) bool { return points[i].date < points[j].date })
		first := points[0].value
		last := points[len(points)-1].value
		if first > 0 {
			trends[m] = (last - first) / first * 100
		} else {
			trends[m] = 0
		}
	}

	insights := buildInsights(cfg.Metrics, totals, trends)

	return &domain.Analysis{
		Totals:            totals,
		Trends:            trends,
		Insights:          insights,
		RecommendedCharts: recommendCharts(cfg.Metrics, trends),
		RowCount:          len(rows),
		Metrics:           append([]string(nil), cfg.Metrics...),
	}
}

func buildInsights(metrics []string, totals, trends map[string]float64) []string {
	var insights []string

	ranked := MetricsByTotal(metrics, totals)
	if len(ranked) > 0 {
		insights = append(insights, fmt.Sprintf("Highest performing metric: %s (%s)", ranked[0], FormatNumber(totals[ranked[0]])))
	}

	var growing, declining []string
	for _, m := range metrics {
		if trends[m] > 5 {
			growing = append(growing, fmt.Sprintf("%s (+%.1f%%)", m, trends[m]))
		} else if trends[m] < -5 {
			declining = append(declining, fmt.Sprintf("%s (%.1f%%)", m, trends[m]))
		}
	}
	if len(growing) > 0 {
		insights = append(insights, "Growing metrics: "+strings.Join(growing, ", "))
	}
	if len(declining) > 0 {
		insights = append(insights, "Declining metrics: "+strings.Join(declining, ", "))
	}

	return insights
}

// recommendCharts picks visualizations from the shape of the data: an
// overview bar chart always, a doughnut when cost and conversion
// metrics coexist, a trend line when any metric moved more than 1%.
func recommendCharts(metrics []string, trends map[string]float64) []domain.ChartSpec {
	charts := []domain.ChartSpec{{
		Kind:        domain.ChartBar,
		Title:       "Metrics Overview",
		Description: "Comparison of all selected metrics",
		Metrics:     append([]string(nil), metrics...),
	}}

	hasCost := false
	hasConversion := false
	for _, m := range metrics {
		if strings.Contains(m, "cost") || strings.Contains(m, "spend") {
			hasCost = true
		}
		if strings.Contains(m, "conversion") || strings.Contains(m, "click") {
			hasConversion = true
		}
	}
	if hasCost && hasConversion {
		var picked []string
		for _, m := range metrics {
			if strings.Contains(m, "spend") || strings.Contains(m, "conversion") || strings.Contains(m, "click") {
				picked = append(picked, m)
			}
		}
		if len(picked) > 5 {
			picked = picked[:5]
		}
		charts = append(charts, domain.ChartSpec{
			Kind:        domain.ChartDoughnut,
			Title:       "Performance Distribution",
			Description: "Breakdown of key performance indicators",
			Metrics:     picked,
		})
	}

	var trending []string
	for _, m := range metrics {
		if math.Abs(trends[m]) > 1 {
			trending = append(trending, m)
		}
	}
	if len(trending) > 0 {
		if len(trending) > 4 {
			trending = trending[:4]
		}
		charts = append(charts, domain.ChartSpec{
			Kind:        domain.ChartLine,
			Title:       "Trend Analysis",
			Description: "Metrics showing significant changes over time",
			Metrics:     trending,
		})
	}

	return charts
}

// MetricsByTotal orders metrics by total descending; ties keep the
// configured order.
func MetricsByTotal(metrics []string, totals map[string]float64) []string {
	ranked := append([]string(nil), metrics...)
	sort.SliceStable(ranked, func(i, j int) bool { return totals[ranked[i]] > totals[ranked[j]] })
	return ranked
}

// FormatNumber renders a metric value for display: millions and
// thousands are abbreviated, sub-unit values keep extra precision.
func FormatNumber(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	case v > 0 && v < 1:
		return fmt.Sprintf("%.3f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// MetricLabel turns a snake_case metric name into a display label.
func MetricLabel(metric string) string {
	words := strings.Split(strings.ReplaceAll(metric, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// round2 rounds half away from zero at two decimals. The epsilon nudge
// keeps values like 2.005 from landing on the wrong side of the
// binary representation.
func round2(v float64) float64 {
	return math.Round((v+float64Epsilon)*100) / 100
}
