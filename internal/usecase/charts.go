package usecase

import (
	"bytes"
	"fmt"

	"insightgo/internal/domain"
	"insightgo/pkg/logger"
	"insightgo/pkg/metrics"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 800
	chartHeight = 600
)

// palette applied to chart segments in metric order.
var chartPalette = []drawing.Color{
	drawing.ColorFromHex("3B82F6"),
	drawing.ColorFromHex("EF4444"),
	drawing.ColorFromHex("10B981"),
	drawing.ColorFromHex("F59E0B"),
	drawing.ColorFromHex("8B5CF6"),
	drawing.ColorFromHex("06B6D4"),
	drawing.ColorFromHex("84CC16"),
	drawing.ColorFromHex("F97316"),
	drawing.ColorFromHex("EC4899"),
	drawing.ColorFromHex("6366F1"),
}

// ChartGenerator rasterizes recommended charts to PNG.
type ChartGenerator struct {
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewChartGenerator(logger *logger.Logger, metrics *metrics.Metrics) *ChartGenerator {
	return &ChartGenerator{logger: logger, metrics: metrics}
}

// Generate renders every recommended chart. A chart that fails to
// render is logged and skipped so one bad visualization never sinks
// the whole report.
func (g *ChartGenerator) Generate(analysis *domain.Analysis) []domain.RenderedChart {
	var rendered []domain.RenderedChart
	for _, spec := range analysis.RecommendedCharts {
		png, err := g.render(spec, analysis)
		if err != nil {
			g.metrics.RecordChartRender(string(spec.Kind), "error")
			g.logger.WithError(err).WithField("chart", spec.Title).Error("Failed to render chart, skipping")
			continue
		}
		g.metrics.RecordChartRender(string(spec.Kind), "success")
		rendered = append(rendered, domain.RenderedChart{
			Kind:        spec.Kind,
			Title:       spec.Title,
			Description: spec.Description,
			PNG:         png,
		})
	}
	return rendered
}

func (g *ChartGenerator) render(spec domain.ChartSpec, analysis *domain.Analysis) ([]byte, error) {
	var (
		labels []string
		values []float64
	)
	for _, m := range spec.Metrics {
		total, ok := analysis.Totals[m]
		if !ok {
			continue
		}
		labels = append(labels, MetricLabel(m))
		values = append(values, total)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("chart %q has no renderable metrics", spec.Title)
	}

	switch spec.Kind {
	case domain.ChartBar:
		return renderBarChart(spec.Title, labels, values)
	case domain.ChartPie, domain.ChartDoughnut:
		return renderPieChart(spec.Kind, spec.Title, labels, values)
	case domain.ChartLine:
		return renderLineChart(spec.Title, labels, values)
	default:
		return nil, fmt.Errorf("unsupported chart type: %s", spec.Kind)
	}
}

func renderBarChart(title string, labels []string, values []float64) ([]byte, error) {
	bars := make([]chart.Value, len(values))
	for i, v := range values {
		color := chartPalette[i%len(chartPalette)]
		bars[i] = chart.Value{
			Value: v,
			Label: labels[i],
			Style: chart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 1},
		}
	}

	bc := chart.BarChart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		BarWidth: 60,
		Bars:     bars,
		YAxis: chart.YAxis{
			ValueFormatter: func(v any) string {
				if f, ok := v.(float64); ok {
					return FormatNumber(f)
				}
				return ""
			},
		},
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderPieChart(kind domain.ChartKind, title string, labels []string, values []float64) ([]byte, error) {
	segments := make([]chart.Value, len(values))
	for i, v := range values {
		segments[i] = chart.Value{
			Value: v,
			Label: labels[i],
			Style: chart.Style{
				FillColor:   chartPalette[i%len(chartPalette)],
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		}
	}

	var buf bytes.Buffer
	if kind == domain.ChartDoughnut {
		dc := chart.DonutChart{
			Title:  title,
			Width:  chartWidth,
			Height: chartHeight,
			Values: segments,
		}
		if err := dc.Render(chart.PNG, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	pc := chart.PieChart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Values: segments,
	}
	if err := pc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderLineChart(title string, labels []string, values []float64) ([]byte, error) {
	// The line renderer needs a non-zero x-range. A single trending
	// metric still gets its chart as a flat two-point series.
	if len(values) == 1 {
		labels = append(labels, "")
		values = append(values, values[0])
	}

	xs := make([]float64, len(values))
	ticks := make([]chart.Tick, len(values))
	for i := range values {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: labels[i]}
	}

	lineColor := chartPalette[0]
	lc := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{Ticks: ticks},
		YAxis: chart.YAxis{
			ValueFormatter: func(v any) string {
				if f, ok := v.(float64); ok {
					return FormatNumber(f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    title,
				XValues: xs,
				YValues: values,
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 3,
					FillColor:   lineColor.WithAlpha(25),
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := lc.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
