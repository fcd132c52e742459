package usecase

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"insightgo/internal/domain"
)

// HTMLRenderer builds the self-contained report document. Charts are
// inlined as base64 data URIs so the saved HTML file has no external
// references.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

type metricRowView struct {
	Label      string
	Value      string
	TrendIcon  string
	TrendColor string
	TrendText  string
}

type chartView struct {
	Title       string
	Description string
	Image       template.URL
}

type reportView struct {
	Title             string
	GeneratedOn       string
	Level             string
	Platform          string
	RowCount          int
	MetricRows        []metricRowView
	Charts            []chartView
	ExecutiveSummary  template.HTML
	Insights          []template.HTML
	Recommendations   []template.HTML
	ChartExplanations []domain.ChartExplanation
}

// Render produces the full HTML report for one run.
func (r *HTMLRenderer) Render(cfg *domain.ReportConfig, analysis *domain.Analysis, charts []domain.RenderedChart, narrative domain.Narrative, now time.Time) (string, error) {
	view := reportView{
		Title:             fmt.Sprintf("📊 %s Insight Report - %s", strings.ToUpper(string(cfg.Platform)), strings.ToUpper(string(cfg.DateRange))),
		GeneratedOn:       now.Format("Monday, January 2, 2006"),
		Level:             cfg.Level,
		Platform:          strings.ToUpper(string(cfg.Platform)),
		RowCount:          analysis.RowCount,
		ExecutiveSummary:  formatNarrativeText(narrative.ExecutiveSummary),
		ChartExplanations: narrative.ChartExplanations,
	}

	// Metrics table, largest total first.
	for _, m := range MetricsByTotal(analysis.Metrics, analysis.Totals) {
		trend := analysis.Trends[m]
		row := metricRowView{
			Label: MetricLabel(m),
			Value: FormatNumber(analysis.Totals[m]),
		}
		switch {
		case trend > 0:
			row.TrendIcon, row.TrendColor = "📈", "#10B981"
			row.TrendText = fmt.Sprintf("+%.1f%%", trend)
		case trend < 0:
			row.TrendIcon, row.TrendColor = "📉", "#EF4444"
			row.TrendText = fmt.Sprintf("%.1f%%", trend)
		default:
			row.TrendIcon, row.TrendColor = "➖", "#6B7280"
			row.TrendText = "0.0%"
		}
		view.MetricRows = append(view.MetricRows, row)
	}

	for _, c := range charts {
		view.Charts = append(view.Charts, chartView{
			Title:       c.Title,
			Description: c.Description,
			Image:       template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(c.PNG)),
		})
	}

	for _, insight := range narrative.KeyInsights {
		view.Insights = append(view.Insights, formatNarrativeText(insight))
	}
	for _, rec := range narrative.Recommendations {
		view.Recommendations = append(view.Recommendations, formatNarrativeText(rec))
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

var (
	numberedHeadingMarkdown = regexp.MustCompile(`##\s*(\d+)\.\s*`)
	boldLabelPattern        = regexp.MustCompile(`\*\*([^*]+)\*\*:`)
	sectionNamePattern      = regexp.MustCompile(`(KEY INSIGHTS|ACTIONABLE RECOMMENDATIONS|EXECUTIVE SUMMARY)`)
	dashBoldLabelPattern    = regexp.MustCompile(`\s*-\s*\*\*([^*]+)\*\*:`)
	boldPattern             = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	sentenceBreakPattern    = regexp.MustCompile(`\.\s+([A-Z])`)
	extraNewlinesPattern    = regexp.MustCompile(`\n{3,}`)
)

// formatNarrativeText converts the lightly-markdown-flavored text that
// language models emit into safe HTML with bold markers resolved.
func formatNarrativeText(text string) template.HTML {
	if text == "" {
		return ""
	}
	formatted := template.HTMLEscapeString(text)
	formatted = numberedHeadingMarkdown.ReplaceAllString(formatted, "\n\n<strong>$1.</strong> ")
	formatted = boldLabelPattern.ReplaceAllString(formatted, "\n\n<strong>$1:</strong>")
	formatted = sectionNamePattern.ReplaceAllString(formatted, "\n\n<strong>$1</strong>\n")
	formatted = dashBoldLabelPattern.ReplaceAllString(formatted, "\n\n• <strong>$1:</strong>")
	formatted = boldPattern.ReplaceAllString(formatted, "<strong>$1</strong>")
	formatted = sentenceBreakPattern.ReplaceAllString(formatted, ".\n\n$1")
	formatted = extraNewlinesPattern.ReplaceAllString(formatted, "\n\n")
	return template.HTML(strings.TrimSpace(formatted))
}

const reportTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>{{.Title}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      font-family: ui-sans-serif, system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
      line-height: 1.6;
      color: #111827;
      background: linear-gradient(135deg, #F3F4F6 0%, #E5E7EB 100%);
      margin: 0;
      padding: 20px;
    }
    .container {
      max-width: 1200px;
      margin: 0 auto;
      background: white;
      border-radius: 16px;
      box-shadow: 0 20px 25px -5px rgba(0, 0, 0, 0.1);
      overflow: hidden;
    }
    .header {
      background: linear-gradient(135deg, #3B82F6 0%, #6366F1 100%);
      color: white;
      padding: 32px;
      text-align: center;
    }
    .content { padding: 32px; }
    .section {
      margin: 32px 0;
      padding: 24px;
      background: #FAFBFC;
      border-radius: 12px;
      border-left: 4px solid #3B82F6;
      page-break-inside: avoid;
    }
    .section h2 { margin: 0 0 16px 0; color: #111827; font-size: 20px; font-weight: 700; }
    .text-content {
      background: white;
      padding: 16px;
      border-radius: 8px;
      line-height: 1.6;
      white-space: normal;
    }
    .text-content strong { color: #1F2937; font-weight: 600; }
    .text-content ul { margin: 0; padding-left: 20px; }
    .text-content li { display: list-item; margin-bottom: 12px; line-height: 1.5; }
    .text-content li:last-child { margin-bottom: 0; }
    .metrics-table { width: 100%; border-collapse: collapse; background: white; border-radius: 8px; overflow: hidden; }
    .metrics-table th { padding: 16px; font-weight: 700; color: #374151; background: #F3F4F6; }
    .metrics-table td { padding: 12px; }
    .metrics-table tr { border-bottom: 1px solid #E5E7EB; }
    .chart-block {
      margin: 32px 0;
      padding: 24px;
      background: #F9FAFB;
      border-radius: 12px;
      border: 1px solid #E5E7EB;
      page-break-inside: avoid;
    }
    .chart-block h3 { margin: 0 0 8px 0; color: #111827; font-size: 18px; font-weight: 700; }
    .chart-block p { margin: 0 0 16px 0; color: #6B7280; font-size: 14px; }
    .chart-block img { max-width: 100%; height: auto; border-radius: 8px; box-shadow: 0 4px 6px -1px rgba(0, 0, 0, 0.1); }
    @media print {
      body { background: white; padding: 0; -webkit-print-color-adjust: exact; print-color-adjust: exact; }
      .container { box-shadow: none; border-radius: 0; margin: 0; max-width: none; }
      .header { -webkit-print-color-adjust: exact; print-color-adjust: exact; page-break-inside: avoid; }
      img { page-break-inside: avoid; }
      table { page-break-inside: avoid; }
      thead { display: table-header-group; }
      tr { page-break-inside: avoid; }
      h1 { font-size: 24px; }
      h2 { font-size: 18px; }
      h3 { font-size: 16px; }
      p, li, td { font-size: 12px; line-height: 1.4; }
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1 style="margin: 0; font-size: 28px; font-weight: 700;">{{.Title}}</h1>
      <p style="margin: 8px 0 0 0; font-size: 16px; opacity: 0.9;">
        Generated on {{.GeneratedOn}} • {{.Level}} Level Analysis
      </p>
    </div>

    <div class="content">
      <div class="section">
        <h2>📋 Executive Summary</h2>
        <div class="text-content">{{.ExecutiveSummary}}</div>
      </div>

      <div class="section">
        <h2>📊 Performance Metrics</h2>
        <div style="overflow-x: auto;">
          <table class="metrics-table">
            <thead>
              <tr>
                <th style="text-align: left;">Metric</th>
                <th style="text-align: right;">Total Value</th>
                <th style="text-align: center;">Trend</th>
              </tr>
            </thead>
            <tbody>
              {{range .MetricRows}}
              <tr>
                <td style="font-weight: 600; color: #374151;">{{.Label}}</td>
                <td style="text-align: right; font-weight: 700; color: #111827;">{{.Value}}</td>
                <td style="text-align: center; color: {{.TrendColor}};">{{.TrendIcon}} {{.TrendText}}</td>
              </tr>
              {{end}}
            </tbody>
          </table>
        </div>
      </div>

      {{if .Charts}}
      <div class="section">
        <h2>📈 Data Visualizations</h2>
        {{range .Charts}}
        <div class="chart-block">
          <h3>{{.Title}}</h3>
          <p>{{.Description}}</p>
          <div style="text-align: center; margin: 16px 0;">
            <img src="{{.Image}}" alt="{{.Title}}"/>
          </div>
        </div>
        {{end}}
      </div>
      {{end}}

      {{if .Insights}}
      <div class="section">
        <h2>💡 Key Insights</h2>
        <div class="text-content">
          <ul>
            {{range .Insights}}<li>{{.}}</li>{{end}}
          </ul>
        </div>
      </div>
      {{end}}

      {{if .Recommendations}}
      <div class="section">
        <h2>🎯 Actionable Recommendations</h2>
        <div class="text-content">
          <ul>
            {{range .Recommendations}}<li>{{.}}</li>{{end}}
          </ul>
        </div>
      </div>
      {{end}}

      {{if .ChartExplanations}}
      <div class="section">
        <h2>🧭 Reading the Charts</h2>
        <div class="text-content">
          <ul>
            {{range .ChartExplanations}}<li><strong>{{.Title}}:</strong> {{.Explanation}}</li>{{end}}
          </ul>
        </div>
      </div>
      {{end}}

      <div style="margin-top: 48px; padding-top: 24px; border-top: 1px solid #E5E7EB; text-align: center; color: #6B7280; font-size: 14px;">
        <p style="margin: 0;">
          Report generated by Scheduled Insight Reports •
          Data analyzed: {{.RowCount}} records •
          Platform: {{.Platform}}
        </p>
      </div>
    </div>
  </div>
</body>
</html>`
