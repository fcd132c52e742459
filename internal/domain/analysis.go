package domain

type ChartKind string

const (
	ChartBar      ChartKind = "bar"
	ChartLine     ChartKind = "line"
	ChartPie      ChartKind = "pie"
	ChartDoughnut ChartKind = "doughnut"
)

// ChartSpec is one recommended visualization, derived deterministically
// from the analysis and consumed immediately by the chart generator.
type ChartSpec struct {
	Kind        ChartKind `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Metrics     []string  `json:"metrics"`
}

// RenderedChart is a chart spec plus its rasterized image.
type RenderedChart struct {
	Kind        ChartKind
	Title       string
	Description string
	PNG         []byte
}

// Analysis is the per-run aggregate derived from upstream rows. It
// lives only for the duration of one pipeline run.
type Analysis struct {
	Totals            map[string]float64
	Trends            map[string]float64
	Insights          []string
	RecommendedCharts []ChartSpec
	RowCount          int
	// Metrics preserves the configured metric order so map iteration
	// never leaks into report output.
	Metrics []string
}

// ChartExplanation pairs a chart title with narrative guidance on how
// to read it.
type ChartExplanation struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
}

// Narrative is the natural-language layer of a report.
type Narrative struct {
	ExecutiveSummary  string
	KeyInsights       []string
	Recommendations   []string
	ChartExplanations []ChartExplanation
}

// EmailAttachment references a file already persisted by the report
// store.
type EmailAttachment struct {
	Filename string
	Path     string
}

// EmailMessage is one outbound report delivery.
type EmailMessage struct {
	To          string
	Subject     string
	HTML        string
	Attachments []EmailAttachment
}
