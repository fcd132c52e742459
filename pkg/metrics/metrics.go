package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Report run metrics
	ReportRunsTotal    *prometheus.CounterVec
	ReportRunDuration  *prometheus.HistogramVec
	ReportRunsInFlight prometheus.Gauge
	ReportStageErrors  *prometheus.CounterVec

	// Upstream API metrics
	UpstreamAPICalls    *prometheus.CounterVec
	UpstreamAPIDuration *prometheus.HistogramVec
	UpstreamAPIFailures *prometheus.CounterVec

	// Artifact metrics
	ChartsRendered     *prometheus.CounterVec
	NarrativeFallbacks *prometheus.CounterVec
	EmailDeliveries    *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		ReportRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_runs_total",
				Help: "Total number of report pipeline runs",
			},
			[]string{"trigger", "status"},
		),

		ReportRunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "report_run_duration_seconds",
				Help:    "Report pipeline run duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"trigger"},
		),

		ReportRunsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "report_runs_in_flight",
				Help: "Number of report pipeline runs currently in progress",
			},
		),

		ReportStageErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_stage_errors_total",
				Help: "Total number of recovered per-stage errors during report runs",
			},
			[]string{"stage"},
		),

		UpstreamAPICalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_api_calls_total",
				Help: "Total number of upstream sample-data API calls",
			},
			[]string{"platform", "status"},
		),

		UpstreamAPIDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_api_duration_seconds",
				Help:    "Upstream API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"platform"},
		),

		UpstreamAPIFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_api_failures_total",
				Help: "Total number of upstream API failures",
			},
			[]string{"platform", "error_type"},
		),

		ChartsRendered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_charts_rendered_total",
				Help: "Total number of chart render attempts",
			},
			[]string{"type", "status"},
		),

		NarrativeFallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_narrative_fallbacks_total",
				Help: "Total number of narrative generations served by the deterministic fallback",
			},
			[]string{"reason"},
		),

		EmailDeliveries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_email_deliveries_total",
				Help: "Total number of report email delivery attempts",
			},
			[]string{"status"},
		),
	}
}

// HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Report run metrics
func (m *Metrics) RecordReportRun(trigger, status string, duration time.Duration) {
	m.ReportRunsTotal.WithLabelValues(trigger, status).Inc()
	m.ReportRunDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

// Recovered stage error metrics
func (m *Metrics) RecordStageError(stage string) {
	m.ReportStageErrors.WithLabelValues(stage).Inc()
}

// Upstream API call metrics
func (m *Metrics) RecordUpstreamCall(platform, status string, duration time.Duration) {
	m.UpstreamAPICalls.WithLabelValues(platform, status).Inc()
	m.UpstreamAPIDuration.WithLabelValues(platform).Observe(duration.Seconds())
}

// Upstream API failure metrics
func (m *Metrics) RecordUpstreamFailure(platform, errorType string) {
	m.UpstreamAPIFailures.WithLabelValues(platform, errorType).Inc()
}

// Chart render metrics
func (m *Metrics) RecordChartRender(chartType, status string) {
	m.ChartsRendered.WithLabelValues(chartType, status).Inc()
}

// Narrative fallback metrics
func (m *Metrics) RecordNarrativeFallback(reason string) {
	m.NarrativeFallbacks.WithLabelValues(reason).Inc()
}

// Email delivery metrics
func (m *Metrics) RecordEmailDelivery(status string) {
	m.EmailDeliveries.WithLabelValues(status).Inc()
}

// Report runs in progress counter
func (m *Metrics) IncReportRunsInFlight() {
	m.ReportRunsInFlight.Inc()
}

// Report runs in progress counter
func (m *Metrics) DecReportRunsInFlight() {
	m.ReportRunsInFlight.Dec()
}

// HTTP requests in flight counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// HTTP requests in flight counter
func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
