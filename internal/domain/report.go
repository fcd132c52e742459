package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Platform string

const (
	PlatformMeta   Platform = "meta"
	PlatformTikTok Platform = "tiktok"
)

type DateRange string

const (
	DateRangeLast7  DateRange = "last7"
	DateRangeLast14 DateRange = "last14"
	DateRangeLast30 DateRange = "last30"
)

type Cadence string

const (
	CadenceManual        Cadence = "manual"
	CadenceHourly        Cadence = "hourly"
	CadenceEvery12Hours  Cadence = "every 12 hours"
	CadenceDaily         Cadence = "daily"
)

type DeliveryMethod string

const (
	DeliveryEmail DeliveryMethod = "email"
	DeliveryLink  DeliveryMethod = "link"
)

// ErrNoConfig is returned when a run is requested before any
// configuration has been saved.
var ErrNoConfig = errors.New("no report configuration saved")

// ReportConfig is the single active configuration driving report
// generation. It is replaced wholesale, never patched.
type ReportConfig struct {
	Platform  Platform       `json:"platform"`
	Metrics   []string       `json:"metrics"`
	Level     string         `json:"level"`
	DateRange DateRange      `json:"dateRangeEnum"`
	Cadence   Cadence        `json:"cadence"`
	Delivery  DeliveryMethod `json:"delivery"`
	Email     string         `json:"email,omitempty"`
}

// FieldError reports a validation failure on a single config field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var emailValidator = validator.New()

// Validate checks the config invariants and returns one error per
// offending field. An empty slice means the config is acceptable.
func (c *ReportConfig) Validate() []FieldError {
	var errs []FieldError

	switch c.Platform {
	case PlatformMeta, PlatformTikTok:
	default:
		errs = append(errs, FieldError{Field: "platform", Message: fmt.Sprintf("unknown platform %q", c.Platform)})
	}

	if len(c.Metrics) == 0 {
		errs = append(errs, FieldError{Field: "metrics", Message: "at least one metric is required"})
	} else {
		for _, m := range c.Metrics {
			if m == "" {
				errs = append(errs, FieldError{Field: "metrics", Message: "metric names must be non-empty"})
				break
			}
		}
	}

	if c.Level == "" {
		errs = append(errs, FieldError{Field: "level", Message: "level is required"})
	}

	switch c.DateRange {
	case DateRangeLast7, DateRangeLast14, DateRangeLast30:
	default:
		errs = append(errs, FieldError{Field: "dateRangeEnum", Message: fmt.Sprintf("unknown date range %q", c.DateRange)})
	}

	switch c.Cadence {
	case CadenceManual, CadenceHourly, CadenceEvery12Hours, CadenceDaily:
	default:
		errs = append(errs, FieldError{Field: "cadence", Message: fmt.Sprintf("unknown cadence %q", c.Cadence)})
	}

	switch c.Delivery {
	case DeliveryEmail:
		if c.Email == "" {
			errs = append(errs, FieldError{Field: "email", Message: "email is required when delivery is email"})
		} else if err := emailValidator.Var(c.Email, "email"); err != nil {
			errs = append(errs, FieldError{Field: "email", Message: fmt.Sprintf("%q is not a valid email address", c.Email)})
		}
	case DeliveryLink:
	default:
		errs = append(errs, FieldError{Field: "delivery", Message: fmt.Sprintf("unknown delivery method %q", c.Delivery)})
	}

	return errs
}

// Normalize clears fields that are meaningless for the chosen delivery
// method so the persisted document stays canonical.
func (c *ReportConfig) Normalize() {
	if c.Delivery != DeliveryEmail {
		c.Email = ""
	}
}

// RunStatus tracks the outcome of report runs across restarts. Fields
// are merged individually via StatusPatch, never replaced wholesale.
type RunStatus struct {
	LastRunAt       *time.Time `json:"lastRunAt,omitempty"`
	NextRunAt       *time.Time `json:"nextRunAt,omitempty"`
	LastError       string     `json:"lastError,omitempty"`
	LatestReportURL string     `json:"latestReportUrl,omitempty"`
	LatestPDFURL    string     `json:"latestPdfUrl,omitempty"`
}

// StatusPatch is a partial RunStatus update. Nil fields are left
// untouched; a pointer to the zero value clears the field. NextRunAt
// has an explicit clear flag because "no next run" is meaningful for
// the manual cadence.
type StatusPatch struct {
	LastRunAt       *time.Time
	NextRunAt       *time.Time
	ClearNextRun    bool
	LastError       *string
	LatestReportURL *string
	LatestPDFURL    *string
}

// Apply merges the patch into the status, field by field.
func (s *RunStatus) Apply(p StatusPatch) {
	if p.LastRunAt != nil {
		s.LastRunAt = p.LastRunAt
	}
	if p.ClearNextRun {
		s.NextRunAt = nil
	} else if p.NextRunAt != nil {
		s.NextRunAt = p.NextRunAt
	}
	if p.LastError != nil {
		s.LastError = *p.LastError
	}
	if p.LatestReportURL != nil {
		s.LatestReportURL = *p.LatestReportURL
	}
	if p.LatestPDFURL != nil {
		s.LatestPDFURL = *p.LatestPDFURL
	}
}

// UpstreamError carries the HTTP status and raw body of a failed
// sample-data call so the failure can be diagnosed from lastError
// without reproducing the request.
type UpstreamError struct {
	Platform Platform
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s %d: %s", e.Platform, e.Status, e.Body)
}

// RunResult reports where one run's artifacts ended up.
type RunResult struct {
	URL     string `json:"url,omitempty"`
	PDFURL  string `json:"pdfUrl,omitempty"`
	Emailed bool   `json:"emailed,omitempty"`
}
