package domain

import (
	"context"
	"errors"
)

// ErrLLMNotConfigured signals that no language-model credentials were
// provided and callers should use deterministic fallback text.
var ErrLLMNotConfigured = errors.New("llm client not configured")

// interface for fetching raw performance rows from the ad platform API
type UpstreamFetcher interface {
	FetchRows(ctx context.Context, cfg *ReportConfig) ([]Row, error)
}

// interface for config/status persistence, durable across restarts
type StateStore interface {
	Config() *ReportConfig
	SaveConfig(cfg *ReportConfig) error
	Status() RunStatus
	MergeStatus(patch StatusPatch) error
}

// interface for persisting generated report artifacts
type ReportWriter interface {
	// Save writes an artifact under the public report directory and
	// returns its public URL.
	Save(filename string, data []byte) (string, error)
	// FilePath returns the on-disk path of a saved artifact.
	FilePath(filename string) string
}

// interface for language-model completions
type LLMClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// interface for HTML-to-PDF conversion
type PDFRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// interface for report email delivery
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}
