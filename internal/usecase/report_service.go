package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"insightgo/internal/domain"
	"insightgo/pkg/logger"
	"insightgo/pkg/metrics"
)

// ReportService orchestrates one full report run: fetch, analyze,
// chart, narrate, render, persist, deliver. Both the scheduler and the
// run-now endpoint go through Run, so status bookkeeping is identical
// for timer-fired and manual runs.
type ReportService struct {
	fetcher   domain.UpstreamFetcher
	state     domain.StateStore
	reports   domain.ReportWriter
	charts    *ChartGenerator
	narrative *NarrativeGenerator
	renderer  *HTMLRenderer
	pdf       domain.PDFRenderer
	email     domain.EmailSender
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewReportService(
	fetcher domain.UpstreamFetcher,
	state domain.StateStore,
	reports domain.ReportWriter,
	charts *ChartGenerator,
	narrative *NarrativeGenerator,
	renderer *HTMLRenderer,
	pdf domain.PDFRenderer,
	email domain.EmailSender,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *ReportService {
	return &ReportService{
		fetcher:   fetcher,
		state:     state,
		reports:   reports,
		charts:    charts,
		narrative: narrative,
		renderer:  renderer,
		pdf:       pdf,
		email:     email,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run executes the pipeline once. The attempt is recorded in the run
// status whether it succeeds or fails: lastRunAt always advances,
// lastError holds the failure text or is cleared on success.
func (s *ReportService) Run(ctx context.Context, trigger string) (*domain.RunResult, error) {
	cfg := s.state.Config()
	if cfg == nil {
		return nil, domain.ErrNoConfig
	}

	start := time.Now()
	s.metrics.IncReportRunsInFlight()
	defer s.metrics.DecReportRunsInFlight()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"trigger":  trigger,
		"platform": cfg.Platform,
		"cadence":  cfg.Cadence,
	})
	log.Info("Starting report run")

	result, err := s.run(ctx, cfg)
	duration := time.Since(start)

	completedAt := time.Now().UTC()
	patch := domain.StatusPatch{LastRunAt: &completedAt}
	if err != nil {
		msg := err.Error()
		patch.LastError = &msg
		s.metrics.RecordReportRun(trigger, "error", duration)
		log.WithError(err).Error("Report run failed")
	} else {
		empty := ""
		patch.LastError = &empty
		s.metrics.RecordReportRun(trigger, "success", duration)
		log.WithFields(map[string]any{
			"duration": duration,
			"url":      result.URL,
			"emailed":  result.Emailed,
		}).Info("Report run completed")
	}

	if mergeErr := s.state.MergeStatus(patch); mergeErr != nil {
		s.logger.WithError(mergeErr).Error("Failed to persist run status")
	}

	return result, err
}

func (s *ReportService) run(ctx context.Context, cfg *domain.ReportConfig) (*domain.RunResult, error) {
	rows, err := s.fetcher.FetchRows(ctx, cfg)
	if err != nil {
		return nil, err
	}

	analysis := Analyze(rows, cfg)
	charts := s.charts.Generate(analysis)
	narrative := s.narrative.Generate(ctx, analysis, cfg)

	now := time.Now()
	html, err := s.renderer.Render(cfg, analysis, charts, narrative, now)
	if err != nil {
		return nil, err
	}

	stamp := now.UnixMilli()
	htmlFilename := fmt.Sprintf("report-%d.html", stamp)
	pdfFilename := fmt.Sprintf("report-%d.pdf", stamp)

	htmlURL, err := s.reports.Save(htmlFilename, []byte(html))
	if err != nil {
		return nil, err
	}

	// PDF generation is best-effort: the HTML artifact already exists,
	// so a renderer failure downgrades the run instead of failing it.
	pdfURL := ""
	pdfSaved := false
	if pdfData, pdfErr := s.pdf.Render(ctx, html); pdfErr != nil {
		s.metrics.RecordStageError("pdf")
		s.logger.WithContext(ctx).WithError(pdfErr).Warn("PDF generation failed, continuing with HTML only")
	} else if pdfURL, err = s.reports.Save(pdfFilename, pdfData); err != nil {
		s.metrics.RecordStageError("pdf")
		s.logger.WithContext(ctx).WithError(err).Warn("PDF save failed, continuing with HTML only")
		pdfURL = ""
	} else {
		pdfSaved = true
	}

	// Artifact locations go into the status as soon as they exist, so a
	// later delivery failure still leaves the report reachable.
	if err := s.state.MergeStatus(domain.StatusPatch{LatestReportURL: &htmlURL, LatestPDFURL: &pdfURL}); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to persist artifact URLs")
	}

	result := &domain.RunResult{URL: htmlURL, PDFURL: pdfURL}

	if cfg.Delivery == domain.DeliveryEmail {
		msg := domain.EmailMessage{
			To:      cfg.Email,
			Subject: fmt.Sprintf("📊 %s Insight Report - %s", strings.ToUpper(string(cfg.Platform)), now.Format("1/2/2006")),
			HTML:    html,
		}
		if pdfSaved {
			msg.Attachments = []domain.EmailAttachment{{
				Filename: fmt.Sprintf("%s-insight-report-%s.pdf", cfg.Platform, now.Format("2006-01-02")),
				Path:     s.reports.FilePath(pdfFilename),
			}}
		}
		if err := s.email.Send(ctx, msg); err != nil {
			return nil, fmt.Errorf("failed to send email: %w", err)
		}
		result.Emailed = true
	}

	return result, nil
}
