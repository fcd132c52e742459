package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"insightgo/internal/domain"
	"insightgo/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler owns the recurring report timer. At most one cron entry is
// live at a time: every reschedule tears down the previous one before
// installing the next, so a cadence change never leaves a stale timer
// running.
type Scheduler struct {
	service *ReportService
	state   domain.StateStore
	logger  *logger.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func NewScheduler(service *ReportService, state domain.StateStore, logger *logger.Logger) *Scheduler {
	return &Scheduler{service: service, state: state, logger: logger}
}

// CadenceInterval maps a cadence to its run interval. Manual cadence
// has no interval.
func CadenceInterval(cadence domain.Cadence) time.Duration {
	switch cadence {
	case domain.CadenceHourly:
		return time.Hour
	case domain.CadenceEvery12Hours:
		return 12 * time.Hour
	case domain.CadenceDaily:
		return 24 * time.Hour
	default:
		return 0
	}
}

// NextRunAt computes when the next scheduled run is due, or nil for
// manual cadence.
func NextRunAt(cadence domain.Cadence, now time.Time) *time.Time {
	interval := CadenceInterval(cadence)
	if interval == 0 {
		return nil
	}
	next := now.Add(interval).UTC()
	return &next
}

// Reschedule aligns the live timer with the saved configuration. It is
// called at boot and after every config save.
func (s *Scheduler) Reschedule() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	cfg := s.state.Config()
	if cfg == nil || CadenceInterval(cfg.Cadence) == 0 {
		if err := s.state.MergeStatus(domain.StatusPatch{ClearNextRun: true}); err != nil {
			return err
		}
		s.logger.Info("Scheduler idle: no recurring cadence configured")
		return nil
	}

	interval := CadenceInterval(cfg.Cadence)
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), s.runScheduled); err != nil {
		return fmt.Errorf("failed to schedule report job: %w", err)
	}
	c.Start()
	s.cron = c

	if err := s.state.MergeStatus(domain.StatusPatch{NextRunAt: NextRunAt(cfg.Cadence, time.Now())}); err != nil {
		return err
	}

	s.logger.WithFields(map[string]any{
		"cadence":  cfg.Cadence,
		"interval": interval,
	}).Info("Report schedule installed")
	return nil
}

// RecomputeNextRun refreshes nextRunAt from the current cadence. Both
// scheduled and manual runs call this after completing, so the status
// always reflects the upcoming deadline.
func (s *Scheduler) RecomputeNextRun() {
	var cadence domain.Cadence
	if cfg := s.state.Config(); cfg != nil {
		cadence = cfg.Cadence
	}

	patch := domain.StatusPatch{NextRunAt: NextRunAt(cadence, time.Now())}
	if patch.NextRunAt == nil {
		patch.ClearNextRun = true
	}
	if err := s.state.MergeStatus(patch); err != nil {
		s.logger.WithError(err).Error("Failed to persist next run time")
	}
}

// Stop halts the timer and waits for any in-flight scheduled run.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cron = nil
	}
}

func (s *Scheduler) runScheduled() {
	if _, err := s.service.Run(context.Background(), "schedule"); err != nil {
		s.logger.WithError(err).Error("Scheduled report run failed")
	}
	s.RecomputeNextRun()
}
