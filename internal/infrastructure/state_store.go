package infrastructure

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"insightgo/internal/domain"
	"insightgo/pkg/logger"
)

const (
	configFile = "config.json"
	statusFile = "status.json"
)

// StateStore persists the active config and run status as two small
// JSON documents so both survive restarts. All mutations are written
// through to disk before returning.
type StateStore struct {
	dataDir string
	logger  *logger.Logger

	mu     sync.Mutex
	config *domain.ReportConfig
	status domain.RunStatus
}

func NewStateStore(dataDir string, logger *logger.Logger) (*StateStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &StateStore{dataDir: dataDir, logger: logger}

	cfg, err := loadJSON[domain.ReportConfig](filepath.Join(dataDir, configFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	s.config = cfg
	if cfg != nil {
		logger.Info("Loaded persisted report configuration")
	} else {
		logger.Info("No persisted report configuration found")
	}

	status, err := loadJSON[domain.RunStatus](filepath.Join(dataDir, statusFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load status: %w", err)
	}
	if status != nil {
		s.status = *status
	}

	return s, nil
}

// Config returns a copy of the active configuration, or nil when none
// has been saved.
func (s *StateStore) Config() *domain.ReportConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		return nil
	}
	cfg := *s.config
	cfg.Metrics = append([]string(nil), s.config.Metrics...)
	return &cfg
}

// SaveConfig replaces the configuration wholesale and persists it.
func (s *StateStore) SaveConfig(cfg *domain.ReportConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSON(filepath.Join(s.dataDir, configFile), cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	s.config = cfg
	s.logger.Info("Report configuration saved to disk")
	return nil
}

// Status returns a copy of the current run status.
func (s *StateStore) Status() domain.RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// MergeStatus applies a field-by-field patch and persists the result.
// Writers never replace the document wholesale, so concurrent updates
// to unrelated fields are not clobbered.
func (s *StateStore) MergeStatus(patch domain.StatusPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Apply(patch)
	if err := writeJSON(filepath.Join(s.dataDir, statusFile), &s.status); err != nil {
		return fmt.Errorf("failed to save status: %w", err)
	}
	return nil
}

func loadJSON[T any](path string) (*T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
