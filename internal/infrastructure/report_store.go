package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"

	"insightgo/pkg/logger"
)

// ReportStore writes generated report files under a public-servable
// directory. The directory is append-only: filenames carry a run
// timestamp and nothing is ever overwritten or cleaned up.
type ReportStore struct {
	dir        string
	publicBase string
	logger     *logger.Logger
}

func NewReportStore(dir, publicBase string, logger *logger.Logger) (*ReportStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &ReportStore{dir: dir, publicBase: publicBase, logger: logger}, nil
}

// Save persists one artifact and returns its public URL.
func (s *ReportStore) Save(filename string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	s.logger.WithFields(map[string]any{
		"file": filename,
		"size": len(data),
	}).Info("Report artifact saved")

	return fmt.Sprintf("%s/reports/%s", s.publicBase, filename), nil
}

// FilePath returns the on-disk location of a saved artifact.
func (s *ReportStore) FilePath(filename string) string {
	return filepath.Join(s.dir, filename)
}

// Dir returns the report directory for static file serving.
func (s *ReportStore) Dir() string {
	return s.dir
}
