package usecase

import (
	"insightgo/pkg/logger"
	"insightgo/pkg/metrics"
)

// Shared across the package's tests: prometheus collectors register
// globally, so metrics.New must run exactly once per test binary.
var (
	testLogger  = logger.New("error")
	testMetrics = metrics.New()
)
