package delivery

import (
	"errors"
	"net/http"
	"time"

	"insightgo/internal/domain"
	"insightgo/internal/usecase"
	"insightgo/pkg/logger"
	"insightgo/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// handles HTTP requests
type HTTPHandlers struct {
	reportService *usecase.ReportService
	scheduler     *usecase.Scheduler
	state         domain.StateStore
	logger        *logger.Logger
	metrics       *metrics.Metrics
}

// creates new HTTP handlers
func NewHTTPHandlers(
	reportService *usecase.ReportService,
	scheduler *usecase.Scheduler,
	state domain.StateStore,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *HTTPHandlers {
	return &HTTPHandlers{
		reportService: reportService,
		scheduler:     scheduler,
		state:         state,
		logger:        logger,
		metrics:       metrics,
	}
}

// HealthCheck reports service liveness
func (h *HTTPHandlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetConfig returns the active report configuration, or null when none
// has been saved yet.
func (h *HTTPHandlers) GetConfig(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	c.JSON(http.StatusOK, gin.H{"config": h.state.Config()})
}

// SaveConfig validates and persists a new configuration, then realigns
// the schedule with the new cadence.
func (h *HTTPHandlers) SaveConfig(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := c.GetString("request_id")
	ctx := c.Request.Context()

	var cfg domain.ReportConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	cfg.Normalize()
	if fieldErrors := cfg.Validate(); len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       "Invalid configuration",
			"fieldErrors": fieldErrors,
			"request_id":  requestID,
		})
		return
	}

	if err := h.state.SaveConfig(&cfg); err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to save config")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to save configuration",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	// A fresh config starts with a clean slate: the previous failure
	// no longer describes the current setup.
	empty := ""
	if err := h.state.MergeStatus(domain.StatusPatch{LastError: &empty}); err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to reset run status")
	}

	if err := h.scheduler.Reschedule(); err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Failed to reschedule reports")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to schedule reports",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "config": h.state.Config()})
}

// RunNow triggers one report run synchronously and returns the
// artifact locations.
func (h *HTTPHandlers) RunNow(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := c.GetString("request_id")
	ctx := c.Request.Context()

	result, err := h.reportService.Run(ctx, "manual")
	if err != nil {
		if errors.Is(err, domain.ErrNoConfig) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":      "No config saved",
				"request_id": requestID,
			})
			return
		}
		// The run already recorded lastError; echo it so the caller
		// sees the same text as the status endpoint.
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      h.state.Status().LastError,
			"request_id": requestID,
		})
		return
	}

	h.scheduler.RecomputeNextRun()

	status := h.state.Status()
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"lastRunAt": status.LastRunAt,
		"url":       result.URL,
		"pdfUrl":    result.PDFURL,
		"emailed":   result.Emailed,
	})
}

// GetStatus returns run bookkeeping alongside the active config.
func (h *HTTPHandlers) GetStatus(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	c.JSON(http.StatusOK, gin.H{
		"status": h.state.Status(),
		"config": h.state.Config(),
	})
}
