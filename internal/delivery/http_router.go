package delivery

import (
	"time"

	"insightgo/internal/delivery/middleware"
	"insightgo/pkg/logger"
	"insightgo/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type HTTPRouter struct {
	handlers  *HTTPHandlers
	reportDir string
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewHTTPRouter(handlers *HTTPHandlers, reportDir string, logger *logger.Logger, metrics *metrics.Metrics) *HTTPRouter {
	return &HTTPRouter{
		handlers:  handlers,
		reportDir: reportDir,
		logger:    logger,
		metrics:   metrics,
	}
}

func (r *HTTPRouter) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.Recovery(r.logger))
	router.Use(middleware.Metrics(r.metrics))
	// Generous timeout: a manual run fetches upstream data, renders a
	// PDF and possibly sends an email before responding.
	router.Use(middleware.Timeout(5 * time.Minute))

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Content-Type", "X-Request-ID"}
	config.ExposeHeaders = []string{"X-Request-ID"}

	router.Use(cors.New(config))

	// Health endpoint
	router.GET("/health", r.handlers.HealthCheck)

	// API routes
	api := router.Group("/api")
	{
		api.GET("/config", r.handlers.GetConfig)
		api.POST("/config", r.handlers.SaveConfig)
		api.POST("/run-now", r.handlers.RunNow)
		api.GET("/status", r.handlers.GetStatus)
	}

	// Generated reports are served straight from disk
	router.Static("/reports", r.reportDir)

	// Prometheus metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	return router
}
