package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"insightgo/internal/delivery"
	"insightgo/internal/infrastructure"
	"insightgo/internal/usecase"
	"insightgo/pkg/config"
	"insightgo/pkg/logger"
	"insightgo/pkg/metrics"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("Starting insight report server")

	m := metrics.New()

	stateStore, err := infrastructure.NewStateStore(cfg.Storage.DataDir, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize state store")
	}

	reportStore, err := infrastructure.NewReportStore(cfg.Storage.ReportDir, cfg.Server.PublicBase, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize report store")
	}

	renderer, err := usecase.NewHTMLRenderer()
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize report renderer")
	}

	fetcher := infrastructure.NewUpstreamClient(
		cfg.Upstream.BaseURL,
		cfg.Upstream.APIToken,
		cfg.Upstream.AuthHeaderName,
		cfg.Upstream.RequestTimeout,
		cfg.Upstream.RateLimitPerSecond,
		log,
		m,
	)
	llm := infrastructure.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, log)
	pdf := infrastructure.NewChromePDFRenderer(cfg.PDF.RenderTimeout, log)
	email := infrastructure.NewSMTPSender(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.From,
		log,
		m,
	)

	chartGen := usecase.NewChartGenerator(log, m)
	narrativeGen := usecase.NewNarrativeGenerator(llm, log, m)

	reportService := usecase.NewReportService(
		fetcher,
		stateStore,
		reportStore,
		chartGen,
		narrativeGen,
		renderer,
		pdf,
		email,
		log,
		m,
	)

	scheduler := usecase.NewScheduler(reportService, stateStore, log)
	if err := scheduler.Reschedule(); err != nil {
		log.WithError(err).Fatal("Failed to install report schedule")
	}

	handlers := delivery.NewHTTPHandlers(reportService, scheduler, stateStore, log, m)
	router := delivery.NewHTTPRouter(handlers, cfg.Storage.ReportDir, log, m)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router.SetupRoutes(),
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Forced server shutdown")
	}

	log.Info("Server stopped")
}
