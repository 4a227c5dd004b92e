package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/compliance-audit/internal/bootstrap"
	"github.com/kirillkom/compliance-audit/internal/config"
	"github.com/kirillkom/compliance-audit/internal/core/domain"
	"github.com/kirillkom/compliance-audit/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New("worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "worker", logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", app.PipelineMetrics.Handler())
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsMux,
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	auditTimeout := time.Duration(cfg.AuditTimeoutMinutes) * time.Minute

	logger.Info("worker subscribed", "subject", cfg.NATSRequestSubject)
	err = app.Queue.SubscribeAuditRequested(ctx, func(handlerCtx context.Context, job domain.AuditJob) error {
		jobCtx, cancel := context.WithTimeout(handlerCtx, auditTimeout)
		defer cancel()
		return app.ProcessUC.ProcessJob(jobCtx, job)
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
