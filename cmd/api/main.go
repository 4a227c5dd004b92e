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

	httpadapter "github.com/kirillkom/compliance-audit/internal/adapters/http"
	"github.com/kirillkom/compliance-audit/internal/bootstrap"
	"github.com/kirillkom/compliance-audit/internal/config"
	"github.com/kirillkom/compliance-audit/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New("api", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "api", logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	// Completed runs arrive back from workers over the queue; the registry
	// is the only place reports live.
	go func() {
		if err := app.Queue.SubscribeAuditCompleted(ctx, app.ScheduleUC.HandleCompleted); err != nil {
			logger.Error("audit result subscription failed", "error", err)
		}
	}()

	router := httpadapter.NewRouter(app.IngestUC, app.Repo, app.ScheduleUC, app.Exporter, app.HTTPMetrics, "api").Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
