package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/compliance-audit/internal/config"
	"github.com/kirillkom/compliance-audit/internal/core/domain"
	"github.com/kirillkom/compliance-audit/internal/core/ports"
	"github.com/kirillkom/compliance-audit/internal/core/usecase"
	"github.com/kirillkom/compliance-audit/internal/infrastructure/directory/wras"
	"github.com/kirillkom/compliance-audit/internal/infrastructure/export/excel"
	"github.com/kirillkom/compliance-audit/internal/infrastructure/extractor/pdftext"
	"github.com/kirillkom/compliance-audit/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/compliance-audit/internal/infrastructure/ocr/mistral"
	"github.com/kirillkom/compliance-audit/internal/infrastructure/queue/nats"
	"github.com/kirillkom/compliance-audit/internal/infrastructure/reportcache"
	"github.com/kirillkom/compliance-audit/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/compliance-audit/internal/infrastructure/resilience"
	"github.com/kirillkom/compliance-audit/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/compliance-audit/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Catalog domain.Catalog

	Queue    *nats.Queue
	Repo     ports.DocumentRepository
	Registry ports.AuditRegistry
	Exporter ports.ReportExporter

	IngestUC   ports.DocumentIngestor
	ScheduleUC *usecase.ScheduleAuditUseCase
	ProcessUC  ports.AuditJobProcessor

	HTTPMetrics     *metrics.HTTPServerMetrics
	PipelineMetrics *metrics.PipelineMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string, logger *slog.Logger) (*App, error) {
	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSRequestSubject, cfg.NATSCompleteSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	pipelineMetrics := metrics.NewPipelineMetrics(service)
	httpMetrics := metrics.NewHTTPServerMetrics(service)

	textLayer := pdftext.New()
	ocr := mistral.New(cfg.MistralBaseURL, cfg.MistralAPIKey, cfg.MistralModel, executor)
	llm := gemini.New(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiMaxRPS, executor)
	analyzer := gemini.NewAnalyzer(llm, catalog)
	verifier := wras.New(cfg.WRASBaseURL, logger)

	registry := reportcache.New()
	exporter := excel.NewWriter()

	extractUC := usecase.NewExtractTextsUseCase(textLayer, ocr, cfg.ExtractWorkers, pipelineMetrics, logger)
	analyzeUC := usecase.NewAnalyzeBatchesUseCase(analyzer, cfg.AnalyzeBatchSize, cfg.AnalyzeWorkers, pipelineMetrics, logger)
	aggregateUC := usecase.NewAggregateReportUseCase(catalog, verifier)
	runUC := usecase.NewRunAuditUseCase(extractUC, analyzeUC, aggregateUC, logger)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage)
	scheduleUC := usecase.NewScheduleAuditUseCase(repo, queue, registry, logger)
	processUC := usecase.NewProcessAuditJobUseCase(repo, storage, queue, runUC, pipelineMetrics, logger)

	return &App{
		Config:  cfg,
		Catalog: catalog,

		Queue:    queue,
		Repo:     repo,
		Registry: registry,
		Exporter: exporter,

		IngestUC:   ingestUC,
		ScheduleUC: scheduleUC,
		ProcessUC:  processUC,

		HTTPMetrics:     httpMetrics,
		PipelineMetrics: pipelineMetrics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
