package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

// RunAuditUseCase chains the three pipeline stages. Per-document and
// per-batch failures are absorbed inside the stages; the run itself only
// fails on cancellation.
type RunAuditUseCase struct {
	extract   *ExtractTextsUseCase
	analyze   *AnalyzeBatchesUseCase
	aggregate *AggregateReportUseCase
	logger    *slog.Logger
}

func NewRunAuditUseCase(
	extract *ExtractTextsUseCase,
	analyze *AnalyzeBatchesUseCase,
	aggregate *AggregateReportUseCase,
	logger *slog.Logger,
) *RunAuditUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunAuditUseCase{
		extract:   extract,
		analyze:   analyze,
		aggregate: aggregate,
		logger:    logger,
	}
}

func (uc *RunAuditUseCase) Run(ctx context.Context, docs []domain.SourceDocument) (*domain.ComplianceReport, error) {
	start := time.Now()

	texts := uc.extract.ReadAll(ctx, docs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := uc.analyze.AnalyzeAll(ctx, texts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := uc.aggregate.Aggregate(ctx, merged, len(docs))

	uc.logger.Info("audit_run_completed",
		"documents", len(docs),
		"found", len(report.FoundDocuments),
		"missing", len(report.MissingCategories),
		"score", report.Score,
		"wras_status", string(report.Verification.Status),
		"duration_ms", float64(time.Since(start).Milliseconds()),
	)
	return report, nil
}
