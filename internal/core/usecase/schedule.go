package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
	"github.com/kirillkom/compliance-audit/internal/core/ports"
)

// ScheduleAuditUseCase lives in the API process: it validates the requested
// documents, registers a pending run in the in-memory registry and hands
// the job to a worker over the queue. Completed runs arrive back through
// HandleCompleted.
type ScheduleAuditUseCase struct {
	repo     ports.DocumentRepository
	queue    ports.MessageQueue
	registry ports.AuditRegistry
	logger   *slog.Logger
}

func NewScheduleAuditUseCase(
	repo ports.DocumentRepository,
	queue ports.MessageQueue,
	registry ports.AuditRegistry,
	logger *slog.Logger,
) *ScheduleAuditUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleAuditUseCase{
		repo:     repo,
		queue:    queue,
		registry: registry,
		logger:   logger,
	}
}

func (uc *ScheduleAuditUseCase) Schedule(ctx context.Context, documentIDs []string) (*domain.AuditRun, error) {
	if len(documentIDs) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "schedule audit", errors.New("at least one document id is required"))
	}

	for _, id := range documentIDs {
		if _, err := uc.repo.GetByID(ctx, id); err != nil {
			return nil, fmt.Errorf("resolve document %s: %w", id, err)
		}
	}

	run := &domain.AuditRun{
		ID:        uuid.NewString(),
		Status:    domain.AuditPending,
		CreatedAt: time.Now().UTC(),
	}
	uc.registry.Register(run)

	job := domain.AuditJob{AuditID: run.ID, DocumentIDs: documentIDs}
	if err := uc.queue.PublishAuditRequested(ctx, job); err != nil {
		failed := *run
		failed.Status = domain.AuditFailed
		failed.Error = "dispatch failed"
		uc.registry.Complete(&failed)
		return nil, fmt.Errorf("publish audit job: %w", err)
	}

	uc.logger.Info("audit_scheduled", "audit_id", run.ID, "documents", len(documentIDs))
	return run, nil
}

func (uc *ScheduleAuditUseCase) GetAudit(_ context.Context, auditID string) (*domain.AuditRun, error) {
	return uc.registry.Get(auditID)
}

// HandleCompleted is the queue subscription callback for finished runs.
func (uc *ScheduleAuditUseCase) HandleCompleted(_ context.Context, run domain.AuditRun) {
	uc.registry.Complete(&run)
	uc.logger.Info("audit_result_received", "audit_id", run.ID, "status", string(run.Status))
}
