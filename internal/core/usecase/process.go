package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
	"github.com/kirillkom/compliance-audit/internal/core/ports"
)

// ProcessAuditJobUseCase is the worker-side job handler: it materializes
// the requested documents from storage, runs the pipeline and publishes the
// result envelope back over the queue. Documents that cannot be loaded are
// fed to the pipeline with empty content so the reader degrades them to
// error-tagged texts instead of dropping them from the run.
type ProcessAuditJobUseCase struct {
	repo     ports.DocumentRepository
	storage  ports.ObjectStorage
	queue    ports.MessageQueue
	runner   ports.AuditRunner
	observer PipelineObserver
	logger   *slog.Logger
}

func NewProcessAuditJobUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	runner ports.AuditRunner,
	observer PipelineObserver,
	logger *slog.Logger,
) *ProcessAuditJobUseCase {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessAuditJobUseCase{
		repo:     repo,
		storage:  storage,
		queue:    queue,
		runner:   runner,
		observer: observer,
		logger:   logger,
	}
}

func (uc *ProcessAuditJobUseCase) ProcessJob(ctx context.Context, job domain.AuditJob) error {
	docs := uc.loadDocuments(ctx, job)

	uc.observer.StartAudit()
	start := time.Now()
	report, err := uc.runner.Run(ctx, docs)
	uc.observer.FinishAudit(time.Since(start), report, err)
	if err != nil {
		uc.markDocuments(ctx, job.DocumentIDs, domain.StatusFailed, err.Error())
		failed := domain.AuditRun{
			ID:          job.AuditID,
			Status:      domain.AuditFailed,
			Error:       err.Error(),
			CompletedAt: time.Now().UTC(),
		}
		if pubErr := uc.queue.PublishAuditCompleted(ctx, failed); pubErr != nil {
			return fmt.Errorf("%w; publish failed run: %v", err, pubErr)
		}
		return err
	}

	uc.markDocuments(ctx, job.DocumentIDs, domain.StatusAudited, "")

	run := domain.AuditRun{
		ID:          job.AuditID,
		Status:      domain.AuditCompleted,
		Report:      report,
		CompletedAt: time.Now().UTC(),
	}
	if err := uc.queue.PublishAuditCompleted(ctx, run); err != nil {
		return fmt.Errorf("publish completed run: %w", err)
	}
	return nil
}

func (uc *ProcessAuditJobUseCase) loadDocuments(ctx context.Context, job domain.AuditJob) []domain.SourceDocument {
	docs := make([]domain.SourceDocument, 0, len(job.DocumentIDs))
	for _, id := range job.DocumentIDs {
		docs = append(docs, uc.loadDocument(ctx, id))
	}
	return docs
}

func (uc *ProcessAuditJobUseCase) loadDocument(ctx context.Context, id string) domain.SourceDocument {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		uc.logger.Warn("document_metadata_missing", "document_id", id, "error", err)
		return domain.SourceDocument{Filename: id}
	}

	if err := uc.repo.UpdateStatus(ctx, doc.ID, domain.StatusAuditing, ""); err != nil {
		uc.logger.Warn("document_status_update_failed", "document_id", doc.ID, "error", err)
	}

	reader, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		uc.logger.Warn("document_content_missing", "document_id", doc.ID, "error", err)
		return domain.SourceDocument{Filename: doc.Filename}
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		uc.logger.Warn("document_read_failed", "document_id", doc.ID, "error", err)
		return domain.SourceDocument{Filename: doc.Filename}
	}

	return domain.SourceDocument{Filename: doc.Filename, Content: content}
}

func (uc *ProcessAuditJobUseCase) markDocuments(ctx context.Context, ids []string, status domain.DocumentStatus, errMessage string) {
	for _, id := range ids {
		if err := uc.repo.UpdateStatus(ctx, id, status, errMessage); err != nil {
			uc.logger.Warn("document_status_update_failed", "document_id", id, "status", string(status), "error", err)
		}
	}
}
