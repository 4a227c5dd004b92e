package ports

import (
	"context"
	"io"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document intake metadata.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// AuditScheduler dispatches audit runs and exposes their state.
type AuditScheduler interface {
	Schedule(ctx context.Context, documentIDs []string) (*domain.AuditRun, error)
	GetAudit(ctx context.Context, auditID string) (*domain.AuditRun, error)
}

// AuditRunner executes the full extraction/analysis/aggregation pipeline
// over a set of loaded documents.
type AuditRunner interface {
	Run(ctx context.Context, docs []domain.SourceDocument) (*domain.ComplianceReport, error)
}

// AuditJobProcessor is the worker-side contract for one queued audit job.
type AuditJobProcessor interface {
	ProcessJob(ctx context.Context, job domain.AuditJob) error
}
