package ports

import (
	"context"
	"io"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

// DocumentRepository persists and reads document intake state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue carries audit jobs to workers and completed runs back.
type MessageQueue interface {
	PublishAuditRequested(ctx context.Context, job domain.AuditJob) error
	SubscribeAuditRequested(ctx context.Context, handler func(context.Context, domain.AuditJob) error) error
	PublishAuditCompleted(ctx context.Context, run domain.AuditRun) error
	SubscribeAuditCompleted(ctx context.Context, handler func(context.Context, domain.AuditRun)) error
}

// TextLayerExtractor reads embedded digital text from a document without
// image analysis. maxPages <= 0 means all pages.
type TextLayerExtractor interface {
	Extract(ctx context.Context, content []byte, maxPages int) (string, error)
}

// OCRProcessor submits a document to a remote OCR capability and returns
// per-page structured text in page order.
type OCRProcessor interface {
	Process(ctx context.Context, content []byte, pages []int) ([]string, error)
}

// BatchAnalyzer classifies one batch of extracted texts against the catalog
// via a remote structured-generation capability.
type BatchAnalyzer interface {
	AnalyzeBatch(ctx context.Context, batch []domain.ExtractedText) (domain.PartialReport, error)
}

// DirectoryVerifier checks an extracted registration identifier against the
// online approvals directory. Failures are folded into the result status,
// never surfaced as errors.
type DirectoryVerifier interface {
	Verify(ctx context.Context, identifier string) domain.VerificationResult
}

// AuditRegistry is the API-side in-memory view of scheduled audits.
// Completed reports are deliberately not persisted anywhere else.
type AuditRegistry interface {
	Register(run *domain.AuditRun)
	Complete(run *domain.AuditRun)
	Get(auditID string) (*domain.AuditRun, error)
}

// ReportExporter renders a completed audit as a downloadable artifact.
type ReportExporter interface {
	Export(run *domain.AuditRun) ([]byte, error)
}
