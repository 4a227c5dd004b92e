package domain

import "time"

// ISOFinding is one certificate validity check extracted by the analyzer.
// The same standard can appear multiple times when it shows up in several
// documents; aggregation keeps all entries.
type ISOFinding struct {
	Standard         string `json:"standard"`
	ExpiryDate       string `json:"expiry_date"`
	DaysRemaining    int    `json:"days_remaining"`
	ComplianceStatus string `json:"compliance_status"`
}

// FoundDocument records a file the analyzer matched against the catalog.
// Category may fall outside the catalog; such records are tolerated and
// simply never shrink the missing set.
type FoundDocument struct {
	Filename string `json:"filename"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

// WrasClaim is an extracted WRAS registration identifier claim.
type WrasClaim struct {
	Found bool   `json:"found"`
	ID    string `json:"wras_id,omitempty"`
}

type VerificationStatus string

const (
	VerificationSkipped  VerificationStatus = "Skipped"
	VerificationActive   VerificationStatus = "Active"
	VerificationNotFound VerificationStatus = "Not Found"
	VerificationError    VerificationStatus = "Error"
	VerificationPending  VerificationStatus = "Pending"
)

// VerificationResult is the outcome of the online directory lookup. URL is
// populated on every terminal outcome so the caller can verify manually.
type VerificationResult struct {
	Status VerificationStatus `json:"status"`
	URL    string             `json:"url,omitempty"`
}

// PartialReport holds one batch's findings before merging. The zero value
// contributes nothing, which is exactly how a failed batch is represented.
type PartialReport struct {
	ISOFindings    []ISOFinding    `json:"iso_analysis"`
	FoundDocuments []FoundDocument `json:"found_documents"`
	Wras           WrasClaim       `json:"wras_analysis"`
}

// ComplianceReport is the aggregate audit result. Built once per run,
// read-only afterwards.
type ComplianceReport struct {
	ISOFindings       []ISOFinding       `json:"iso_analysis"`
	FoundDocuments    []FoundDocument    `json:"found_documents"`
	MissingCategories []string           `json:"missing_documents"`
	Wras              WrasClaim          `json:"wras_analysis"`
	Verification      VerificationResult `json:"wras_online_check"`
	Score             float64            `json:"score"`
	DocumentCount     int                `json:"document_count"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

type AuditStatus string

const (
	AuditPending   AuditStatus = "pending"
	AuditCompleted AuditStatus = "completed"
	AuditFailed    AuditStatus = "failed"
)

// AuditJob is the queue payload dispatching one audit run to a worker.
type AuditJob struct {
	AuditID     string   `json:"audit_id"`
	DocumentIDs []string `json:"document_ids"`
}

// AuditRun is the envelope the API hands out for a scheduled audit. Report
// is nil until a worker publishes the completed run back.
type AuditRun struct {
	ID          string            `json:"id"`
	Status      AuditStatus       `json:"status"`
	Report      *ComplianceReport `json:"report,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	CompletedAt time.Time         `json:"completed_at,omitzero"`
}
