package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded DocumentStatus = "uploaded"
	StatusAuditing DocumentStatus = "auditing"
	StatusAudited  DocumentStatus = "audited"
	StatusFailed   DocumentStatus = "failed"
)

// Document is the persisted intake record for an uploaded vendor file.
// The raw content lives in object storage under StoragePath.
type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	SizeBytes   int64          `json:"size_bytes"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// SourceDocument is the in-memory pipeline input: one vendor file loaded
// from storage for the duration of a single audit run. Never persisted.
type SourceDocument struct {
	Filename string
	Content  []byte
}

type ExtractionMethod string

const (
	MethodTextLayer ExtractionMethod = "text_layer"
	MethodOCR       ExtractionMethod = "ocr_fallback"
	MethodError     ExtractionMethod = "error"
)

// ExtractedText is the hybrid reader's output for one file. Text is capped
// upstream so a single scanned document cannot blow up analysis cost.
type ExtractedText struct {
	Filename string           `json:"filename"`
	Method   ExtractionMethod `json:"method"`
	Text     string           `json:"text"`
}
