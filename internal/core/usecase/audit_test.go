package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

func TestRunAuditEndToEnd(t *testing.T) {
	textLayer := &stubTextLayer{extract: func(content []byte, _ int) (string, error) {
		return strings.Repeat("text ", 30), nil
	}}
	ocr := &stubOCR{process: func([]byte, []int) ([]string, error) {
		return []string{"page"}, nil
	}}
	analyzer := &stubAnalyzer{analyze: func(batch []domain.ExtractedText) (domain.PartialReport, error) {
		report := domain.PartialReport{Wras: domain.WrasClaim{Found: true, ID: "2309123"}}
		for _, text := range batch {
			report.FoundDocuments = append(report.FoundDocuments, domain.FoundDocument{
				Filename: text.Filename,
				Category: "Vendor registration certificate",
				Status:   "found",
			})
		}
		return report, nil
	}}
	verifier := &stubVerifier{result: domain.VerificationResult{Status: domain.VerificationActive, URL: "u"}}

	uc := NewRunAuditUseCase(
		NewExtractTextsUseCase(textLayer, ocr, 2, nil, nil),
		NewAnalyzeBatchesUseCase(analyzer, 2, 2, nil, nil),
		NewAggregateReportUseCase(nil, verifier),
		nil,
	)

	docs := []domain.SourceDocument{
		{Filename: "a.pdf", Content: []byte("a")},
		{Filename: "b.pdf", Content: []byte("b")},
		{Filename: "c.pdf", Content: []byte("c")},
	}
	report, err := uc.Run(context.Background(), docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.DocumentCount != 3 {
		t.Fatalf("expected document count 3, got %d", report.DocumentCount)
	}
	if len(report.FoundDocuments) != 3 {
		t.Fatalf("expected 3 found documents, got %d", len(report.FoundDocuments))
	}
	catalogSize := len(domain.DefaultCatalog())
	if len(report.MissingCategories) != catalogSize-1 {
		t.Fatalf("expected %d missing categories, got %d", catalogSize-1, len(report.MissingCategories))
	}
	if report.Verification.Status != domain.VerificationActive {
		t.Fatalf("expected Active verification, got %s", report.Verification.Status)
	}
	if report.GeneratedAt.IsZero() {
		t.Fatalf("expected generated_at to be set")
	}
}

func TestRunAuditHonorsCancellation(t *testing.T) {
	textLayer := &stubTextLayer{extract: func([]byte, int) (string, error) {
		return strings.Repeat("x", 200), nil
	}}
	ocr := &stubOCR{process: func([]byte, []int) ([]string, error) {
		return []string{"page"}, nil
	}}
	analyzer := &stubAnalyzer{analyze: func([]domain.ExtractedText) (domain.PartialReport, error) {
		return domain.PartialReport{}, nil
	}}

	uc := NewRunAuditUseCase(
		NewExtractTextsUseCase(textLayer, ocr, 1, nil, nil),
		NewAnalyzeBatchesUseCase(analyzer, 8, 1, nil, nil),
		NewAggregateReportUseCase(nil, &stubVerifier{}),
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Run(ctx, []domain.SourceDocument{{Filename: "a.pdf"}})
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
}
