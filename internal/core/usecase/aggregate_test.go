package usecase

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

type stubVerifier struct {
	mu     sync.Mutex
	calls  []string
	result domain.VerificationResult
}

func (s *stubVerifier) Verify(_ context.Context, identifier string) domain.VerificationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, identifier)
	return s.result
}

func TestAggregateEmptyInputScoresZero(t *testing.T) {
	verifier := &stubVerifier{}
	uc := NewAggregateReportUseCase(nil, verifier)

	report := uc.Aggregate(context.Background(), domain.PartialReport{}, 0)
	if report.Score != 0 {
		t.Fatalf("expected score 0, got %v", report.Score)
	}
	if len(report.MissingCategories) != len(domain.DefaultCatalog()) {
		t.Fatalf("expected the full catalog missing, got %d", len(report.MissingCategories))
	}
	if report.Verification.Status != domain.VerificationSkipped {
		t.Fatalf("expected Skipped verification, got %s", report.Verification.Status)
	}
	if len(verifier.calls) != 0 {
		t.Fatalf("verifier should not be called without a claim")
	}
}

func TestAggregateFullCatalogScoresHundred(t *testing.T) {
	uc := NewAggregateReportUseCase(nil, &stubVerifier{})

	merged := domain.PartialReport{}
	for _, category := range domain.DefaultCatalog() {
		merged.FoundDocuments = append(merged.FoundDocuments, domain.FoundDocument{
			Filename: "all.pdf", Category: category, Status: "found",
		})
	}

	report := uc.Aggregate(context.Background(), merged, 1)
	if report.Score != 100 {
		t.Fatalf("expected score 100, got %v", report.Score)
	}
	if len(report.MissingCategories) != 0 {
		t.Fatalf("expected nothing missing, got %v", report.MissingCategories)
	}
}

func TestAggregateScoreRounding(t *testing.T) {
	catalog := domain.Catalog{"a", "b", "c"}
	uc := NewAggregateReportUseCase(catalog, &stubVerifier{})

	merged := domain.PartialReport{
		FoundDocuments: []domain.FoundDocument{{Filename: "x.pdf", Category: "a", Status: "found"}},
	}
	report := uc.Aggregate(context.Background(), merged, 1)
	if report.Score != 33.33 {
		t.Fatalf("expected 33.33, got %v", report.Score)
	}
}

func TestAggregateIgnoresUnrecognizedCategories(t *testing.T) {
	catalog := domain.Catalog{"a", "b"}
	uc := NewAggregateReportUseCase(catalog, &stubVerifier{})

	merged := domain.PartialReport{
		FoundDocuments: []domain.FoundDocument{
			{Filename: "x.pdf", Category: "a", Status: "found"},
			{Filename: "y.pdf", Category: "something the model invented", Status: "found"},
		},
	}
	report := uc.Aggregate(context.Background(), merged, 2)
	if !reflect.DeepEqual(report.MissingCategories, []string{"b"}) {
		t.Fatalf("unexpected missing set %v", report.MissingCategories)
	}
	if report.Score != 50 {
		t.Fatalf("expected 50, got %v", report.Score)
	}
	if len(report.FoundDocuments) != 2 {
		t.Fatalf("unrecognized documents must still be listed, got %d", len(report.FoundDocuments))
	}
}

func TestAggregateDuplicateCategoriesCountOnce(t *testing.T) {
	catalog := domain.Catalog{"a", "b"}
	uc := NewAggregateReportUseCase(catalog, &stubVerifier{})

	merged := domain.PartialReport{
		FoundDocuments: []domain.FoundDocument{
			{Filename: "x.pdf", Category: "a", Status: "found"},
			{Filename: "y.pdf", Category: "a", Status: "found"},
		},
	}
	report := uc.Aggregate(context.Background(), merged, 2)
	if report.Score != 50 {
		t.Fatalf("duplicates must not inflate the score, got %v", report.Score)
	}
}

func TestAggregateSortsDeterministically(t *testing.T) {
	uc := NewAggregateReportUseCase(domain.Catalog{"a"}, &stubVerifier{})

	merged := domain.PartialReport{
		ISOFindings: []domain.ISOFinding{
			{Standard: "ISO 14001", ExpiryDate: "2027-01-01"},
			{Standard: "ISO 9001", ExpiryDate: "2026-12-01"},
			{Standard: "ISO 9001", ExpiryDate: "2026-01-01"},
		},
		FoundDocuments: []domain.FoundDocument{
			{Filename: "b.pdf", Category: "a"},
			{Filename: "a.pdf", Category: "a"},
		},
	}

	first := uc.Aggregate(context.Background(), merged, 2)
	second := uc.Aggregate(context.Background(), merged, 2)

	if first.ISOFindings[0].Standard != "ISO 14001" {
		t.Fatalf("expected findings sorted by standard, got %v", first.ISOFindings)
	}
	if first.ISOFindings[1].ExpiryDate != "2026-01-01" {
		t.Fatalf("expected same-standard findings sorted by expiry, got %v", first.ISOFindings)
	}
	if first.FoundDocuments[0].Filename != "a.pdf" {
		t.Fatalf("expected documents sorted by filename, got %v", first.FoundDocuments)
	}
	if !reflect.DeepEqual(first.ISOFindings, second.ISOFindings) || !reflect.DeepEqual(first.FoundDocuments, second.FoundDocuments) {
		t.Fatalf("aggregation must be idempotent over the same input")
	}
}

func TestAggregateVerifiesClaimedIdentifier(t *testing.T) {
	verifier := &stubVerifier{result: domain.VerificationResult{Status: domain.VerificationActive, URL: "https://example.com/?search=2309123"}}
	uc := NewAggregateReportUseCase(domain.Catalog{"a"}, verifier)

	merged := domain.PartialReport{Wras: domain.WrasClaim{Found: true, ID: "2309123"}}
	report := uc.Aggregate(context.Background(), merged, 1)

	if report.Verification.Status != domain.VerificationActive {
		t.Fatalf("expected Active, got %s", report.Verification.Status)
	}
	if len(verifier.calls) != 1 || verifier.calls[0] != "2309123" {
		t.Fatalf("unexpected verifier calls %v", verifier.calls)
	}
}

func TestAggregateSkipsBlankIdentifier(t *testing.T) {
	verifier := &stubVerifier{result: domain.VerificationResult{Status: domain.VerificationActive}}
	uc := NewAggregateReportUseCase(domain.Catalog{"a"}, verifier)

	merged := domain.PartialReport{Wras: domain.WrasClaim{Found: true, ID: "   "}}
	report := uc.Aggregate(context.Background(), merged, 1)

	if report.Verification.Status != domain.VerificationSkipped {
		t.Fatalf("expected Skipped for blank identifier, got %s", report.Verification.Status)
	}
	if len(verifier.calls) != 0 {
		t.Fatalf("verifier must not be called for blank identifier")
	}
}
