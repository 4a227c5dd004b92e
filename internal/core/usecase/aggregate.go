package usecase

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
	"github.com/kirillkom/compliance-audit/internal/core/ports"
)

// AggregateReportUseCase turns the merged partial report into the final
// compliance report: derives the missing-category set, triggers the online
// identifier verification and computes the score.
type AggregateReportUseCase struct {
	catalog  domain.Catalog
	verifier ports.DirectoryVerifier
	now      func() time.Time
}

func NewAggregateReportUseCase(catalog domain.Catalog, verifier ports.DirectoryVerifier) *AggregateReportUseCase {
	if len(catalog) == 0 {
		catalog = domain.DefaultCatalog()
	}
	return &AggregateReportUseCase{
		catalog:  catalog,
		verifier: verifier,
		now:      time.Now,
	}
}

// Aggregate is idempotent over the same merged input. Findings and found
// documents are sorted so the report does not depend on batch completion
// order.
func (uc *AggregateReportUseCase) Aggregate(ctx context.Context, merged domain.PartialReport, documentCount int) *domain.ComplianceReport {
	seen := make(map[string]bool, len(merged.FoundDocuments))
	for _, doc := range merged.FoundDocuments {
		// Exact-match only: categories outside the catalog are tolerated
		// but must never shrink the missing set.
		if uc.catalog.Contains(doc.Category) {
			seen[doc.Category] = true
		}
	}

	missing := make([]string, 0, len(uc.catalog))
	for _, category := range uc.catalog {
		if !seen[category] {
			missing = append(missing, category)
		}
	}

	findings := append([]domain.ISOFinding(nil), merged.ISOFindings...)
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Standard != findings[j].Standard {
			return findings[i].Standard < findings[j].Standard
		}
		return findings[i].ExpiryDate < findings[j].ExpiryDate
	})

	found := append([]domain.FoundDocument(nil), merged.FoundDocuments...)
	sort.Slice(found, func(i, j int) bool {
		if found[i].Filename != found[j].Filename {
			return found[i].Filename < found[j].Filename
		}
		return found[i].Category < found[j].Category
	})

	verification := domain.VerificationResult{Status: domain.VerificationSkipped}
	if merged.Wras.Found && strings.TrimSpace(merged.Wras.ID) != "" {
		verification = uc.verifier.Verify(ctx, merged.Wras.ID)
	}

	return &domain.ComplianceReport{
		ISOFindings:       findings,
		FoundDocuments:    found,
		MissingCategories: missing,
		Wras:              merged.Wras,
		Verification:      verification,
		Score:             uc.score(len(missing)),
		DocumentCount:     documentCount,
		GeneratedAt:       uc.now().UTC(),
	}
}

// score derives the denominator from the catalog itself so the formula can
// never drift from the checklist length.
func (uc *AggregateReportUseCase) score(missing int) float64 {
	total := len(uc.catalog)
	if total == 0 {
		return 0
	}
	raw := float64(total-missing) / float64(total) * 100
	return math.Round(raw*100) / 100
}
