package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

const documentBoundary = "\n\n=== NEXT DOCUMENT ===\n"

// Analyzer classifies batches of extracted texts against the required
// document catalog. The model output is untrusted; it is parsed strictly
// and rejected with an error the coordinator absorbs.
type Analyzer struct {
	client  *Client
	catalog domain.Catalog
	now     func() time.Time
}

func NewAnalyzer(client *Client, catalog domain.Catalog) *Analyzer {
	if len(catalog) == 0 {
		catalog = domain.DefaultCatalog()
	}
	return &Analyzer{
		client:  client,
		catalog: catalog,
		now:     time.Now,
	}
}

func (a *Analyzer) AnalyzeBatch(ctx context.Context, batch []domain.ExtractedText) (domain.PartialReport, error) {
	if len(batch) == 0 {
		return domain.PartialReport{}, nil
	}

	raw, err := a.client.generateJSON(ctx, a.buildPrompt(), joinDocuments(batch))
	if err != nil {
		return domain.PartialReport{}, err
	}

	return parsePartialReport(raw)
}

func (a *Analyzer) buildPrompt() string {
	today := a.now().UTC().Format("2006-01-02")
	catalogJSON, _ := json.Marshal([]string(a.catalog))

	return fmt.Sprintf(`Today is %s. You are a vendor compliance document analyzer.
Extract data from the documents below and translate it if it is not in English.
Classify each document using exactly one category from this list: %s

Compliance rule: an ISO certificate passes only if it is valid for more than 180 days from %s.

Return ONLY a JSON object with this EXACT structure:
{
    "iso_analysis": [
        {
            "standard": "ISO 9001",
            "expiry_date": "YYYY-MM-DD",
            "days_remaining": 0,
            "compliance_status": "Pass/Fail"
        }
    ],
    "found_documents": [
        {"filename": "name.pdf", "category": "category from the list", "status": "Valid"}
    ],
    "wras_analysis": {
        "found": true,
        "wras_id": "123456"
    }
}`, today, string(catalogJSON), today)
}

// joinDocuments concatenates batch payloads with an explicit boundary so
// the model can attribute findings to the right file.
func joinDocuments(batch []domain.ExtractedText) string {
	parts := make([]string, 0, len(batch))
	for _, text := range batch {
		parts = append(parts, fmt.Sprintf("FILE_NAME: %s\n(extraction method: %s)\n%s", text.Filename, text.Method, text.Text))
	}
	return strings.Join(parts, documentBoundary)
}

// parsePartialReport decodes the constrained model output. Some models wrap
// the object in a single-element array; that wrapper is unwrapped here.
func parsePartialReport(raw string) (domain.PartialReport, error) {
	cleaned := stripMarkdownFences(raw)
	if cleaned == "" {
		return domain.PartialReport{}, fmt.Errorf("empty analysis response")
	}

	if strings.HasPrefix(cleaned, "[") {
		var wrapped []domain.PartialReport
		if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
			return domain.PartialReport{}, fmt.Errorf("parse analysis json array: %w", err)
		}
		if len(wrapped) == 0 {
			return domain.PartialReport{}, fmt.Errorf("empty analysis json array")
		}
		return wrapped[0], nil
	}

	var report domain.PartialReport
	if err := json.Unmarshal([]byte(cleaned), &report); err != nil {
		return domain.PartialReport{}, fmt.Errorf("parse analysis json: %w", err)
	}
	return report, nil
}

func stripMarkdownFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
