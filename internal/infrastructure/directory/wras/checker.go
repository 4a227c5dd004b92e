package wras

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

const (
	// The directory has no API; absence of this marker on the search page
	// is the only signal an approval exists.
	noResultsMarker = "No results found"

	defaultBaseURL   = "https://www.wrasapprovals.co.uk"
	defaultUserAgent = "Mozilla/5.0 (compatible; compliance-audit/1.0)"
	defaultTimeout   = 5 * time.Second

	// Directory pages are small; anything past this is not the result list.
	maxBodyBytes = 1 << 20
)

// Checker verifies an extracted WRAS identifier against the public
// approvals directory. All failures fold into the result status; the
// lookup URL is always attached for manual verification.
type Checker struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(baseURL string, logger *slog.Logger) *Checker {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

func (c *Checker) Verify(ctx context.Context, identifier string) domain.VerificationResult {
	id := strings.TrimSpace(identifier)
	if id == "" || strings.EqualFold(id, "N/A") {
		return domain.VerificationResult{Status: domain.VerificationSkipped}
	}

	lookupURL := c.baseURL + "/approvals-directory/?search=" + url.QueryEscape(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return domain.VerificationResult{Status: domain.VerificationError, URL: lookupURL}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("wras_lookup_failed", "wras_id", id, "error", err)
		return domain.VerificationResult{Status: domain.VerificationError, URL: lookupURL}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.logger.Warn("wras_lookup_read_failed", "wras_id", id, "error", err)
		return domain.VerificationResult{Status: domain.VerificationError, URL: lookupURL}
	}

	if resp.StatusCode == http.StatusOK && !strings.Contains(string(body), noResultsMarker) {
		return domain.VerificationResult{Status: domain.VerificationActive, URL: lookupURL}
	}
	return domain.VerificationResult{Status: domain.VerificationNotFound, URL: lookupURL}
}
