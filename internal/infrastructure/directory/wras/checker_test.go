package wras

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

func TestVerifyActiveWhenResultsPresent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/approvals-directory/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("search"); got != "2309123" {
			t.Errorf("unexpected search parameter %q", got)
		}
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "compliance-audit") {
			t.Errorf("unexpected user agent %q", ua)
		}
		w.Write([]byte("<html><body>Approval 2309123 Acme Valves Ltd</body></html>"))
	}))
	defer server.Close()

	checker := New(server.URL, nil)
	result := checker.Verify(context.Background(), "2309123")

	if result.Status != domain.VerificationActive {
		t.Fatalf("expected Active, got %s", result.Status)
	}
	if !strings.Contains(result.URL, "search=2309123") {
		t.Fatalf("lookup url not attached: %q", result.URL)
	}
}

func TestVerifyNotFoundOnMarker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html><body>No results found</body></html>"))
	}))
	defer server.Close()

	checker := New(server.URL, nil)
	result := checker.Verify(context.Background(), "0000000")

	if result.Status != domain.VerificationNotFound {
		t.Fatalf("expected Not Found, got %s", result.Status)
	}
}

func TestVerifyNotFoundOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	checker := New(server.URL, nil)
	result := checker.Verify(context.Background(), "1234567")

	if result.Status != domain.VerificationNotFound {
		t.Fatalf("expected Not Found on non-200, got %s", result.Status)
	}
}

func TestVerifyErrorWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	checker := New(server.URL, nil)
	result := checker.Verify(context.Background(), "1234567")

	if result.Status != domain.VerificationError {
		t.Fatalf("expected Error, got %s", result.Status)
	}
	if result.URL == "" {
		t.Fatalf("manual lookup url must survive transport failures")
	}
}

func TestVerifySkipsBlankAndNAIdentifiers(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	checker := New(server.URL, nil)
	for _, id := range []string{"", "  ", "N/A", "n/a"} {
		result := checker.Verify(context.Background(), id)
		if result.Status != domain.VerificationSkipped {
			t.Fatalf("identifier %q: expected Skipped, got %s", id, result.Status)
		}
	}
	if requests.Load() != 0 {
		t.Fatalf("skipped identifiers must not hit the network, saw %d requests", requests.Load())
	}
}

func TestVerifyEscapesIdentifier(t *testing.T) {
	var seen string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Query().Get("search")
		w.Write([]byte("No results found"))
	}))
	defer server.Close()

	checker := New(server.URL, nil)
	checker.Verify(context.Background(), "12 34&x=1")

	if seen != "12 34&x=1" {
		t.Fatalf("identifier not escaped round-trip, server saw %q", seen)
	}
}
