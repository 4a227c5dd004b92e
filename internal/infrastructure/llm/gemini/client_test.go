package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

func TestGenerateJSONConcatenatesParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"a\":"},{"text":"1}"}]}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "k", "", 0, nil)
	raw, err := client.generateJSON(context.Background(), "instruction", "payload")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != `{"a":1}` {
		t.Fatalf("parts not concatenated, got %q", raw)
	}
}

func TestGenerateJSONRateLimitedByContext(t *testing.T) {
	// Limiter at a very low rate; an already-cancelled context must fail
	// before any request is made.
	client := New("http://unused", "k", "", 0.001, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.generateJSON(ctx, "i", "p"); err == nil {
		t.Fatalf("expected error from cancelled limiter wait")
	}
}

func TestGenerateJSONOverloadIsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New(server.URL, "k", "", 0, nil)
	_, err := client.generateJSON(context.Background(), "i", "p")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("429 should surface as temporary, got %v", err)
	}
}
