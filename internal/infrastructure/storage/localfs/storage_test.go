package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := storage.Save(context.Background(), "d1_cert.pdf", strings.NewReader("pdf bytes")); err != nil {
		t.Fatalf("save: %v", err)
	}

	reader, err := storage.Open(context.Background(), "d1_cert.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(content) != "pdf bytes" {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestOpenUnknownKey(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := storage.Open(context.Background(), "missing.pdf"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range []string{"", "..", "../escape", "a/b.pdf"} {
		if err := storage.Save(context.Background(), key, strings.NewReader("x")); err == nil {
			t.Fatalf("key %q must be rejected", key)
		}
		if _, err := storage.Open(context.Background(), key); err == nil {
			t.Fatalf("key %q must be rejected", key)
		}
	}
}
