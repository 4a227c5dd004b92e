package mistral

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/kirillkom/compliance-audit/internal/infrastructure/resilience"
)

// Client talks to the Mistral OCR HTTP API. The whole document travels as a
// base64 data URL; only the requested pages are processed and returned
// imagery is suppressed to keep responses small.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey, model string, executor *resilience.Executor) *Client {
	if model == "" {
		model = "mistral-ocr-latest"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

type ocrRequest struct {
	Model              string      `json:"model"`
	Document           ocrDocument `json:"document"`
	Pages              []int       `json:"pages,omitempty"`
	IncludeImageBase64 bool        `json:"include_image_base64"`
}

type ocrDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

type ocrResponse struct {
	Pages []ocrPage `json:"pages"`
}

type ocrPage struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

// Process runs OCR over the given zero-based pages and returns their
// structured text in page order.
func (c *Client) Process(ctx context.Context, content []byte, pages []int) ([]string, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("empty document content")
	}

	request := ocrRequest{
		Model: c.model,
		Document: ocrDocument{
			Type:        "document_url",
			DocumentURL: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(content),
		},
		Pages:              pages,
		IncludeImageBase64: false,
	}

	var response ocrResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/ocr", request, &response, "ocr")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "mistral.ocr", call, classifyMistralError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("mistral ocr", err)
	}

	sorted := append([]ocrPage(nil), response.Pages...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	out := make([]string, 0, len(sorted))
	for _, page := range sorted {
		out = append(out, page.Markdown)
	}
	return out, nil
}
