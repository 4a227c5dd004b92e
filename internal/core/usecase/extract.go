package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
	"github.com/kirillkom/compliance-audit/internal/core/ports"
)

const (
	// Pages inspected by either extraction method. Cover pages plus the
	// first content pages are enough to classify a compliance document.
	maxReadPages = 3

	// Below this many stripped characters the text layer is treated as
	// noise (watermarks, headers) and the document goes to OCR.
	defaultMinTextLayerChars = 100

	// Hard cap on the payload forwarded to analysis.
	defaultMaxPayloadChars = 15000

	defaultExtractWorkers = 8
)

// ExtractTextsUseCase is the hybrid document reader plus its coordinator:
// text-layer extraction first, remote OCR as fallback, fanned out over a
// bounded worker pool. One ExtractedText per input document, always.
type ExtractTextsUseCase struct {
	textLayer ports.TextLayerExtractor
	ocr       ports.OCRProcessor
	observer  PipelineObserver
	logger    *slog.Logger

	workers           int
	minTextLayerChars int
	maxPayloadChars   int
}

func NewExtractTextsUseCase(
	textLayer ports.TextLayerExtractor,
	ocr ports.OCRProcessor,
	workers int,
	observer PipelineObserver,
	logger *slog.Logger,
) *ExtractTextsUseCase {
	if workers <= 0 {
		workers = defaultExtractWorkers
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractTextsUseCase{
		textLayer:         textLayer,
		ocr:               ocr,
		observer:          observer,
		logger:            logger,
		workers:           workers,
		minTextLayerChars: defaultMinTextLayerChars,
		maxPayloadChars:   defaultMaxPayloadChars,
	}
}

// ReadAll extracts text from every document concurrently. Output order is
// not meaningful; output length always equals input length, with read
// failures encoded as error-tagged entries instead of propagated.
func (uc *ExtractTextsUseCase) ReadAll(ctx context.Context, docs []domain.SourceDocument) []domain.ExtractedText {
	if len(docs) == 0 {
		return nil
	}

	out := make([]domain.ExtractedText, len(docs))
	jobs := make(chan int)

	workers := uc.workers
	if workers > len(docs) {
		workers = len(docs)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = uc.read(ctx, docs[i])
			}
		}()
	}

	for i := range docs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return out
}

// read attempts cheap text-layer extraction and falls back to remote OCR
// only when the text layer yields noise. Both failures together degrade to
// an error-tagged result so one bad document never aborts the batch.
func (uc *ExtractTextsUseCase) read(ctx context.Context, doc domain.SourceDocument) domain.ExtractedText {
	result := uc.readOnce(ctx, doc)
	uc.observer.ObserveExtraction(result.Method)
	return result
}

func (uc *ExtractTextsUseCase) readOnce(ctx context.Context, doc domain.SourceDocument) domain.ExtractedText {
	text, err := uc.textLayer.Extract(ctx, doc.Content, maxReadPages)
	if err == nil && len(strings.TrimSpace(text)) > uc.minTextLayerChars {
		return domain.ExtractedText{
			Filename: doc.Filename,
			Method:   domain.MethodTextLayer,
			Text:     truncate(text, uc.maxPayloadChars),
		}
	}
	if err != nil {
		uc.logger.Debug("text_layer_extraction_failed", "filename", doc.Filename, "error", err)
	}

	pages, ocrErr := uc.ocr.Process(ctx, doc.Content, []int{0, 1, 2})
	if ocrErr != nil {
		uc.logger.Warn("document_read_failed", "filename", doc.Filename, "error", ocrErr)
		return domain.ExtractedText{
			Filename: doc.Filename,
			Method:   domain.MethodError,
			Text:     fmt.Sprintf("error reading %s: %v", doc.Filename, ocrErr),
		}
	}

	return domain.ExtractedText{
		Filename: doc.Filename,
		Method:   domain.MethodOCR,
		Text:     truncate(strings.Join(pages, "\n\n"), uc.maxPayloadChars),
	}
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
