package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
	"github.com/kirillkom/compliance-audit/internal/core/ports"
)

const (
	defaultAnalyzeBatchSize = 8
	defaultAnalyzeWorkers   = 5
)

// AnalyzeBatchesUseCase partitions extracted texts into fixed-size batches,
// classifies them concurrently and merges the partial results. A failed
// batch contributes nothing; it never fails the run.
type AnalyzeBatchesUseCase struct {
	analyzer ports.BatchAnalyzer
	observer PipelineObserver
	logger   *slog.Logger

	batchSize int
	workers   int
}

func NewAnalyzeBatchesUseCase(analyzer ports.BatchAnalyzer, batchSize, workers int, observer PipelineObserver, logger *slog.Logger) *AnalyzeBatchesUseCase {
	if batchSize <= 0 {
		batchSize = defaultAnalyzeBatchSize
	}
	if workers <= 0 {
		workers = defaultAnalyzeWorkers
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeBatchesUseCase{
		analyzer:  analyzer,
		observer:  observer,
		logger:    logger,
		batchSize: batchSize,
		workers:   workers,
	}
}

type batchResult struct {
	index  int
	report domain.PartialReport
}

// AnalyzeAll classifies all texts and returns the merged pre-aggregation
// report. ISO findings and found documents are appended commutatively; the
// WRAS claim from the lowest-indexed batch carrying a positive claim wins,
// which keeps the outcome independent of completion order.
func (uc *AnalyzeBatchesUseCase) AnalyzeAll(ctx context.Context, texts []domain.ExtractedText) domain.PartialReport {
	var merged domain.PartialReport
	batches := splitBatches(texts, uc.batchSize)
	if len(batches) == 0 {
		return merged
	}

	jobs := make(chan int)
	results := make(chan batchResult, len(batches))

	workers := uc.workers
	if workers > len(batches) {
		workers = len(batches)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				report, err := uc.analyzer.AnalyzeBatch(ctx, batches[i])
				uc.observer.ObserveBatch(err != nil)
				if err != nil {
					uc.logger.Warn("batch_analysis_failed", "batch", i, "size", len(batches[i]), "error", err)
					report = domain.PartialReport{}
				}
				results <- batchResult{index: i, report: report}
			}
		}()
	}

	go func() {
		for i := range batches {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	claimBatch := -1
	for res := range results {
		merged.ISOFindings = append(merged.ISOFindings, res.report.ISOFindings...)
		merged.FoundDocuments = append(merged.FoundDocuments, res.report.FoundDocuments...)

		if res.report.Wras.Found && (claimBatch == -1 || res.index < claimBatch) {
			claimBatch = res.index
			merged.Wras = res.report.Wras
		}
	}

	return merged
}

// splitBatches partitions items into ceil(len/size) slices of at most size
// elements, preserving order within each batch.
func splitBatches(items []domain.ExtractedText, size int) [][]domain.ExtractedText {
	if len(items) == 0 {
		return nil
	}
	batches := make([][]domain.ExtractedText, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
