package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"skucheck/internal/core/domain"
	"skucheck/internal/core/ports"
)

// DefaultBatchSize is the number of SKUs processed concurrently per group.
const DefaultBatchSize = 50

// Runner coordinates the batched check pipeline: it partitions the SKU
// list into fixed-size groups, runs each group's lookups concurrently, and
// collects records as they complete. Groups are strictly sequential, so at
// most batchSize lookups are ever in flight.
type Runner struct {
	searcher  ports.Searcher
	checker   ports.Checker
	batchSize int
	logger    *log.Logger
}

// NewRunner creates a new Runner. The searcher is expected to already
// carry its retry policy (see RetryingSearcher). Non-positive batchSize
// falls back to the default.
func NewRunner(searcher ports.Searcher, checker ports.Checker, batchSize int, logger *log.Logger) *Runner {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Runner{
		searcher:  searcher,
		checker:   checker,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run checks every SKU against the given site and returns one record per
// input SKU plus a run report. Records within a group land in completion
// order, not input order. An unknown site key aborts the whole run with
// zero records; every other failure stays inside its SKU's record.
//
// onProgress, when non-nil, is called after each completed lookup with the
// number of lookups completed so far. It runs on the runner's own
// goroutine, between completions.
func (r *Runner) Run(ctx context.Context, siteKey string, skus []string, onProgress ports.ProgressFunc) ([]domain.ResultRecord, *domain.RunReport, error) {
	site, err := domain.ResolveSite(siteKey)
	if err != nil {
		return nil, nil, err
	}

	report := &domain.RunReport{
		RunID: uuid.New().String(),
		Site:  siteKey,
	}
	started := time.Now()
	r.logger.Printf("[RUN %s] checking %d SKUs on %s (batch size %d)",
		report.RunID, len(skus), siteKey, r.batchSize)

	records := make([]domain.ResultRecord, 0, len(skus))
	completed := 0

	for start := 0; start < len(skus); start += r.batchSize {
		end := start + r.batchSize
		if end > len(skus) {
			end = len(skus)
		}
		group := skus[start:end]

		results := make(chan domain.ResultRecord, len(group))
		for _, sku := range group {
			go func(sku string) {
				results <- r.lookup(ctx, site, sku)
			}(sku)
		}

		// The receive loop is the only place records and the
		// progress counter are touched, which keeps both free of
		// locking.
		for range group {
			rec := <-results
			records = append(records, rec)
			completed++
			if onProgress != nil {
				onProgress(completed)
			}
		}
	}

	report.Tally(records)
	report.CompletedAt = time.Now().UTC()
	report.Elapsed = time.Since(started)
	r.logger.Printf("[RUN %s] done in %s: %d found, %d without content, %d errors",
		report.RunID, report.Elapsed.Round(time.Millisecond), report.Found, report.NotFound, report.Errors)

	return records, report, nil
}

// lookup resolves a single SKU to its terminal classification. It never
// fails outright; every outcome becomes a record.
func (r *Runner) lookup(ctx context.Context, site domain.SiteProfile, sku string) domain.ResultRecord {
	res, err := r.searcher.Search(ctx, site, sku)
	if err != nil {
		r.logger.Printf("[SKU %s] search gave up: %v", sku, err)
		return domain.ResultRecord{SKU: sku, URL: res.SearchURL, Classification: domain.Error}
	}
	if res.ProductURL == "" {
		return domain.ResultRecord{SKU: sku, URL: res.SearchURL, Classification: domain.Error}
	}

	hasMarker, err := r.checker.Check(ctx, site, res.ProductURL)
	if err != nil {
		r.logger.Printf("[SKU %s] content check failed: %v", sku, err)
		return domain.ResultRecord{SKU: sku, URL: res.ProductURL, Classification: domain.Error}
	}
	if hasMarker {
		return domain.ResultRecord{SKU: sku, URL: res.ProductURL, Classification: domain.Found}
	}
	return domain.ResultRecord{SKU: sku, URL: res.ProductURL, Classification: domain.NotFound}
}
