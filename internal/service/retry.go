package service

import (
	"context"
	"log"
	"time"

	"skucheck/internal/core/domain"
	"skucheck/internal/core/ports"
)

const (
	// DefaultMaxAttempts bounds search attempts per SKU.
	DefaultMaxAttempts = 3
	// DefaultBackoff is the fixed pause between search attempts.
	DefaultBackoff = 1 * time.Second
)

// RetryingSearcher wraps a Searcher with bounded retry and a fixed backoff.
// Only transport-class failures (a non-nil error from the inner searcher)
// are retried; a fetched page without a product link returns immediately.
// The site search is the transient-failure-prone half of the pipeline, so
// the check stage deliberately gets no equivalent wrapper.
type RetryingSearcher struct {
	next        ports.Searcher
	maxAttempts int
	backoff     time.Duration
	logger      *log.Logger

	// sleep is swapped out in tests; nil means time.Sleep.
	sleep func(time.Duration)
}

// NewRetryingSearcher creates a retry wrapper around next. Non-positive
// maxAttempts falls back to the default.
func NewRetryingSearcher(next ports.Searcher, maxAttempts int, backoff time.Duration, logger *log.Logger) *RetryingSearcher {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &RetryingSearcher{
		next:        next,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger,
	}
}

// Search runs the inner searcher up to maxAttempts times, sleeping the
// backoff between consecutive attempts (never after the last one). The
// result of the final attempt is returned either way.
func (r *RetryingSearcher) Search(ctx context.Context, site domain.SiteProfile, sku string) (ports.SearchResult, error) {
	sleep := r.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var res ports.SearchResult
	var err error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		res, err = r.next.Search(ctx, site, sku)
		if err == nil {
			return res, nil
		}
		r.logger.Printf("[SKU %s] search attempt %d/%d failed (%s): %v",
			sku, attempt, r.maxAttempts, res.SearchURL, err)
		if attempt < r.maxAttempts {
			sleep(r.backoff)
		}
	}
	return res, err
}
