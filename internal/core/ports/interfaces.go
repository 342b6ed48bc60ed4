package ports

import (
	"context"

	"skucheck/internal/core/domain"
)

// SearchResult holds the outcome of a search-page lookup.
// SearchURL is always set to the URL that was requested. An empty
// ProductURL on a nil error means the search page was fetched but carried
// no usable product link for the SKU; that outcome is terminal and must
// not be retried.
type SearchResult struct {
	SearchURL  string
	ProductURL string
}

// Searcher defines the contract for locating a SKU's product page through
// the site search.
//
// A non-nil error is a transport-class failure (timeout, non-success
// status, connection error, missing search rule) and is eligible for
// retry by the caller. Content-level absence is reported through the
// result, never through the error.
type Searcher interface {
	Search(ctx context.Context, site domain.SiteProfile, sku string) (SearchResult, error)
}

// Checker defines the contract for testing a product page for the site's
// content marker. Implementations make exactly one attempt; any failure
// is returned as an error and the caller classifies it without retrying.
type Checker interface {
	Check(ctx context.Context, site domain.SiteProfile, productURL string) (bool, error)
}

// ProgressFunc is invoked synchronously after each SKU reaches a terminal
// classification, with the number of completed lookups so far.
type ProgressFunc func(completed int)
