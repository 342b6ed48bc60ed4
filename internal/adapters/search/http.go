package search

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"skucheck/internal/core/domain"
	"skucheck/internal/core/ports"
)

// DefaultTimeout is the per-request timeout used when no client is injected.
const DefaultTimeout = 30 * time.Second

// HTTPSearcher implements ports.Searcher against a live site search page.
// One attempt per call; retry policy belongs to the caller.
type HTTPSearcher struct {
	client *http.Client
	logger *log.Logger
}

// NewHTTPSearcher creates a new HTTPSearcher. The client is shared with the
// rest of the run so connections are pooled; pass nil to get a private
// client with the default timeout.
func NewHTTPSearcher(client *http.Client, logger *log.Logger) *HTTPSearcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPSearcher{client: client, logger: logger}
}

// Search fetches the site search page for the SKU and extracts the product
// link. A missing link on a successfully fetched page is reported with an
// empty ProductURL and a nil error; transport-level failures and missing
// site rules come back as errors.
func (s *HTTPSearcher) Search(ctx context.Context, site domain.SiteProfile, sku string) (ports.SearchResult, error) {
	if !site.HasSearchRule() {
		return ports.SearchResult{SearchURL: site.BaseURL},
			fmt.Errorf("site %s has no search rule", site.Key)
	}

	searchURL := site.BaseURL + fmt.Sprintf(site.SearchPathFormat, url.QueryEscape(sku))
	res := ports.SearchResult{SearchURL: searchURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return res, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return res, fmt.Errorf("search fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return res, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		// A body that cannot be parsed is a content problem, not a
		// transport one; it does not earn another attempt.
		s.logger.Printf("[SKU %s] unparseable search page at %s: %v", sku, searchURL, err)
		return res, nil
	}

	if site.LinkIDFormat == "" {
		return res, nil
	}

	linkID := fmt.Sprintf(site.LinkIDFormat, sku)
	href, ok := doc.Find(fmt.Sprintf("a[id=%q]", linkID)).Attr("href")
	if !ok || href == "" {
		s.logger.Printf("[SKU %s] no product link found on %s", sku, site.Key)
		return res, nil
	}

	productURL, err := resolveHref(site.BaseURL, href)
	if err != nil {
		s.logger.Printf("[SKU %s] unusable product link %q: %v", sku, href, err)
		return res, nil
	}

	res.ProductURL = productURL
	return res, nil
}

// resolveHref resolves a (possibly relative) href against the site base URL.
func resolveHref(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(ref).String(), nil
}
