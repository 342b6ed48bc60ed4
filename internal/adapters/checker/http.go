package checker

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"skucheck/internal/core/domain"
)

// DefaultTimeout is the per-request timeout used when no client is injected.
const DefaultTimeout = 30 * time.Second

// HTTPChecker tests a product page for the site's content marker using
// standard HTTP. It makes exactly one attempt per call; the product URL
// came from a page that was just fetched, so failures here are not treated
// as transient.
type HTTPChecker struct {
	client *http.Client
	logger *log.Logger
}

// NewHTTPChecker creates a new HTTPChecker sharing the run's HTTP client.
// Pass nil to get a private client with the default timeout.
func NewHTTPChecker(client *http.Client, logger *log.Logger) *HTTPChecker {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPChecker{client: client, logger: logger}
}

// Check fetches the product page and reports whether its body contains the
// site's marker substring.
func (c *HTTPChecker) Check(ctx context.Context, site domain.SiteProfile, productURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, productURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Printf("product page fetch failed for %s: %v", productURL, err)
		return false, fmt.Errorf("product page fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("product page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read product page: %w", err)
	}

	return strings.Contains(string(body), site.Marker), nil
}
