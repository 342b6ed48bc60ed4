package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skucheck/internal/core/domain"
	"skucheck/internal/core/ports"
)

// fakeChecker implements ports.Checker with a function field.
type fakeChecker struct {
	CheckFn func(ctx context.Context, site domain.SiteProfile, productURL string) (bool, error)
}

func (f *fakeChecker) Check(ctx context.Context, site domain.SiteProfile, productURL string) (bool, error) {
	return f.CheckFn(ctx, site, productURL)
}

func productSearcher() *fakeSearcher {
	return &fakeSearcher{
		SearchFn: func(_ context.Context, site domain.SiteProfile, sku string) (ports.SearchResult, error) {
			return ports.SearchResult{
				SearchURL:  site.BaseURL + "/busca?sku=" + sku,
				ProductURL: site.BaseURL + "/p/" + sku,
			}, nil
		},
	}
}

func markerChecker(has bool) *fakeChecker {
	return &fakeChecker{
		CheckFn: func(context.Context, domain.SiteProfile, string) (bool, error) {
			return has, nil
		},
	}
}

func TestRunner_Run(t *testing.T) {
	t.Run("one record per SKU, duplicates included", func(t *testing.T) {
		skus := []string{"1", "2", "2", "3"}
		r := NewRunner(productSearcher(), markerChecker(true), 2, quietLogger())

		var progress []int
		records, report, err := r.Run(context.Background(), "efacil", skus, func(n int) {
			progress = append(progress, n)
		})

		require.NoError(t, err)
		assert.Len(t, records, len(skus))
		assert.Equal(t, []int{1, 2, 3, 4}, progress)

		got := make([]string, 0, len(records))
		for _, rec := range records {
			got = append(got, rec.SKU)
			assert.Equal(t, domain.Found, rec.Classification)
		}
		sort.Strings(got)
		assert.Equal(t, []string{"1", "2", "2", "3"}, got)

		require.NotNil(t, report)
		assert.Equal(t, 4, report.Total)
		assert.Equal(t, 4, report.Found)
		assert.NotEmpty(t, report.RunID)
	})

	t.Run("unknown site aborts with zero records", func(t *testing.T) {
		r := NewRunner(productSearcher(), markerChecker(true), 2, quietLogger())

		records, report, err := r.Run(context.Background(), "acme", []string{"1"}, func(int) {
			t.Fatal("progress must not fire on a fatal run")
		})

		require.Error(t, err)
		assert.Nil(t, records)
		assert.Nil(t, report)
	})

	t.Run("empty input yields an empty run", func(t *testing.T) {
		r := NewRunner(productSearcher(), markerChecker(true), 2, quietLogger())

		records, report, err := r.Run(context.Background(), "efacil", nil, nil)

		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Equal(t, 0, report.Total)
	})

	t.Run("marker present classifies Found with the product URL", func(t *testing.T) {
		r := NewRunner(productSearcher(), markerChecker(true), 1, quietLogger())

		records, _, err := r.Run(context.Background(), "efacil", []string{"12345"}, nil)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, domain.Found, records[0].Classification)
		assert.Equal(t, "https://www.efacil.com.br/p/12345", records[0].URL)
	})

	t.Run("marker absent classifies NotFound", func(t *testing.T) {
		r := NewRunner(productSearcher(), markerChecker(false), 1, quietLogger())

		records, _, err := r.Run(context.Background(), "efacil", []string{"12345"}, nil)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, domain.NotFound, records[0].Classification)
		assert.Equal(t, "https://www.efacil.com.br/p/12345", records[0].URL)
	})

	t.Run("missing product link classifies Error with the search URL", func(t *testing.T) {
		searcher := &fakeSearcher{
			SearchFn: func(_ context.Context, site domain.SiteProfile, sku string) (ports.SearchResult, error) {
				return ports.SearchResult{SearchURL: site.BaseURL + "/busca?sku=" + sku}, nil
			},
		}
		checker := &fakeChecker{
			CheckFn: func(context.Context, domain.SiteProfile, string) (bool, error) {
				t.Error("check must not run without a product URL")
				return false, nil
			},
		}
		r := NewRunner(searcher, checker, 1, quietLogger())

		records, _, err := r.Run(context.Background(), "efacil", []string{"12345"}, nil)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, domain.Error, records[0].Classification)
		assert.Equal(t, "https://www.efacil.com.br/busca?sku=12345", records[0].URL)
	})

	t.Run("exhausted search classifies Error", func(t *testing.T) {
		searcher := &fakeSearcher{
			SearchFn: func(_ context.Context, site domain.SiteProfile, sku string) (ports.SearchResult, error) {
				return ports.SearchResult{SearchURL: site.BaseURL + "/busca?sku=" + sku}, errors.New("status 500")
			},
		}
		r := NewRunner(searcher, markerChecker(true), 1, quietLogger())

		records, report, err := r.Run(context.Background(), "efacil", []string{"12345"}, nil)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, domain.Error, records[0].Classification)
		assert.Equal(t, 1, report.Errors)
	})

	t.Run("failed check classifies Error with the product URL", func(t *testing.T) {
		checker := &fakeChecker{
			CheckFn: func(context.Context, domain.SiteProfile, string) (bool, error) {
				return false, errors.New("timeout")
			},
		}
		r := NewRunner(productSearcher(), checker, 1, quietLogger())

		records, _, err := r.Run(context.Background(), "efacil", []string{"12345"}, nil)

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, domain.Error, records[0].Classification)
		assert.Equal(t, "https://www.efacil.com.br/p/12345", records[0].URL)
	})

	t.Run("in-flight lookups never exceed the batch size", func(t *testing.T) {
		var inFlight, peak int32
		var mu sync.Mutex
		searcher := &fakeSearcher{
			SearchFn: func(_ context.Context, site domain.SiteProfile, sku string) (ports.SearchResult, error) {
				n := atomic.AddInt32(&inFlight, 1)
				mu.Lock()
				if n > peak {
					peak = n
				}
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return ports.SearchResult{SearchURL: "u", ProductURL: "p"}, nil
			},
		}
		r := NewRunner(searcher, markerChecker(true), 2, quietLogger())

		records, _, err := r.Run(context.Background(), "efacil",
			[]string{"1", "2", "3", "4", "5"}, nil)

		require.NoError(t, err)
		assert.Len(t, records, 5)
		mu.Lock()
		defer mu.Unlock()
		assert.LessOrEqual(t, peak, int32(2))
	})
}
