package domain

import "time"

// Classification is the terminal outcome of checking one SKU.
// It is assigned exactly once per SKU per run.
type Classification string

const (
	// Found means the product page exists and contains the content marker.
	Found Classification = "Found"
	// NotFound means the product page exists but lacks the content marker.
	NotFound Classification = "NotFound"
	// Error covers everything else: exhausted retries, missing product
	// link, or a failed product-page fetch.
	Error Classification = "Error"
)

// ResultRecord holds the outcome for a single SKU.
// URL is the last URL the pipeline attempted for this SKU: the search URL
// when the lookup never reached a product page, the product URL otherwise.
type ResultRecord struct {
	SKU            string         `json:"sku"`
	URL            string         `json:"url"`
	Classification Classification `json:"classification"`
}

// RunReport summarizes a completed batch run.
type RunReport struct {
	RunID       string    `json:"run_id"`
	Site        string    `json:"site"`
	Total       int       `json:"total"`
	Found       int       `json:"found"`
	NotFound    int       `json:"not_found"`
	Errors      int       `json:"errors"`
	CompletedAt time.Time     `json:"completed_at"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Tally counts the records into the report's per-classification totals.
func (r *RunReport) Tally(records []ResultRecord) {
	r.Total = len(records)
	r.Found, r.NotFound, r.Errors = 0, 0, 0
	for _, rec := range records {
		switch rec.Classification {
		case Found:
			r.Found++
		case NotFound:
			r.NotFound++
		default:
			r.Errors++
		}
	}
}
