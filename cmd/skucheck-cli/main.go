package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"skucheck/internal/adapters/checker"
	"skucheck/internal/adapters/search"
	"skucheck/internal/core/domain"
	"skucheck/internal/service"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, environment variables might be set manually
		log.Println("No .env file found")
	}

	// Defaults come from the environment (SKUCHECK_*); flags win over both.
	skuFile := flag.String("skus", "", "File with one SKU per line")
	siteKey := flag.String("site", envStr("SKUCHECK_SITE", "efacil"), "Site to check against")
	outFile := flag.String("out", envStr("SKUCHECK_OUT", "results.csv"), "CSV file for the results")
	batchSize := flag.Int("batch-size", envInt("SKUCHECK_BATCH_SIZE", service.DefaultBatchSize), "SKUs checked concurrently per batch")
	attempts := flag.Int("attempts", envInt("SKUCHECK_ATTEMPTS", service.DefaultMaxAttempts), "Search attempts per SKU")
	timeout := flag.Duration("timeout", envDuration("SKUCHECK_TIMEOUT", search.DefaultTimeout), "Per-request HTTP timeout")
	backoff := flag.Duration("backoff", envDuration("SKUCHECK_BACKOFF", service.DefaultBackoff), "Pause between search attempts")
	flag.Parse()

	if *skuFile == "" {
		fmt.Println("Usage: skucheck-cli -skus <file> [-site <key>] [-out <csv>]")
		fmt.Println("\nExample:")
		fmt.Println("  skucheck-cli -skus skus.txt -site efacil -out results.csv")
		fmt.Printf("\nSites: %s\n", strings.Join(domain.SiteKeys(), ", "))
		os.Exit(1)
	}

	// Setup logger
	logger := log.New(os.Stdout, "", log.LstdFlags)

	logger.Println("=== SKU Content Checker ===")
	logger.Printf("SKU file: %s", *skuFile)
	logger.Printf("Site:     %s", *siteKey)

	skus, err := readSKUs(*skuFile)
	if err != nil {
		logger.Fatalf("Failed to read SKU file: %v", err)
	}
	if len(skus) == 0 {
		logger.Fatalf("SKU file %s contains no SKUs", *skuFile)
	}

	// One pooled client for the whole run, shared by both stages.
	client := &http.Client{Timeout: *timeout}

	searcher := service.NewRetryingSearcher(
		search.NewHTTPSearcher(client, logger), *attempts, *backoff, logger)
	chk := checker.NewHTTPChecker(client, logger)
	runner := service.NewRunner(searcher, chk, *batchSize, logger)

	total := len(skus)
	onProgress := func(completed int) {
		logger.Printf("progress: %d/%d", completed, total)
	}

	records, report, err := runner.Run(context.Background(), *siteKey, skus, onProgress)
	if err != nil {
		logger.Printf("Run failed: %v", err)
		os.Exit(1)
	}

	if err := writeCSV(*outFile, records); err != nil {
		logger.Fatalf("Failed to write results: %v", err)
	}

	// Print summary
	fmt.Println("\n=== Run Summary ===")
	fmt.Printf("Run ID:       %s\n", report.RunID)
	fmt.Printf("Site:         %s\n", report.Site)
	fmt.Printf("Checked:      %d\n", report.Total)
	fmt.Printf("Found:        %d\n", report.Found)
	fmt.Printf("Not found:    %d\n", report.NotFound)
	fmt.Printf("Errors:       %d\n", report.Errors)
	fmt.Printf("Results:      %s\n", *outFile)
	fmt.Printf("Completed At: %s\n", report.CompletedAt.Format("2006-01-02 15:04:05 UTC"))
}

// readSKUs reads one SKU per line, trimming whitespace and skipping blank
// lines and # comments.
func readSKUs(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var skus []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		skus = append(skus, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return skus, nil
}

// writeCSV writes the result records with a SKU,URL,HasContent header.
func writeCSV(path string, records []domain.ResultRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"SKU", "URL", "HasContent"}); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write([]string{rec.SKU, rec.URL, string(rec.Classification)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
