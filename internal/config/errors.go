package config

import "errors"

// Configuration validation errors, returned by Config.Validate.
// Package-level sentinels so callers can match with errors.Is while
// the messages stay human-readable.
var (
	// ErrNoTarget is returned when neither a positional URL nor a
	// --batch list file names anything to scan.
	ErrNoTarget = errors.New("no target specified: provide a website URL or use --batch")

	// ErrInvalidTimeout is returned when the request timeout is not
	// positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxAttempts is returned when the retry budget is not
	// positive. At least one attempt is always required.
	ErrInvalidMaxAttempts = errors.New("invalid max attempts: must be positive")

	// ErrInvalidMaxPages is returned when the crawl page cap is not
	// positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not
	// positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidQuickScanPages is returned when the quick scan page
	// cap is not positive.
	ErrInvalidQuickScanPages = errors.New("invalid quick scan pages: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is
	// negative. Use 0 for no delay.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not
	// positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
