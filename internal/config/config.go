package config

import "time"

// Default configuration values. The network-facing defaults lean
// conservative: small business sites are often on cheap shared hosting
// that rate-limits aggressive clients.
const (
	// DefaultTimeout bounds each HTTP request. Sites that need longer
	// than ten seconds per page are not worth waiting on during a scan.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxAttempts is the total number of tries per URL, the
	// first request included. Transient errors get two retries.
	DefaultMaxAttempts = 3

	// DefaultBackoffBase is the exponential backoff base between
	// retries: 1s, then 2s.
	DefaultBackoffBase = 1 * time.Second

	// DefaultMaxPages caps a full crawl. Prevents runaway crawling on
	// large or infinitely-generating sites; override with --max-pages.
	DefaultMaxPages = 100

	// DefaultWorkers is the number of concurrent fetch workers.
	DefaultWorkers = 4

	// DefaultQuickScanPages caps a quick scan, the root page included.
	DefaultQuickScanPages = 6

	// DefaultCrawlDelay is the politeness delay between requests.
	// Zero by default; set --delay when scanning fragile hosts.
	DefaultCrawlDelay = 0 * time.Second

	// DefaultBatchSize is the number of concurrent scans when
	// processing a target list file.
	DefaultBatchSize = 4

	// DefaultUserAgent identifies the scanner in HTTP requests so site
	// operators can recognize the traffic in their logs.
	DefaultUserAgent = "bizscan/1.0 (+https://github.com/bizscan/bizscan)"

	// DefaultMaxBodySize limits how many response bytes are read per
	// page. 5MB covers any real HTML page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Config holds all scanner options. A single flat struct populated from
// CLI flags and the rules file, passed through the application rather
// than read from global state.
type Config struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// MaxAttempts is the total number of fetch attempts per URL.
	MaxAttempts int

	// BackoffBase is the exponential backoff base between retries.
	BackoffBase time.Duration

	// CrawlDelay is the politeness delay between requests, shared
	// across all workers. Zero disables it.
	CrawlDelay time.Duration

	// MaxPages caps how many pages a full crawl fetches.
	MaxPages int

	// Workers is the number of concurrent fetch workers.
	Workers int

	// QuickScan restricts the crawl to the root page plus well-known
	// paths instead of following the link graph.
	QuickScan bool

	// QuickScanPages caps a quick scan, the root page included.
	QuickScanPages int

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// BatchSize is the number of concurrent scans for --batch lists.
	BatchSize int

	// RulesFilePath is the path to the rules file. Empty means search
	// the current directory and then the home directory.
	RulesFilePath string

	// Rules holds path rules and custom variables once loaded.
	Rules *Rules

	// JSONReport emits the report as JSON instead of plain text.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport emits the report as GitHub Flavored Markdown.
	MarkdownReport bool

	// CSVExport additionally writes the report to a CSV file.
	CSVExport bool

	// ExcelExport additionally writes the report to an Excel workbook.
	ExcelExport bool

	// OutputPath is the base path for export files. Empty derives a
	// name from the scanned domain.
	OutputPath string

	// Targets are the website URLs to scan, from positional arguments.
	Targets []string
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Timeout:        DefaultTimeout,
		MaxAttempts:    DefaultMaxAttempts,
		BackoffBase:    DefaultBackoffBase,
		CrawlDelay:     DefaultCrawlDelay,
		MaxPages:       DefaultMaxPages,
		Workers:        DefaultWorkers,
		QuickScanPages: DefaultQuickScanPages,
		BatchSize:      DefaultBatchSize,
		Rules:          &Rules{},
	}
}

// Validate checks the configuration and returns the first problem
// found as one of the package sentinel errors.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.QuickScanPages <= 0 {
		return ErrInvalidQuickScanPages
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
