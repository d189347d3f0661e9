package model

import "time"

// Crawl mode names recorded in the scan report.
const (
	ModeFullCrawl = "full"
	ModeQuickScan = "quick"
)

// PageFailure describes one page that could not be fetched after the
// retry policy was exhausted. Failures never abort a crawl; they are
// collected here for reporting.
type PageFailure struct {
	// URL is the page that failed.
	URL string `json:"url"`

	// Kind is the failure classification (timeout, connection, http,
	// invalid_url).
	Kind string `json:"kind"`

	// Message is the underlying error text.
	Message string `json:"message"`
}

// ScanReport is the result of one crawl run: the aggregated business
// record plus crawl metadata and the failure report. It is the core's
// output contract toward report writers and exporters.
type ScanReport struct {
	// SeedURL is the normalized URL the crawl started from.
	SeedURL string `json:"seed_url"`

	// Domain is the host the crawl was confined to.
	Domain string `json:"domain"`

	// Mode is the crawl mode, ModeFullCrawl or ModeQuickScan.
	Mode string `json:"mode"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total crawl duration.
	Elapsed time.Duration `json:"elapsed"`

	// PagesVisited counts pages fetched and parsed successfully.
	PagesVisited int `json:"pages_visited"`

	// PagesFailed counts pages that failed after exhausting retries.
	PagesFailed int `json:"pages_failed"`

	// Cancelled reports whether the crawl was cut short by cancellation
	// or deadline. The report still carries everything gathered so far.
	Cancelled bool `json:"cancelled,omitempty"`

	// Business is the aggregated business record.
	Business *BusinessInfo `json:"business"`

	// Failures lists every page that failed, in discovery order.
	Failures []PageFailure `json:"failures,omitempty"`
}

// NewScanReport creates an empty report for the given seed URL.
func NewScanReport(seedURL string) *ScanReport {
	return &ScanReport{
		SeedURL:   seedURL,
		Mode:      ModeFullCrawl,
		StartedAt: time.Now(),
		Business:  NewBusinessInfo(),
	}
}

// AddFailure appends a page failure to the report.
func (r *ScanReport) AddFailure(url, kind, message string) {
	r.Failures = append(r.Failures, PageFailure{URL: url, Kind: kind, Message: message})
	r.PagesFailed++
}
