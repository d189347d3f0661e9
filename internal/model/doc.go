// Package model defines the core data structures shared across bizscan:
// crawled pages, the aggregated business record, and the scan report
// returned to report writers and exporters.
package model
