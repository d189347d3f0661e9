// Package crawler implements the crawl engine: URL normalization, path
// policy classification, the retrying HTTP fetcher, the page parser, and
// the spider that drives breadth-first traversal of a site's internal
// link graph with a bounded worker pool.
package crawler
