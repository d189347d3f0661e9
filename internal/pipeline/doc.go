// Package pipeline orchestrates scan execution.
//
// A scan is a sequence of steps run against one report: crawl the site,
// then summarize. Steps implement a small interface so the sequence can
// grow without touching the orchestration. BatchProcessor runs whole
// pipelines concurrently for target list files.
package pipeline
