// Package log provides logging construction for the scanner.
//
// Loggers built here clamp oversized string attributes before the
// record reaches the underlying handler. Crawl diagnostics routinely
// carry page text, schema blocks, and long URLs; without a cap a single
// debug line can dump a whole page body into the log stream.
package log
