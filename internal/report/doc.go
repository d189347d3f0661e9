// Package report renders scan results.
//
// Every format implements the same Writer interface over a
// model.ScanReport: plain text for the terminal, JSON and Markdown for
// tooling, CSV and Excel for spreadsheet export. MultiWriter fans one
// report out to several destinations at once.
package report
