package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/bizscan/bizscan/internal/model"
)

// CSVWriter exports the business record as field/value/source rows.
// One row per populated field keeps the export stable as the
// vocabulary grows, unlike a single wide row whose columns shift.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report as CSV. The byte count is approximate to
// the encoder's buffering and reported after flush.
func (w *CSVWriter) Write(report *model.ScanReport) (int, error) {
	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)

	records := [][]string{
		{"field", "value", "source"},
		{"website", report.SeedURL, ""},
		{"scan_mode", report.Mode, ""},
		{"pages_visited", strconv.Itoa(report.PagesVisited), ""},
		{"pages_failed", strconv.Itoa(report.PagesFailed), ""},
	}

	if report.Business != nil {
		for _, name := range report.Business.FieldNames() {
			field, _ := report.Business.Get(name)
			records = append(records, []string{name, field.Value, field.Source})
		}
	}

	if err := cw.WriteAll(records); err != nil {
		return counter.n, err
	}
	return counter.n, cw.Error()
}

// countingWriter tracks bytes written through it.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
