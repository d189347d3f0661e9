package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bizscan/bizscan/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal
// display. Plain ASCII formatting so output pipes cleanly to files and
// other tools.
type SimpleWriter struct {
	baseWriter

	// verbose adds per-field source attribution and the failure list.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables source attribution and failure details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given
// writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeBusiness(&sb, report)
	w.writeFailures(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          BIZSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Website:        %s\n", report.SeedURL))
	sb.WriteString(fmt.Sprintf("Scan Date:      %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Scan Mode:      %s\n", report.Mode))
	sb.WriteString(fmt.Sprintf("Pages Visited:  %d\n", report.PagesVisited))
	sb.WriteString(fmt.Sprintf("Pages Failed:   %d\n", report.PagesFailed))
	sb.WriteString(fmt.Sprintf("Elapsed:        %s\n", report.Elapsed.Round(10*time.Millisecond)))

	if report.Cancelled {
		sb.WriteString("Status:         CANCELLED (partial results)\n")
	} else {
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

func (w *SimpleWriter) writeBusiness(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("BUSINESS INFORMATION\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if report.Business == nil {
		sb.WriteString("  No business information found.\n\n")
		return
	}

	for _, name := range model.RecognizedFields() {
		field, ok := report.Business.Get(name)
		value := "N/A"
		if ok {
			value = field.Value
		}
		sb.WriteString(fmt.Sprintf("  %-24s %s\n", fieldLabel(name)+":", value))
		if w.verbose && ok && field.Source != "" {
			sb.WriteString(fmt.Sprintf("  %-24s   found on %s\n", "", field.Source))
		}
	}

	recognized := make(map[string]bool)
	for _, name := range model.RecognizedFields() {
		recognized[name] = true
	}
	for _, name := range report.Business.FieldNames() {
		if recognized[name] {
			continue
		}
		field, _ := report.Business.Get(name)
		sb.WriteString(fmt.Sprintf("  %-24s %s\n", name+":", field.Value))
	}

	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.ScanReport) {
	if len(report.Failures) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("FAILED PAGES (%d)\n", len(report.Failures)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, failure := range report.Failures {
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", failure.Kind, failure.URL))
		if w.verbose && failure.Message != "" {
			sb.WriteString(fmt.Sprintf("      %s\n", failure.Message))
		}
	}

	sb.WriteString("\n")
}
