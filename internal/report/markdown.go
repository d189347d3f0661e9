package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/bizscan/bizscan/internal/model"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown, suitable
// for pasting into issues or documentation.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeBusiness(md, report)
	w.writeFailures(md, report)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("Business Scan Report")
	md.PlainText("")

	status := "✅ Complete"
	if report.Cancelled {
		status = "⚠️ Cancelled (partial results)"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Website", "`" + report.SeedURL + "`"},
			{"Scan Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Scan Mode", report.Mode},
			{"Pages Visited", strconv.Itoa(report.PagesVisited)},
			{"Pages Failed", strconv.Itoa(report.PagesFailed)},
			{"Elapsed", report.Elapsed.Round(10 * time.Millisecond).String()},
			{"Status", status},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeBusiness(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Business Information")
	md.PlainText("")

	if report.Business == nil || len(report.Business.FieldNames()) == 0 {
		md.PlainText("No business information found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0)
	for _, name := range report.Business.FieldNames() {
		field, _ := report.Business.Get(name)
		rows = append(rows, []string{fieldLabel(name), field.Value, field.Source})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value", "Found On"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.ScanReport) {
	if len(report.Failures) == 0 {
		return
	}

	md.H2("Failed Pages")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Failures))
	for _, failure := range report.Failures {
		rows = append(rows, []string{"`" + failure.URL + "`", failure.Kind, failure.Message})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Kind", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}
