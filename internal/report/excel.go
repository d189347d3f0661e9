package report

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/bizscan/bizscan/internal/model"
)

// Sheet names in the generated workbook.
const (
	businessSheet = "Business"
	failureSheet  = "Failed Pages"
)

// ExcelWriter exports the report as an Excel workbook with one sheet
// for the business record and one for failed pages.
type ExcelWriter struct {
	baseWriter
}

// NewExcelWriter creates an ExcelWriter that outputs to the given
// writer.
func NewExcelWriter(output io.Writer) *ExcelWriter {
	return &ExcelWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report as an xlsx workbook.
func (w *ExcelWriter) Write(report *model.ScanReport) (int, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory file, nothing to release on error

	if err := f.SetSheetName("Sheet1", businessSheet); err != nil {
		return 0, err
	}
	if err := w.writeBusinessSheet(f, report); err != nil {
		return 0, err
	}
	if len(report.Failures) > 0 {
		if err := w.writeFailureSheet(f, report); err != nil {
			return 0, err
		}
	}

	n, err := f.WriteTo(w.output)
	return int(n), err
}

func (w *ExcelWriter) writeBusinessSheet(f *excelize.File, report *model.ScanReport) error {
	header := [][]any{
		{"Website", report.SeedURL},
		{"Scan Date", report.StartedAt.Format("2006-01-02 15:04:05")},
		{"Scan Mode", report.Mode},
		{"Pages Visited", report.PagesVisited},
		{"Pages Failed", report.PagesFailed},
		{},
		{"Field", "Value", "Found On"},
	}
	row := 1
	for _, cells := range header {
		if err := setRow(f, businessSheet, row, cells); err != nil {
			return err
		}
		row++
	}

	if report.Business == nil {
		return nil
	}
	for _, name := range report.Business.FieldNames() {
		field, _ := report.Business.Get(name)
		if err := setRow(f, businessSheet, row, []any{fieldLabel(name), field.Value, field.Source}); err != nil {
			return err
		}
		row++
	}
	return nil
}

func (w *ExcelWriter) writeFailureSheet(f *excelize.File, report *model.ScanReport) error {
	if _, err := f.NewSheet(failureSheet); err != nil {
		return err
	}
	if err := setRow(f, failureSheet, 1, []any{"URL", "Kind", "Error"}); err != nil {
		return err
	}
	for i, failure := range report.Failures {
		if err := setRow(f, failureSheet, i+2, []any{failure.URL, failure.Kind, failure.Message}); err != nil {
			return err
		}
	}
	return nil
}

// setRow writes a row of cells starting at column A.
func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	for i, cell := range cells {
		name, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, name, cell); err != nil {
			return err
		}
	}
	return nil
}
