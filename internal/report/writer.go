package report

import (
	"io"

	"github.com/bizscan/bizscan/internal/model"
)

// Writer defines the interface for report output. Implementations
// render scan results in a particular format; the destination is fixed
// at construction so the same API writes to files, stdout, or buffers.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.ScanReport) (int, error)
}

// MultiWriter writes a report to multiple Writers, stopping on the
// first error. Used to print to the terminal and export files in one
// pass.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers. Returns the
// total bytes written across all writers.
func (m *MultiWriter) Write(report *model.ScanReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the shared output destination for writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// fieldLabels maps canonical field names to their display labels.
var fieldLabels = map[string]string{
	model.FieldName:            "Business Name",
	model.FieldDescription:     "Description",
	model.FieldWebsite:         "Website",
	model.FieldLogo:            "Logo",
	model.FieldRating:          "Rating",
	model.FieldReviewCount:     "Review Count",
	model.FieldAddress:         "Address",
	model.FieldAreaServed:      "Areas Served",
	model.FieldOpeningHours:    "Hours",
	model.FieldTelephone:       "Phone",
	model.FieldEmail:           "Email",
	model.FieldServices:        "Services",
	model.FieldCategories:      "Categories",
	model.FieldLanguages:       "Languages",
	model.FieldPriceRange:      "Price Range",
	model.FieldPayment:         "Payment Methods",
	model.FieldLicense:         "Licensed",
	model.FieldEmergency:       "24/7 Emergency Service",
	model.FieldOffer:           "Offer/Coupon",
	model.FieldQuoteURL:        "Get a Quote",
	model.FieldFoundingDate:    "Founding Date",
	model.FieldFounders:        "Founders",
	model.FieldSocialMedia:     "Social Media",
	model.FieldMetaDescription: "Meta Description",
	model.FieldMetaKeywords:    "Meta Keywords",
}

// fieldLabel returns the display label for a field name. Custom
// properties requested via configuration display under their own name.
func fieldLabel(name string) string {
	if label, ok := fieldLabels[name]; ok {
		return label
	}
	return name
}
