package report

import (
	"encoding/json"
	"io"

	"github.com/bizscan/bizscan/internal/model"
)

// JSONWriter outputs reports as indented JSON. The shape follows the
// model types' JSON tags so downstream tooling gets a stable schema.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report as JSON.
func (w *JSONWriter) Write(report *model.ScanReport) (int, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
