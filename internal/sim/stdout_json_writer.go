package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"navwatch/internal/navdata"
)

// JSONStdoutWriter prints assessments and alerts as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// WriteAssessment outputs an assessment row in JSON format.
func (w *JSONStdoutWriter) WriteAssessment(row navdata.AssessmentRow) error {
	data, _ := json.Marshal(row)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteAlert outputs an alert row in JSON format.
func (w *JSONStdoutWriter) WriteAlert(row navdata.AlertRow) error {
	data, _ := json.Marshal(row)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteAlerts outputs multiple alert rows in JSON format.
func (w *JSONStdoutWriter) WriteAlerts(rows []navdata.AlertRow) error {
	for _, r := range rows {
		_ = w.WriteAlert(r)
	}
	return nil
}
