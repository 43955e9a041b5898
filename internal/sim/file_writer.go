package sim

import (
	"encoding/json"
	"os"

	"navwatch/internal/navdata"
)

// FileWriter writes assessment and alert rows to JSONL files.
type FileWriter struct {
	assessFile *os.File
	alertFile  *os.File
	assessEnc  *json.Encoder
	alertEnc   *json.Encoder
}

// NewFileWriter creates a FileWriter. alertPath may be empty to skip the
// alert log.
func NewFileWriter(assessmentPath, alertPath string) (*FileWriter, error) {
	af, err := os.Create(assessmentPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{assessFile: af, assessEnc: json.NewEncoder(af)}
	if alertPath != "" {
		lf, err := os.Create(alertPath)
		if err != nil {
			af.Close()
			return nil, err
		}
		fw.alertFile = lf
		fw.alertEnc = json.NewEncoder(lf)
	}
	return fw, nil
}

// WriteAssessment logs a single assessment row.
func (f *FileWriter) WriteAssessment(row navdata.AssessmentRow) error {
	return f.assessEnc.Encode(row)
}

// WriteAlert logs a single alert row, if enabled.
func (f *FileWriter) WriteAlert(row navdata.AlertRow) error {
	if f.alertEnc == nil {
		return nil
	}
	return f.alertEnc.Encode(row)
}

// WriteAlerts logs multiple alert rows.
func (f *FileWriter) WriteAlerts(rows []navdata.AlertRow) error {
	for _, r := range rows {
		if err := f.WriteAlert(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.assessFile != nil {
		if e := f.assessFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.alertFile != nil {
		if e := f.alertFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
