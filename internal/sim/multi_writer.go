package sim

import "navwatch/internal/navdata"

// MultiWriter fans assessment and alert rows out to multiple writers.
type MultiWriter struct {
	assessWriters []AssessmentWriter
	alertWriters  []AlertWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(aws []AssessmentWriter, lws []AlertWriter) *MultiWriter {
	return &MultiWriter{assessWriters: aws, alertWriters: lws}
}

// WriteAssessment sends an assessment row to all writers.
func (mw *MultiWriter) WriteAssessment(row navdata.AssessmentRow) error {
	for _, w := range mw.assessWriters {
		if err := w.WriteAssessment(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteAlert sends an alert row to all alert writers.
func (mw *MultiWriter) WriteAlert(row navdata.AlertRow) error {
	for _, w := range mw.alertWriters {
		if err := w.WriteAlert(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteAlerts sends multiple alerts to all alert writers, using batch mode
// where supported.
func (mw *MultiWriter) WriteAlerts(rows []navdata.AlertRow) error {
	for _, w := range mw.alertWriters {
		if bw, ok := w.(batchAlertWriter); ok {
			if err := bw.WriteAlerts(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteAlert(r); err != nil {
				return err
			}
		}
	}
	return nil
}
