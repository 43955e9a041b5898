package sim

import (
	"testing"

	"navwatch/internal/navdata"
)

// batchMockAlertWriter records whether alerts arrived as a batch.
type batchMockAlertWriter struct {
	MockAlertWriter
	batches int
}

func (w *batchMockAlertWriter) WriteAlerts(rows []navdata.AlertRow) error {
	w.batches++
	w.Alerts = append(w.Alerts, rows...)
	return nil
}

func TestMultiWriterFanOut(t *testing.T) {
	a := &MockWriter{}
	b := &MockWriter{}
	alerts := &MockAlertWriter{}
	mw := NewMultiWriter([]AssessmentWriter{a, b}, []AlertWriter{alerts})

	if err := mw.WriteAssessment(sampleRow()); err != nil {
		t.Fatalf("WriteAssessment: %v", err)
	}
	if len(a.Rows) != 1 || len(b.Rows) != 1 {
		t.Fatalf("rows = %d/%d, want 1/1", len(a.Rows), len(b.Rows))
	}

	if err := mw.WriteAlert(navdata.AlertRow{AlertID: "x"}); err != nil {
		t.Fatalf("WriteAlert: %v", err)
	}
	if len(alerts.Alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts.Alerts))
	}
}

func TestMultiWriterBatchAlerts(t *testing.T) {
	batch := &batchMockAlertWriter{}
	single := &MockAlertWriter{}
	mw := NewMultiWriter(nil, []AlertWriter{batch, single})

	rows := []navdata.AlertRow{{AlertID: "a"}, {AlertID: "b"}}
	if err := mw.WriteAlerts(rows); err != nil {
		t.Fatalf("WriteAlerts: %v", err)
	}
	if batch.batches != 1 {
		t.Errorf("batch calls = %d, want 1", batch.batches)
	}
	if len(batch.Alerts) != 2 {
		t.Errorf("batched alerts = %d, want 2", len(batch.Alerts))
	}
	if len(single.Alerts) != 2 {
		t.Errorf("per-row alerts = %d, want 2", len(single.Alerts))
	}
}
