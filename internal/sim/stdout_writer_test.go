package sim

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"navwatch/internal/config"
	"navwatch/internal/navdata"
)

func sampleRow() navdata.AssessmentRow {
	return navdata.AssessmentRow{
		VesselID:          "vessel-01",
		Lat:               51.5074,
		Lon:               -0.1278,
		SpeedKn:           12.3,
		OverallConfidence: 0.82,
		TargetCount:       3,
		Timestamp:         time.Unix(0, 0).UTC(),
	}
}

func TestJSONStdoutWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &JSONStdoutWriter{out: buf}

	if err := w.WriteAssessment(sampleRow()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"vessel_id":"vessel-01"`) {
		t.Fatalf("vessel id missing: %q", buf.String())
	}
}

func TestColorStdoutWriterOverviewOnce(t *testing.T) {
	cfg := &config.Default().Simulation
	buf := &bytes.Buffer{}
	w := &ColorStdoutWriter{cfg: cfg, out: buf}

	if err := w.WriteAssessment(sampleRow()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "Simulation Configuration:") {
		t.Fatalf("overview not printed: %q", output)
	}
	if !strings.Contains(output, "\x1b[") {
		t.Fatalf("expected color codes in output: %q", output)
	}

	buf.Reset()
	if err := w.WriteAssessment(sampleRow()); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	if strings.Contains(buf.String(), "Simulation Configuration:") {
		t.Fatal("overview printed more than once")
	}
}

func TestColorStdoutWriterSpoofingMarker(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &ColorStdoutWriter{out: buf}

	row := sampleRow()
	row.HasSpoofing = true
	row.SpoofingCount = 2
	if err := w.WriteAssessment(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "SPOOFED") {
		t.Fatalf("spoofing marker missing: %q", buf.String())
	}
}

func TestColorStdoutWriterAlert(t *testing.T) {
	buf := &bytes.Buffer{}
	w := &ColorStdoutWriter{out: buf}

	alert := navdata.AlertRow{
		VesselID:  "vessel-01",
		AlertID:   "gps_spoof_1a2b3c4d",
		Level:     "critical",
		Title:     "SPOOFING DETECTED: GPS SPOOFING",
		Source:    "spoofing_detector",
		Timestamp: time.Unix(0, 0).UTC(),
	}
	if err := w.WriteAlert(alert); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "ALERT") || !strings.Contains(out, "critical") {
		t.Fatalf("alert line incomplete: %q", out)
	}
}
