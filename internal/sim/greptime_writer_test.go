package sim

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"navwatch/internal/logging"
	"navwatch/internal/navdata"
)

type mockGreptimeClient struct {
	table *table.Table
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	if len(tables) > 0 {
		m.table = tables[0]
	}
	return &gpb.GreptimeResponse{}, nil
}

func testGreptimeWriter(m *mockGreptimeClient) *GreptimeDBWriter {
	return &GreptimeDBWriter{
		client:      m,
		log:         logging.NewWriter(io.Discard, slog.LevelError),
		assessTable: "sa_assessments",
		alertTable:  "sa_alerts",
	}
}

func TestGreptimeWriterAssessments(t *testing.T) {
	rows := []navdata.AssessmentRow{{
		VesselID:          "vessel-01",
		Lat:               51.51,
		Lon:               -0.12,
		SpeedKn:           12.3,
		CourseDeg:         45,
		HeadingDeg:        44.1,
		FusionConfidence:  0.9,
		OverallConfidence: 0.82,
		TargetCount:       3,
		AnomalyCount:      1,
		HasSpoofing:       false,
		Timestamp:         time.Unix(0, 0).UTC(),
	}}

	m := &mockGreptimeClient{}
	w := testGreptimeWriter(m)

	if err := w.WriteAssessments(rows); err != nil {
		t.Fatalf("WriteAssessments: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}

	schema := m.table.GetRows().Schema
	if len(schema) != 14 {
		t.Fatalf("unexpected schema length: %d", len(schema))
	}
	if schema[0].SemanticType != gpb.SemanticType_TAG {
		t.Fatalf("vessel_id semantic type = %v, want TAG", schema[0].SemanticType)
	}

	values := m.table.GetRows().Rows[0].Values
	if got := values[0].GetStringValue(); got != "vessel-01" {
		t.Fatalf("vessel_id = %s, want vessel-01", got)
	}
	if got := values[8].GetI64Value(); got != 3 {
		t.Fatalf("target_count = %d, want 3", got)
	}
	if values[12].GetBoolValue() {
		t.Fatal("has_spoofing = true, want false")
	}
}

func TestGreptimeWriterAlerts(t *testing.T) {
	rows := []navdata.AlertRow{{
		VesselID:  "vessel-01",
		AlertID:   "gps_spoof_1a2b3c4d",
		Level:     "critical",
		Title:     "SPOOFING DETECTED: GPS SPOOFING",
		Message:   "Position jump of 0.62 NM",
		Source:    "spoofing_detector",
		Timestamp: time.Unix(0, 0).UTC(),
	}}

	m := &mockGreptimeClient{}
	w := testGreptimeWriter(m)

	if err := w.WriteAlerts(rows); err != nil {
		t.Fatalf("WriteAlerts: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}

	values := m.table.GetRows().Rows[0].Values
	if got := values[1].GetStringValue(); got != "gps_spoof_1a2b3c4d" {
		t.Fatalf("alert_id = %s, want gps_spoof_1a2b3c4d", got)
	}
	if got := values[2].GetStringValue(); got != "critical" {
		t.Fatalf("level = %s, want critical", got)
	}
}

func TestGreptimeWriterEmptyBatch(t *testing.T) {
	m := &mockGreptimeClient{}
	w := testGreptimeWriter(m)

	if err := w.WriteAssessments(nil); err != nil {
		t.Fatalf("empty assessment batch: %v", err)
	}
	if err := w.WriteAlerts(nil); err != nil {
		t.Fatalf("empty alert batch: %v", err)
	}
	if m.table != nil {
		t.Fatal("empty batch reached the client")
	}
}

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		host     string
		port     int
	}{
		{"localhost:4001", "localhost", 4001},
		{"greptime.internal", "greptime.internal", 0},
		{"10.0.0.5:4001", "10.0.0.5", 4001},
	}
	for _, tt := range tests {
		host, port := splitEndpoint(tt.endpoint)
		if host != tt.host || port != tt.port {
			t.Errorf("splitEndpoint(%q) = (%q, %d), want (%q, %d)",
				tt.endpoint, host, port, tt.host, tt.port)
		}
	}
}
