package navdata

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestAnomalyLevel(t *testing.T) {
	cases := []struct {
		severity float64
		want     AlertLevel
	}{
		{0.9, LevelCritical},
		{0.8, LevelCritical},
		{0.6, LevelWarning},
		{0.5, LevelWarning},
		{0.2, LevelInfo},
	}
	for _, c := range cases {
		a := &Anomaly{Severity: c.severity}
		if got := a.Level(); got != c.want {
			t.Errorf("severity %.1f -> %s, want %s", c.severity, got, c.want)
		}
	}
}

func TestSpoofingAlertLevelNeverInfo(t *testing.T) {
	cases := []struct {
		confidence float64
		want       AlertLevel
	}{
		{0.9, LevelEmergency},
		{0.7, LevelEmergency},
		{0.6, LevelCritical},
		{0.5, LevelCritical},
		{0.1, LevelWarning},
		{0.0, LevelWarning},
	}
	for _, c := range cases {
		s := &SpoofingAlert{Confidence: c.confidence}
		if got := s.Level(); got != c.want {
			t.Errorf("confidence %.1f -> %s, want %s", c.confidence, got, c.want)
		}
	}
}

func TestAlertLevelRank(t *testing.T) {
	if LevelEmergency.Rank() <= LevelCritical.Rank() ||
		LevelCritical.Rank() <= LevelWarning.Rank() ||
		LevelWarning.Rank() <= LevelInfo.Rank() {
		t.Error("alert level ranks are not strictly ordered")
	}
}

func TestOutputMarshalDerivedFields(t *testing.T) {
	out := &Output{
		Timestamp: time.Now(),
		FusedData: &FusedData{},
		SpoofingAlerts: []SpoofingAlert{
			{ID: "s1", Kind: SpoofingGPS, Confidence: 0.8},
		},
		Alerts: []Alert{
			{ID: "a1", Level: LevelEmergency},
			{ID: "a2", Level: LevelCritical},
			{ID: "a3", Level: LevelInfo},
		},
	}
	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["has_spoofing"] != true {
		t.Error("has_spoofing not true")
	}
	if decoded["critical_alert_count"] != float64(2) {
		t.Errorf("critical_alert_count = %v, want 2", decoded["critical_alert_count"])
	}
}

func TestAnomalyMarshalIncludesAlertLevel(t *testing.T) {
	a := Anomaly{ID: "x", Kind: AnomalySpeed, Severity: 0.9}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"alert_level":"critical"`) {
		t.Errorf("alert_level missing from %s", data)
	}
}
