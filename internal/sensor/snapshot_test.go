package sensor

import (
	"encoding/json"
	"testing"
)

func TestSnapshotDecode(t *testing.T) {
	raw := `{
		"gps": {"latitude": 51.5074, "longitude": -0.1278, "speed": 12.5, "course": 45.0, "timestamp": "2026-03-01T12:00:00Z"},
		"ais": {"mmsi": "235123456", "latitude": 51.5074, "longitude": -0.1278, "heading": 46.0,
			"targets": [{"mmsi": "235012345", "name": "MV ALPHA", "latitude": 51.52, "longitude": -0.17, "cpa": 1.2, "tcpa": 8.0}]},
		"weather": {"wind_speed": 15.0, "visibility": "moderate"}
	}`
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if snap.GPS == nil || !snap.GPS.HasPosition() {
		t.Fatal("gps position missing")
	}
	if *snap.GPS.Speed != 12.5 {
		t.Errorf("gps speed = %f, want 12.5", *snap.GPS.Speed)
	}
	if snap.AIS == nil || len(snap.AIS.Targets) != 1 {
		t.Fatal("ais targets missing")
	}
	if tg := snap.AIS.Targets[0]; tg.MMSI != "235012345" || *tg.CPA != 1.2 {
		t.Errorf("unexpected target: %+v", tg)
	}
	if snap.Radar != nil || snap.Engine != nil {
		t.Error("absent sensors decoded as present")
	}
}

func TestFieldCount(t *testing.T) {
	gps := &GPSReading{
		Latitude:  Float(51.5),
		Longitude: Float(-0.12),
		Speed:     Float(12),
		Course:    Float(45),
		Timestamp: "2026-03-01T12:00:00Z",
	}
	if got := gps.FieldCount(); got != 5 {
		t.Errorf("gps field count = %d, want 5", got)
	}
	if got := (&GPSReading{}).FieldCount(); got != 0 {
		t.Errorf("empty gps field count = %d, want 0", got)
	}

	radar := &RadarReading{
		OwnShip: &OwnShipReading{Latitude: Float(51.5), Longitude: Float(-0.12)},
		Targets: []TargetReading{{Latitude: Float(51.52), Longitude: Float(-0.1)}},
	}
	if got := radar.FieldCount(); got != 2 {
		t.Errorf("radar field count = %d, want 2", got)
	}
}

func TestReadingsPresence(t *testing.T) {
	snap := &Snapshot{
		GPS:  &GPSReading{Latitude: Float(1), Longitude: Float(2)},
		Tide: &TideReading{Height: Float(1.4), Type: "flood"},
	}
	readings := snap.Readings()
	if len(readings) != 2 {
		t.Fatalf("readings = %d, want 2", len(readings))
	}
	if _, ok := readings["gps"]; !ok {
		t.Error("gps missing from readings")
	}
	if _, ok := readings["tide"]; !ok {
		t.Error("tide missing from readings")
	}
}

func TestWeatherMap(t *testing.T) {
	w := &WeatherReading{WindSpeed: Float(15), Visibility: "good"}
	m := w.Map()
	if m["wind_speed"] != 15.0 || m["visibility"] != "good" {
		t.Errorf("unexpected map: %v", m)
	}
	if _, ok := m["pressure"]; ok {
		t.Error("absent field present in map")
	}
}
