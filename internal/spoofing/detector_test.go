package spoofing

import (
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"navwatch/internal/config"
	"navwatch/internal/logging"
	"navwatch/internal/navdata"
	"navwatch/internal/sensor"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testDetector(stepSec float64) *Detector {
	d := NewDetector(&config.Default().Spoofing, logging.NewWriter(io.Discard, slog.LevelError))
	step := 0
	d.now = func() time.Time {
		t := testStart.Add(time.Duration(float64(step) * stepSec * float64(time.Second)))
		step++
		return t
	}
	return d
}

func withPrefix(alerts []navdata.SpoofingAlert, prefix string) []navdata.SpoofingAlert {
	var out []navdata.SpoofingAlert
	for _, a := range alerts {
		if strings.HasPrefix(a.ID, prefix) {
			out = append(out, a)
		}
	}
	return out
}

func gpsAt(lat, lon float64) *sensor.Snapshot {
	return &sensor.Snapshot{
		GPS: &sensor.GPSReading{Latitude: sensor.Float(lat), Longitude: sensor.Float(lon)},
	}
}

func TestGPSJumpRaisesBothAlerts(t *testing.T) {
	d := testDetector(5)

	if out := d.Detect(gpsAt(51.5074, -0.1278)); len(out) != 0 {
		t.Fatalf("first fix alerted: %+v", out)
	}

	// ~2km in 5s: both the jump rule and the implied-speed rule must fire.
	out := d.Detect(gpsAt(51.5254, -0.1278))

	jumps := withPrefix(out, "gps_spoof_")
	if len(jumps) != 1 {
		t.Fatalf("jump alerts = %d, want 1 (all: %+v)", len(jumps), out)
	}
	if jumps[0].Kind != navdata.SpoofingGPS {
		t.Errorf("kind = %q, want gps_spoofing", jumps[0].Kind)
	}
	// ~2000m / 5000m confidence.
	if jumps[0].Confidence < 0.35 || jumps[0].Confidence > 0.45 {
		t.Errorf("jump confidence = %f, want ~0.4", jumps[0].Confidence)
	}

	speeds := withPrefix(out, "gps_speed_")
	if len(speeds) != 1 {
		t.Fatalf("speed alerts = %d, want 1", len(speeds))
	}
	// ~2000m in 5s implies ~780 knots, confidence clamps to 1.
	if speeds[0].Confidence != 1 {
		t.Errorf("speed confidence = %f, want 1", speeds[0].Confidence)
	}
	if speeds[0].Level() != navdata.LevelEmergency {
		t.Errorf("level = %q, want emergency", speeds[0].Level())
	}
}

func TestGPSSlowDriftIsQuiet(t *testing.T) {
	d := testDetector(5)
	d.Detect(gpsAt(51.5074, -0.1278))
	// ~30m in 5s, about 12 knots.
	out := d.Detect(gpsAt(51.50767, -0.1278))
	if len(out) != 0 {
		t.Errorf("normal movement alerted: %+v", out)
	}
}

func TestAISImpossibleSpeed(t *testing.T) {
	d := testDetector(1)
	snap := &sensor.Snapshot{
		AIS: &sensor.AISReading{MMSI: "235123456", Speed: sensor.Float(85)},
	}

	out := d.Detect(snap)
	got := withPrefix(out, "ais_spoof_")
	if len(got) != 1 {
		t.Fatalf("ais speed alerts = %d, want 1 (all: %+v)", len(got), out)
	}
	if got[0].Kind != navdata.SpoofingAIS {
		t.Errorf("kind = %q, want ais_spoofing", got[0].Kind)
	}
	if math.Abs(got[0].Confidence-0.85) > 1e-9 {
		t.Errorf("confidence = %f, want 0.85", got[0].Confidence)
	}
	if got[0].Evidence["mmsi"] != "235123456" {
		t.Errorf("evidence mmsi = %v", got[0].Evidence["mmsi"])
	}
}

func TestAISPositionJump(t *testing.T) {
	d := testDetector(1)
	first := &sensor.Snapshot{
		AIS: &sensor.AISReading{Latitude: sensor.Float(51.5074), Longitude: sensor.Float(-0.1278)},
	}
	d.Detect(first)

	jumped := &sensor.Snapshot{
		AIS: &sensor.AISReading{Latitude: sensor.Float(51.5254), Longitude: sensor.Float(-0.1278)},
	}
	out := d.Detect(jumped)
	got := withPrefix(out, "ais_jump_")
	if len(got) != 1 {
		t.Fatalf("ais jump alerts = %d, want 1 (all: %+v)", len(got), out)
	}
}

func TestMultiSensorConsensus(t *testing.T) {
	d := testDetector(1)

	// GPS sits ~2km away from AIS and radar, which agree with each other.
	snap := &sensor.Snapshot{
		GPS: &sensor.GPSReading{Latitude: sensor.Float(51.5254), Longitude: sensor.Float(-0.1278)},
		AIS: &sensor.AISReading{Latitude: sensor.Float(51.5074), Longitude: sensor.Float(-0.1278)},
		Radar: &sensor.RadarReading{OwnShip: &sensor.OwnShipReading{
			Latitude: sensor.Float(51.5075), Longitude: sensor.Float(-0.1278),
		}},
	}

	out := d.Detect(snap)
	got := withPrefix(out, "multi_spoof_")
	if len(got) != 1 {
		t.Fatalf("multi-sensor alerts = %d, want 1 (all: %+v)", len(got), out)
	}
	if got[0].Kind != navdata.SpoofingMultiSensor {
		t.Errorf("kind = %q, want multi_sensor_spoofing", got[0].Kind)
	}
	if got[0].Evidence["likely_spoofed"] != "gps" {
		t.Errorf("likely_spoofed = %v, want gps", got[0].Evidence["likely_spoofed"])
	}
	if !strings.Contains(got[0].RecommendedAction, "GPS") {
		t.Errorf("recommended action = %q, want GPS named", got[0].RecommendedAction)
	}
	// Mismatch of ~2km clamps confidence at 1.
	if got[0].Confidence != 1 {
		t.Errorf("confidence = %f, want 1", got[0].Confidence)
	}
}

func TestTwoSensorMismatchDefaultsToGPS(t *testing.T) {
	d := testDetector(1)
	snap := &sensor.Snapshot{
		GPS: &sensor.GPSReading{Latitude: sensor.Float(51.5254), Longitude: sensor.Float(-0.1278)},
		AIS: &sensor.AISReading{Latitude: sensor.Float(51.5074), Longitude: sensor.Float(-0.1278)},
	}
	out := d.Detect(snap)
	got := withPrefix(out, "multi_spoof_")
	if len(got) != 1 {
		t.Fatalf("multi-sensor alerts = %d, want 1", len(got))
	}
	if got[0].Evidence["likely_spoofed"] != "GPS" {
		t.Errorf("likely_spoofed = %v, want default GPS", got[0].Evidence["likely_spoofed"])
	}
}

func TestAgreeingSensorsAreQuiet(t *testing.T) {
	d := testDetector(1)
	snap := &sensor.Snapshot{
		GPS: &sensor.GPSReading{Latitude: sensor.Float(51.5074), Longitude: sensor.Float(-0.1278)},
		AIS: &sensor.AISReading{Latitude: sensor.Float(51.5075), Longitude: sensor.Float(-0.1278)},
	}
	if out := d.Detect(snap); len(out) != 0 {
		t.Errorf("agreeing sensors alerted: %+v", out)
	}
}

func TestTimeManipulation(t *testing.T) {
	d := testDetector(1)
	snap := &sensor.Snapshot{
		GPS: &sensor.GPSReading{
			Timestamp: testStart.Add(-150 * time.Second).Format(time.RFC3339),
		},
	}
	out := d.Detect(snap)
	got := withPrefix(out, "time_spoof_")
	if len(got) != 1 {
		t.Fatalf("time alerts = %d, want 1 (all: %+v)", len(got), out)
	}
	if math.Abs(got[0].Confidence-0.5) > 1e-9 {
		t.Errorf("confidence = %f, want 0.5 for 150s offset", got[0].Confidence)
	}
}

func TestUnparseableTimestampSkipped(t *testing.T) {
	d := testDetector(1)
	snap := &sensor.Snapshot{GPS: &sensor.GPSReading{Timestamp: "not-a-time"}}
	if out := d.Detect(snap); len(out) != 0 {
		t.Errorf("bad timestamp alerted: %+v", out)
	}
}

func TestIncidentHistory(t *testing.T) {
	d := testDetector(1)
	d.Detect(&sensor.Snapshot{
		AIS: &sensor.AISReading{Speed: sensor.Float(85)},
	})
	d.Detect(&sensor.Snapshot{}) // quiet cycle, no incident

	history := d.History()
	if len(history) != 1 {
		t.Fatalf("incidents = %d, want 1", len(history))
	}
	if history[0].AlertCount != 1 || history[0].MaxConfidence != 0.85 {
		t.Errorf("incident = %+v", history[0])
	}

	d.Reset()
	if len(d.History()) != 0 {
		t.Error("history survived Reset")
	}
}
