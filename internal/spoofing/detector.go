// Package spoofing detects GPS and AIS spoofing attacks by cross-validating
// sensors and checking for physically impossible movement. The multi-sensor
// consistency check is the strongest indicator.
package spoofing

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"navwatch/internal/config"
	"navwatch/internal/geo"
	"navwatch/internal/navdata"
	"navwatch/internal/ring"
	"navwatch/internal/sensor"
)

// positionSensors is the fixed evaluation order for cross-validation so runs
// over identical input produce identical output.
var positionSensors = []string{"gps", "ais", "radar"}

type latLon struct {
	lat, lon float64
}

// Incident summarizes one detection cycle that raised alerts.
type Incident struct {
	Timestamp     time.Time              `json:"timestamp"`
	AlertCount    int                    `json:"alert_count"`
	AlertTypes    []navdata.SpoofingKind `json:"alert_types"`
	MaxConfidence float64                `json:"max_confidence"`
}

// Detector runs the spoofing rules. It tracks the previous GPS and AIS
// positions between calls for jump detection and keeps a bounded incident
// log.
type Detector struct {
	cfg *config.SpoofingConfig
	log *slog.Logger
	now func() time.Time

	prevGPS    *latLon
	prevAIS    *latLon
	lastGPSAt  time.Time
	hasGPSTime bool

	incidents *ring.Buffer[Incident]
}

// NewDetector creates a detector with no tracked positions.
func NewDetector(cfg *config.SpoofingConfig, log *slog.Logger) *Detector {
	return &Detector{
		cfg:       cfg,
		log:       log,
		now:       time.Now,
		incidents: ring.New[Incident](cfg.IncidentLogCap),
	}
}

// Reset clears the tracked positions and the incident log.
func (d *Detector) Reset() {
	d.prevGPS = nil
	d.prevAIS = nil
	d.hasGPSTime = false
	d.incidents.Clear()
}

// History returns the logged incidents, oldest first.
func (d *Detector) History() []Incident {
	return d.incidents.Items()
}

// Detect runs all spoofing rules against one raw snapshot. Position trackers
// are updated after the checks so the next call compares against this one.
func (d *Detector) Detect(snap *sensor.Snapshot) []navdata.SpoofingAlert {
	var alerts []navdata.SpoofingAlert
	alerts = append(alerts, d.gpsSpoofing(snap)...)
	alerts = append(alerts, d.aisSpoofing(snap)...)
	alerts = append(alerts, d.multiSensorSpoofing(snap)...)
	alerts = append(alerts, d.timeManipulation(snap)...)

	if len(alerts) > 0 {
		d.log.Warn("spoofing detected", "alerts", len(alerts))
		d.logIncident(alerts)
	}
	return alerts
}

// gpsSpoofing flags teleport-style position jumps and physically impossible
// implied speeds. The two checks are independent: a large fast jump raises
// both alerts.
func (d *Detector) gpsSpoofing(snap *sensor.Snapshot) []navdata.SpoofingAlert {
	gps := snap.GPS
	if gps == nil || !gps.HasPosition() {
		return nil
	}

	curLat, curLon := *gps.Latitude, *gps.Longitude
	now := d.now()

	var alerts []navdata.SpoofingAlert
	if d.prevGPS != nil && d.hasGPSTime {
		distance := geo.HaversineMeters(d.prevGPS.lat, d.prevGPS.lon, curLat, curLon)
		elapsed := now.Sub(d.lastGPSAt).Seconds()

		if elapsed > 0 {
			impliedSpeed := geo.SpeedKnots(distance, elapsed)

			if distance > d.cfg.PositionJumpM && elapsed < d.cfg.JumpWindowSec {
				alerts = append(alerts, navdata.SpoofingAlert{
					ID:         newID("gps_spoof"),
					Kind:       navdata.SpoofingGPS,
					Confidence: math.Min(1, distance/d.cfg.JumpConfidenceM),
					Description: fmt.Sprintf("GPS position jumped %.0fm in %.1fs (implies %.0f knots)",
						distance, elapsed, impliedSpeed),
					AffectedSensors: []string{"gps"},
					Evidence: map[string]any{
						"distance_jumped":   distance,
						"time_elapsed":      elapsed,
						"implied_speed":     impliedSpeed,
						"previous_position": map[string]any{"lat": d.prevGPS.lat, "lon": d.prevGPS.lon},
						"current_position":  map[string]any{"lat": curLat, "lon": curLon},
					},
					DetectedAt: now,
					RecommendedAction: "Use AIS and RADAR for navigation. " +
						"Verify GPS receiver integrity. " +
						"Report to maritime authorities.",
				})
			}

			if impliedSpeed > d.cfg.ImpossibleSpeedKn {
				alerts = append(alerts, navdata.SpoofingAlert{
					ID:              newID("gps_speed"),
					Kind:            navdata.SpoofingGPS,
					Confidence:      math.Min(1, impliedSpeed/d.cfg.SpeedConfidenceKn),
					Description:     fmt.Sprintf("GPS shows impossible speed: %.0f knots", impliedSpeed),
					AffectedSensors: []string{"gps"},
					Evidence: map[string]any{
						"implied_speed": impliedSpeed,
						"distance":      distance,
						"time_elapsed":  elapsed,
					},
					DetectedAt:        now,
					RecommendedAction: "GPS likely compromised. Use alternative navigation.",
				})
			}
		}
	}

	d.prevGPS = &latLon{lat: curLat, lon: curLon}
	d.lastGPSAt = now
	d.hasGPSTime = true

	return alerts
}

// aisSpoofing flags impossible reported speeds and jumps in the own-ship AIS
// position.
func (d *Detector) aisSpoofing(snap *sensor.Snapshot) []navdata.SpoofingAlert {
	ais := snap.AIS
	if ais == nil {
		return nil
	}

	var alerts []navdata.SpoofingAlert
	if ais.Speed != nil && *ais.Speed > d.cfg.ImpossibleSpeedKn {
		evidence := map[string]any{
			"reported_speed": *ais.Speed,
			"mmsi":           ais.MMSI,
		}
		if ais.Course != nil {
			evidence["reported_course"] = *ais.Course
		}
		alerts = append(alerts, navdata.SpoofingAlert{
			ID:                newID("ais_spoof"),
			Kind:              navdata.SpoofingAIS,
			Confidence:        math.Min(1, *ais.Speed/d.cfg.SpeedConfidenceKn),
			Description:       fmt.Sprintf("AIS reports impossible speed: %.0f knots", *ais.Speed),
			AffectedSensors:   []string{"ais"},
			Evidence:          evidence,
			DetectedAt:        d.now(),
			RecommendedAction: "AIS data may be spoofed. Verify with radar and visual.",
		})
	}

	if ais.HasPosition() {
		curLat, curLon := *ais.Latitude, *ais.Longitude
		if d.prevAIS != nil {
			distance := geo.HaversineMeters(d.prevAIS.lat, d.prevAIS.lon, curLat, curLon)
			if distance > d.cfg.PositionJumpM {
				alerts = append(alerts, navdata.SpoofingAlert{
					ID:              newID("ais_jump"),
					Kind:            navdata.SpoofingAIS,
					Confidence:      math.Min(1, distance/d.cfg.JumpConfidenceM),
					Description:     fmt.Sprintf("AIS position jumped %.0fm", distance),
					AffectedSensors: []string{"ais"},
					Evidence: map[string]any{
						"distance_jumped":   distance,
						"previous_position": map[string]any{"lat": d.prevAIS.lat, "lon": d.prevAIS.lon},
						"current_position":  map[string]any{"lat": curLat, "lon": curLon},
					},
					DetectedAt:        d.now(),
					RecommendedAction: "Possible AIS spoofing or transmitter malfunction.",
				})
			}
		}
		d.prevAIS = &latLon{lat: curLat, lon: curLon}
	}

	return alerts
}

// multiSensorSpoofing cross-validates the own-ship positions reported by
// GPS, AIS, and radar. Disagreement between independent sensors is the most
// reliable spoofing signal.
func (d *Detector) multiSensorSpoofing(snap *sensor.Snapshot) []navdata.SpoofingAlert {
	names, positions := ownShipPositions(snap)
	if len(names) < 2 {
		return nil
	}

	var maxMismatch float64
	var mismatchPairs []map[string]any
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			distance := geo.HaversineMeters(
				positions[names[i]].lat, positions[names[i]].lon,
				positions[names[j]].lat, positions[names[j]].lon)
			if distance > maxMismatch {
				maxMismatch = distance
			}
			if distance > d.cfg.MultiSensorMismatchM {
				mismatchPairs = append(mismatchPairs, map[string]any{
					"sensors":  []string{names[i], names[j]},
					"distance": distance,
				})
			}
		}
	}
	if len(mismatchPairs) == 0 {
		return nil
	}

	affected := identifySpoofedSensor(names, positions, d.cfg.MultiSensorMismatchM)
	posEvidence := make(map[string]any, len(names))
	for _, n := range names {
		posEvidence[n] = map[string]any{"lat": positions[n].lat, "lon": positions[n].lon}
	}

	return []navdata.SpoofingAlert{{
		ID:         newID("multi_spoof"),
		Kind:       navdata.SpoofingMultiSensor,
		Confidence: math.Min(1, maxMismatch/d.cfg.MultiConfidenceM),
		Description: fmt.Sprintf("Multiple sensors show position mismatch up to %.0fm. Possible %s spoofing.",
			maxMismatch, affected),
		AffectedSensors: names,
		Evidence: map[string]any{
			"max_mismatch":   maxMismatch,
			"mismatch_pairs": mismatchPairs,
			"positions":      posEvidence,
			"likely_spoofed": affected,
		},
		DetectedAt: d.now(),
		RecommendedAction: fmt.Sprintf("Cross-validate all sensors. %s may be compromised. "+
			"Use redundant navigation methods.", strings.ToUpper(affected)),
	}}
}

// ownShipPositions collects the own-ship positions present in the snapshot
// in the fixed sensor order.
func ownShipPositions(snap *sensor.Snapshot) ([]string, map[string]latLon) {
	positions := make(map[string]latLon)
	var names []string
	add := func(name string, lat, lon float64) {
		positions[name] = latLon{lat: lat, lon: lon}
		names = append(names, name)
	}

	if snap.GPS != nil && snap.GPS.HasPosition() {
		add("gps", *snap.GPS.Latitude, *snap.GPS.Longitude)
	}
	if snap.AIS != nil && snap.AIS.HasPosition() {
		add("ais", *snap.AIS.Latitude, *snap.AIS.Longitude)
	}
	if snap.Radar != nil && snap.Radar.HasPosition() {
		add("radar", *snap.Radar.OwnShip.Latitude, *snap.Radar.OwnShip.Longitude)
	}
	return names, positions
}

// identifySpoofedSensor attributes the mismatch to the sensor most at odds
// with the others. With fewer than three sensors there is no consensus and
// GPS, as the most commonly spoofed sensor, is the default suspect. Ties
// keep the earliest sensor in the fixed order.
func identifySpoofedSensor(names []string, positions map[string]latLon, threshold float64) string {
	if len(names) < 3 {
		return "GPS"
	}

	scores := make(map[string]float64, len(names))
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			distance := geo.HaversineMeters(
				positions[names[i]].lat, positions[names[i]].lon,
				positions[names[j]].lat, positions[names[j]].lon)
			if distance > threshold {
				scores[names[i]] += distance
				scores[names[j]] += distance
			}
		}
	}

	spoofed := "unknown"
	best := 0.0
	for _, n := range names {
		if scores[n] > best {
			best = scores[n]
			spoofed = n
		}
	}
	return spoofed
}

// timeManipulation flags GPS timestamps far from system time. Unparseable
// timestamps are logged and skipped, never alerted on.
func (d *Detector) timeManipulation(snap *sensor.Snapshot) []navdata.SpoofingAlert {
	gps := snap.GPS
	if gps == nil || gps.Timestamp == "" {
		return nil
	}

	gpsTime, err := time.Parse(time.RFC3339, gps.Timestamp)
	if err != nil {
		d.log.Error("cannot parse GPS timestamp", "timestamp", gps.Timestamp, "error", err)
		return nil
	}

	now := d.now()
	diff := math.Abs(now.Sub(gpsTime).Seconds())
	if diff <= d.cfg.TimeInconsistencySec {
		return nil
	}

	return []navdata.SpoofingAlert{{
		ID:              newID("time_spoof"),
		Kind:            navdata.SpoofingGPS,
		Confidence:      math.Min(1, diff/d.cfg.TimeConfidenceSec),
		Description:     fmt.Sprintf("GPS timestamp differs from system time by %.0fs", diff),
		AffectedSensors: []string{"gps"},
		Evidence: map[string]any{
			"gps_time":           gps.Timestamp,
			"system_time":        now.Format(time.RFC3339),
			"difference_seconds": diff,
		},
		DetectedAt:        now,
		RecommendedAction: "Check GPS receiver. Possible time manipulation attack.",
	}}
}

func (d *Detector) logIncident(alerts []navdata.SpoofingAlert) {
	kinds := make([]navdata.SpoofingKind, 0, len(alerts))
	maxConf := 0.0
	for _, a := range alerts {
		kinds = append(kinds, a.Kind)
		if a.Confidence > maxConf {
			maxConf = a.Confidence
		}
	}
	d.incidents.Push(Incident{
		Timestamp:     d.now(),
		AlertCount:    len(alerts),
		AlertTypes:    kinds,
		MaxConfidence: maxConf,
	})
}

func newID(prefix string) string {
	u := uuid.New()
	return fmt.Sprintf("%s_%x", prefix, u[:4])
}
