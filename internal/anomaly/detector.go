// Package anomaly implements rule-based anomaly detection over fused vessel
// data and raw sensor readings. No learning involved; statistical checks and
// maritime domain rules only.
package anomaly

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

// criticalSensors are the sensors whose absence is itself an anomaly.
var criticalSensors = []string{"gps", "ais", "radar"}

type timedFix struct {
	lat, lon float64
	at       time.Time
}

// Detector runs the anomaly rules. It keeps bounded speed, course, and
// position histories between calls for the temporal checks.
type Detector struct {
	cfg *config.AnomalyConfig
	log *slog.Logger
	now func() time.Time

	speedHistory    *ring.Buffer[float64]
	courseHistory   *ring.Buffer[float64]
	positionHistory *ring.Buffer[timedFix]
}

// NewDetector creates a detector with empty histories.
func NewDetector(cfg *config.AnomalyConfig, log *slog.Logger) *Detector {
	return &Detector{
		cfg:             cfg,
		log:             log,
		now:             time.Now,
		speedHistory:    ring.New[float64](cfg.HistoryLen),
		courseHistory:   ring.New[float64](cfg.HistoryLen),
		positionHistory: ring.New[timedFix](cfg.HistoryLen),
	}
}

// Reset clears all histories, preserving configuration.
func (d *Detector) Reset() {
	d.speedHistory.Clear()
	d.courseHistory.Clear()
	d.positionHistory.Clear()
}

// Detect runs all rules against one fused batch and its raw snapshot. The
// current state enters the histories before the checks run, so the temporal
// rules compare against an average that includes it.
func (d *Detector) Detect(fused *navdata.FusedData, snap *sensor.Snapshot) []navdata.Anomaly {
	d.updateHistory(&fused.VesselState)

	var anomalies []navdata.Anomaly
	anomalies = append(anomalies, d.trajectoryDeviation(&fused.VesselState)...)
	anomalies = append(anomalies, d.speedAnomaly(&fused.VesselState)...)
	anomalies = append(anomalies, d.sensorMismatch(snap)...)
	anomalies = append(anomalies, d.collisionRisk(fused.Targets)...)
	anomalies = append(anomalies, d.suddenManeuver(&fused.VesselState)...)
	anomalies = append(anomalies, d.sensorDegradation(snap)...)

	d.log.Debug("anomaly pass complete", "detected", len(anomalies))
	return anomalies
}

func (d *Detector) updateHistory(state *navdata.VesselState) {
	d.speedHistory.Push(state.Speed)
	d.courseHistory.Push(state.Course)
	d.positionHistory.Push(timedFix{
		lat: state.Position.Latitude,
		lon: state.Position.Longitude,
		at:  d.now(),
	})
}

// trajectoryDeviation compares the current position against a linear
// extrapolation of the recent track.
func (d *Detector) trajectoryDeviation(state *navdata.VesselState) []navdata.Anomaly {
	if d.positionHistory.Len() < 3 {
		return nil
	}

	predLat, predLon := d.predictPosition()
	deviation := geo.HaversineMeters(predLat, predLon,
		state.Position.Latitude, state.Position.Longitude)
	if deviation <= d.cfg.TrajectoryDeviationM {
		return nil
	}

	loc := state.Position
	return []navdata.Anomaly{{
		ID:              newID("traj_dev"),
		Kind:            navdata.AnomalyTrajectoryDeviation,
		Severity:        math.Min(1, deviation/d.cfg.TrajectorySeverityM),
		Description:     fmt.Sprintf("Vessel deviated %.0fm from expected trajectory", deviation),
		AffectedSensors: []string{"gps", "ais"},
		DetectedAt:      d.now(),
		Location:        &loc,
		Metadata:        map[string]any{"deviation_meters": deviation},
	}}
}

// predictPosition extrapolates the track linearly over the prediction
// horizon from the two most recent fixes.
func (d *Detector) predictPosition() (float64, float64) {
	last, _ := d.positionHistory.Last()
	if d.positionHistory.Len() < 2 {
		return last.lat, last.lon
	}
	prev := d.positionHistory.At(d.positionHistory.Len() - 2)

	elapsed := last.at.Sub(prev.at).Seconds()
	if elapsed == 0 {
		return last.lat, last.lon
	}

	h := d.cfg.PredictionHorizonSec
	return last.lat + (last.lat-prev.lat)/elapsed*h,
		last.lon + (last.lon-prev.lon)/elapsed*h
}

// speedAnomaly flags a speed far from the recent average.
func (d *Detector) speedAnomaly(state *navdata.VesselState) []navdata.Anomaly {
	if d.speedHistory.Len() < 2 {
		return nil
	}

	var sum float64
	for _, s := range d.speedHistory.Items() {
		sum += s
	}
	avg := sum / float64(d.speedHistory.Len())

	deviation := math.Abs(state.Speed - avg)
	if deviation <= d.cfg.SpeedDeviationKn {
		return nil
	}

	loc := state.Position
	return []navdata.Anomaly{{
		ID:              newID("speed_anom"),
		Kind:            navdata.AnomalySpeed,
		Severity:        math.Min(1, deviation/d.cfg.SpeedSeverityKn),
		Description:     fmt.Sprintf("Speed deviated %.1f knots from average", deviation),
		AffectedSensors: []string{"gps", "engine"},
		DetectedAt:      d.now(),
		Location:        &loc,
		Metadata: map[string]any{
			"current_speed": state.Speed,
			"average_speed": avg,
			"deviation":     deviation,
		},
	}}
}

// sensorMismatch compares the raw GPS and AIS own-ship positions.
func (d *Detector) sensorMismatch(snap *sensor.Snapshot) []navdata.Anomaly {
	if snap.GPS == nil || snap.AIS == nil ||
		!snap.GPS.HasPosition() || !snap.AIS.HasPosition() {
		return nil
	}

	distance := geo.HaversineMeters(
		*snap.GPS.Latitude, *snap.GPS.Longitude,
		*snap.AIS.Latitude, *snap.AIS.Longitude)
	if distance <= d.cfg.SensorMismatchM {
		return nil
	}

	return []navdata.Anomaly{{
		ID:              newID("sensor_mismatch"),
		Kind:            navdata.AnomalySensorMismatch,
		Severity:        math.Min(1, distance/d.cfg.MismatchSeverityM),
		Description:     fmt.Sprintf("GPS and AIS positions differ by %.0fm", distance),
		AffectedSensors: []string{"gps", "ais"},
		DetectedAt:      d.now(),
		Location: &navdata.Position{
			Latitude:  *snap.GPS.Latitude,
			Longitude: *snap.GPS.Longitude,
		},
		Metadata: map[string]any{"distance_meters": distance},
	}}
}

// collisionRisk flags targets with a close CPA approaching within the TCPA
// window. Targets already past their closest point (tcpa <= 0) never alarm.
func (d *Detector) collisionRisk(targets []navdata.Target) []navdata.Anomaly {
	var anomalies []navdata.Anomaly
	for _, t := range targets {
		if t.CPA >= d.cfg.CollisionCPANM || t.TCPA >= d.cfg.CollisionTCPAMin || t.TCPA <= 0 {
			continue
		}

		cpaFactor := 1 - t.CPA/d.cfg.CollisionCPANM
		tcpaFactor := 1 - t.TCPA/d.cfg.CollisionTCPAMin
		name := t.Name
		if name == "" {
			name = t.ID
		}

		loc := t.Position
		anomalies = append(anomalies, navdata.Anomaly{
			ID:       newID("collision"),
			Kind:     navdata.AnomalyCollisionRisk,
			Severity: (cpaFactor + tcpaFactor) / 2,
			Description: fmt.Sprintf("Collision risk with %s: CPA %.2fnm in %.1f min",
				name, t.CPA, t.TCPA),
			AffectedSensors: []string{"ais", "radar"},
			DetectedAt:      d.now(),
			Location:        &loc,
			Metadata: map[string]any{
				"target_id": t.ID,
				"cpa":       t.CPA,
				"tcpa":      t.TCPA,
				"distance":  t.Distance,
			},
		})
	}
	return anomalies
}

// suddenManeuver flags a high rate of turn.
func (d *Detector) suddenManeuver(state *navdata.VesselState) []navdata.Anomaly {
	rot := state.RateOfTurn
	if math.Abs(rot) <= d.cfg.SuddenManeuverROT {
		return nil
	}

	loc := state.Position
	return []navdata.Anomaly{{
		ID:              newID("maneuver"),
		Kind:            navdata.AnomalySuddenManeuver,
		Severity:        math.Min(1, math.Abs(rot)/d.cfg.ROTSeverityDivisor),
		Description:     fmt.Sprintf("Sudden maneuver detected: ROT %.1f deg/min", rot),
		AffectedSensors: []string{"ais", "gps"},
		DetectedAt:      d.now(),
		Location:        &loc,
		Metadata:        map[string]any{"rate_of_turn": rot},
	}}
}

// sensorDegradation flags critical sensors that are absent or reporting no
// fields at all.
func (d *Detector) sensorDegradation(snap *sensor.Snapshot) []navdata.Anomaly {
	readings := snap.Readings()

	var anomalies []navdata.Anomaly
	for _, name := range criticalSensors {
		if r, ok := readings[name]; ok && r.FieldCount() > 0 {
			continue
		}
		anomalies = append(anomalies, navdata.Anomaly{
			ID:       newID("sensor_deg"),
			Kind:     navdata.AnomalySensorDegradation,
			Severity: d.cfg.DegradationSeverity,
			Description: fmt.Sprintf("Critical sensor %s is not providing data",
				strings.ToUpper(name)),
			AffectedSensors: []string{name},
			DetectedAt:      d.now(),
			Metadata:        map[string]any{"sensor": name},
		})
	}
	return anomalies
}

func newID(prefix string) string {
	u := uuid.New()
	return fmt.Sprintf("%s_%x", prefix, u[:4])
}
