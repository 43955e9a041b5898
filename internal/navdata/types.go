// Package navdata holds the value types shared by the fusion, detection,
// uncertainty, and orchestration components. All entities are rebuilt fresh
// each processing cycle.
package navdata

import (
	"encoding/json"
	"time"
)

// AlertLevel ranks the urgency of an alert.
type AlertLevel string

const (
	LevelInfo      AlertLevel = "info"
	LevelWarning   AlertLevel = "warning"
	LevelCritical  AlertLevel = "critical"
	LevelEmergency AlertLevel = "emergency"
)

// Rank returns the sort priority of a level, higher is more urgent.
func (l AlertLevel) Rank() int {
	switch l {
	case LevelEmergency:
		return 4
	case LevelCritical:
		return 3
	case LevelWarning:
		return 2
	case LevelInfo:
		return 1
	}
	return 0
}

// AnomalyKind identifies the detector rule that produced an anomaly.
type AnomalyKind string

const (
	AnomalyTrajectoryDeviation AnomalyKind = "trajectory_deviation"
	AnomalySpeed               AnomalyKind = "speed_anomaly"
	AnomalySensorMismatch      AnomalyKind = "sensor_mismatch"
	AnomalyCollisionRisk       AnomalyKind = "collision_risk"
	AnomalySuddenManeuver      AnomalyKind = "sudden_maneuver"
	AnomalySensorDegradation   AnomalyKind = "sensor_degradation"
	AnomalyDataQuality         AnomalyKind = "data_quality_issue"
)

// SpoofingKind identifies the class of a suspected spoofing attack.
type SpoofingKind string

const (
	SpoofingGPS         SpoofingKind = "gps_spoofing"
	SpoofingAIS         SpoofingKind = "ais_spoofing"
	SpoofingMultiSensor SpoofingKind = "multi_sensor_spoofing"
)

// Position is a geographic position in degrees. Altitude is optional.
type Position struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
}

// VesselState is the fused navigational state of the own ship for one batch.
type VesselState struct {
	Position   Position  `json:"position"`
	Speed      float64   `json:"speed"`        // knots
	Course     float64   `json:"course"`       // degrees, [0,360)
	Heading    float64   `json:"heading"`      // degrees, [0,360)
	RateOfTurn float64   `json:"rate_of_turn"` // degrees per minute
	Timestamp  time.Time `json:"timestamp"`
}

// Target is a tracked vessel near the own ship.
type Target struct {
	ID         string   `json:"target_id"`
	Position   Position `json:"position"`
	Speed      float64  `json:"speed"`
	Course     float64  `json:"course"`
	CPA        float64  `json:"cpa"`      // nautical miles
	TCPA       float64  `json:"tcpa"`     // minutes
	Distance   float64  `json:"distance"` // nautical miles
	VesselType string   `json:"vessel_type,omitempty"`
	Name       string   `json:"name,omitempty"`
}

// Environment carries fused environmental readings. Sensor blocks pass
// through unmodified; Visibility defaults to "good" when no weather sensor
// reports one.
type Environment struct {
	Weather    map[string]any `json:"weather"`
	Tide       map[string]any `json:"tide"`
	Current    map[string]any `json:"current"`
	Visibility string         `json:"visibility"`
}

// FusedData is the output of one sensor fusion pass.
type FusedData struct {
	VesselState      VesselState        `json:"vessel_state"`
	Targets          []Target           `json:"targets"`
	Environment      Environment        `json:"environment"`
	QualityScores    map[string]float64 `json:"quality_scores"`
	FusionConfidence float64            `json:"fusion_confidence"`
	Timestamp        time.Time          `json:"timestamp"`
}

// Anomaly is one detected behavioral or sensor anomaly.
type Anomaly struct {
	ID              string         `json:"anomaly_id"`
	Kind            AnomalyKind    `json:"anomaly_type"`
	Severity        float64        `json:"severity"` // [0,1]
	Description     string         `json:"description"`
	AffectedSensors []string       `json:"affected_sensors"`
	DetectedAt      time.Time      `json:"detected_at"`
	Location        *Position      `json:"location"`
	Metadata        map[string]any `json:"metadata"`
}

// Level maps anomaly severity to an alert level.
func (a *Anomaly) Level() AlertLevel {
	switch {
	case a.Severity >= 0.8:
		return LevelCritical
	case a.Severity >= 0.5:
		return LevelWarning
	default:
		return LevelInfo
	}
}

// MarshalJSON includes the derived alert level alongside the raw fields.
func (a Anomaly) MarshalJSON() ([]byte, error) {
	type plain Anomaly
	return json.Marshal(struct {
		plain
		AlertLevel AlertLevel `json:"alert_level"`
	}{plain(a), a.Level()})
}

// SpoofingAlert is evidence of falsified sensor input.
type SpoofingAlert struct {
	ID                string         `json:"alert_id"`
	Kind              SpoofingKind   `json:"spoofing_type"`
	Confidence        float64        `json:"confidence"` // [0,1]
	Description       string         `json:"description"`
	AffectedSensors   []string       `json:"affected_sensors"`
	Evidence          map[string]any `json:"evidence"`
	DetectedAt        time.Time      `json:"detected_at"`
	RecommendedAction string         `json:"recommended_action"`
}

// Level maps spoofing confidence to an alert level. Spoofing never maps
// below warning.
func (s *SpoofingAlert) Level() AlertLevel {
	switch {
	case s.Confidence >= 0.7:
		return LevelEmergency
	case s.Confidence >= 0.5:
		return LevelCritical
	default:
		return LevelWarning
	}
}

// MarshalJSON includes the derived alert level alongside the raw fields.
func (s SpoofingAlert) MarshalJSON() ([]byte, error) {
	type plain SpoofingAlert
	return json.Marshal(struct {
		plain
		AlertLevel AlertLevel `json:"alert_level"`
	}{plain(s), s.Level()})
}

// Uncertainty is the statistical uncertainty of one tracked parameter.
// It is mutated in place only during the anomaly-adjustment step.
type Uncertainty struct {
	Parameter          string     `json:"parameter"`
	MeanValue          float64    `json:"mean_value"`
	StdDeviation       float64    `json:"std_deviation"`
	ConfidenceInterval [2]float64 `json:"confidence_interval"` // 95% bounds
	Reliability        float64    `json:"reliability"`         // [0,1]
}

// Alert is a prioritized, user-facing alert assembled by the orchestrator.
// Alerts are never created elsewhere.
type Alert struct {
	ID           string         `json:"alert_id"`
	Level        AlertLevel     `json:"level"`
	Title        string         `json:"title"`
	Message      string         `json:"message"`
	Timestamp    time.Time      `json:"timestamp"`
	Source       string         `json:"source"`
	Metadata     map[string]any `json:"metadata"`
	Acknowledged bool           `json:"acknowledged"`
}
