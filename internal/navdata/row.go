package navdata

import (
	"os"
	"time"
)

// AssessmentRow is one assessment flattened for time-series storage.
type AssessmentRow struct {
	VesselID          string    `json:"vessel_id"` // TAG
	Lat               float64   `json:"lat"`
	Lon               float64   `json:"lon"`
	SpeedKn           float64   `json:"speed_kn"`
	CourseDeg         float64   `json:"course_deg"`
	HeadingDeg        float64   `json:"heading_deg"`
	FusionConfidence  float64   `json:"fusion_confidence"`
	OverallConfidence float64   `json:"overall_confidence"`
	TargetCount       int       `json:"target_count"`
	AnomalyCount      int       `json:"anomaly_count"`
	SpoofingCount     int       `json:"spoofing_count"`
	CriticalAlerts    int       `json:"critical_alerts"`
	HasSpoofing       bool      `json:"has_spoofing"`
	Timestamp         time.Time `json:"ts"` // TIME INDEX
}

// AssessmentTableName is the table used when writing assessments to
// GreptimeDB. It defaults to "sa_assessments" but can be overridden via the
// ASSESSMENT_TABLE environment variable.
var AssessmentTableName = func() string {
	if env := os.Getenv("ASSESSMENT_TABLE"); env != "" {
		return env
	}
	return "sa_assessments"
}()

func (AssessmentRow) TableName() string {
	return AssessmentTableName
}

// AlertRow is one consolidated alert flattened for time-series storage.
type AlertRow struct {
	VesselID  string    `json:"vessel_id"` // TAG
	AlertID   string    `json:"alert_id"`
	Level     string    `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"ts"` // TIME INDEX
}

// AlertTableName is the table used when writing alerts to GreptimeDB. It
// defaults to "sa_alerts" but can be overridden via the ALERT_TABLE
// environment variable.
var AlertTableName = func() string {
	if env := os.Getenv("ALERT_TABLE"); env != "" {
		return env
	}
	return "sa_alerts"
}()

func (AlertRow) TableName() string {
	return AlertTableName
}

// NewAlertRow flattens an alert for row-oriented writers.
func NewAlertRow(vesselID string, a Alert) AlertRow {
	return AlertRow{
		VesselID:  vesselID,
		AlertID:   a.ID,
		Level:     string(a.Level),
		Title:     a.Title,
		Message:   a.Message,
		Source:    a.Source,
		Timestamp: a.Timestamp.UTC(),
	}
}

// NewAssessmentRow flattens an assessment for row-oriented writers.
func NewAssessmentRow(vesselID string, out *Output) AssessmentRow {
	vs := out.FusedData.VesselState
	return AssessmentRow{
		VesselID:          vesselID,
		Lat:               vs.Position.Latitude,
		Lon:               vs.Position.Longitude,
		SpeedKn:           vs.Speed,
		CourseDeg:         vs.Course,
		HeadingDeg:        vs.Heading,
		FusionConfidence:  out.FusedData.FusionConfidence,
		OverallConfidence: out.OverallConfidence,
		TargetCount:       len(out.FusedData.Targets),
		AnomalyCount:      len(out.Anomalies),
		SpoofingCount:     len(out.SpoofingAlerts),
		CriticalAlerts:    len(out.CriticalAlerts()),
		HasSpoofing:       out.HasSpoofing(),
		Timestamp:         out.Timestamp.UTC(),
	}
}
