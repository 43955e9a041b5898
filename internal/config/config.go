// YAML config loader with CUE validation integration. Every threshold,
// weight, and constant used by the awareness pipeline can be overridden here;
// Default() carries the stock values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FusionConfig tunes the sensor fusion engine.
type FusionConfig struct {
	// SensorWeights are per-sensor reliability weights in [0,1].
	SensorWeights map[string]float64 `yaml:"sensor_weights"`
	// DefaultWeight applies to sensors missing from SensorWeights.
	DefaultWeight float64 `yaml:"default_weight"`
	// RadarOwnShipFactor discounts the radar weight for own-ship fixes.
	RadarOwnShipFactor float64 `yaml:"radar_own_ship_factor"`
	// MaxSpeedKnots bounds plausible vessel speed readings.
	MaxSpeedKnots float64 `yaml:"max_speed_knots"`
	// MaxPlausibleSpeedMS is the outlier-rejection speed bound in m/s.
	MaxPlausibleSpeedMS float64 `yaml:"max_plausible_speed_ms"`
	// OutlierSafetyFactor widens the outlier-rejection envelope.
	OutlierSafetyFactor float64 `yaml:"outlier_safety_factor"`
	// TargetCorrelationM is the radar-to-AIS correlation radius in meters.
	TargetCorrelationM float64 `yaml:"target_correlation_m"`
	// QualityFieldTarget is the field count that yields quality 1.0.
	QualityFieldTarget float64 `yaml:"quality_field_target"`
}

// AnomalyConfig tunes the anomaly detector.
type AnomalyConfig struct {
	HistoryLen           int     `yaml:"history_len"`
	TrajectoryDeviationM float64 `yaml:"trajectory_deviation_m"`
	TrajectorySeverityM  float64 `yaml:"trajectory_severity_m"`
	PredictionHorizonSec float64 `yaml:"prediction_horizon_sec"`
	SpeedDeviationKn     float64 `yaml:"speed_deviation_kn"`
	SpeedSeverityKn      float64 `yaml:"speed_severity_kn"`
	SensorMismatchM      float64 `yaml:"sensor_mismatch_m"`
	MismatchSeverityM    float64 `yaml:"mismatch_severity_m"`
	CollisionCPANM       float64 `yaml:"collision_cpa_nm"`
	CollisionTCPAMin     float64 `yaml:"collision_tcpa_min"`
	SuddenManeuverROT    float64 `yaml:"sudden_maneuver_rot"`
	ROTSeverityDivisor   float64 `yaml:"rot_severity_divisor"`
	DegradationSeverity  float64 `yaml:"degradation_severity"`
}

// SpoofingConfig tunes the spoofing detector.
type SpoofingConfig struct {
	PositionJumpM        float64 `yaml:"position_jump_m"`
	JumpWindowSec        float64 `yaml:"jump_window_sec"`
	ImpossibleSpeedKn    float64 `yaml:"impossible_speed_kn"`
	MultiSensorMismatchM float64 `yaml:"multi_sensor_mismatch_m"`
	TimeInconsistencySec float64 `yaml:"time_inconsistency_sec"`
	JumpConfidenceM      float64 `yaml:"jump_confidence_m"`
	SpeedConfidenceKn    float64 `yaml:"speed_confidence_kn"`
	MultiConfidenceM     float64 `yaml:"multi_confidence_m"`
	TimeConfidenceSec    float64 `yaml:"time_confidence_sec"`
	IncidentLogCap       int     `yaml:"incident_log_cap"`
}

// UncertaintyConfig carries the fixed per-sensor standard deviations and the
// defaults used when sensors are absent.
type UncertaintyConfig struct {
	PositionStdM  map[string]float64 `yaml:"position_std_m"`
	SpeedStdKn    map[string]float64 `yaml:"speed_std_kn"`
	CourseStdDeg  map[string]float64 `yaml:"course_std_deg"`
	NoPositionStd float64            `yaml:"no_position_std"`
	NoSpeedStd    float64            `yaml:"no_speed_std"`
	NoCourseStd   float64            `yaml:"no_course_std"`

	HeadingStdDeg      float64 `yaml:"heading_std_deg"`       // AIS heading present
	HeadingStdNoValue  float64 `yaml:"heading_std_no_value"`  // AIS present, no heading
	HeadingStdNoSensor float64 `yaml:"heading_std_no_sensor"` // no AIS at all

	TargetCPAStdNM    float64 `yaml:"target_cpa_std_nm"`
	TargetTCPAStdMin  float64 `yaml:"target_tcpa_std_min"`
	TargetReliability float64 `yaml:"target_reliability"`

	WindStdKn          float64 `yaml:"wind_std_kn"`
	WindInterval       float64 `yaml:"wind_interval"`
	WindReliability    float64 `yaml:"wind_reliability"`
	CurrentStdKn       float64 `yaml:"current_std_kn"`
	CurrentInterval    float64 `yaml:"current_interval"`
	CurrentReliability float64 `yaml:"current_reliability"`
	TideStdM           float64 `yaml:"tide_std_m"`
	TideInterval       float64 `yaml:"tide_interval"`
	TideReliability    float64 `yaml:"tide_reliability"`

	ZScore float64 `yaml:"z_score"` // 95% confidence
}

// AwarenessConfig tunes confidence aggregation and alerting in the
// orchestrator.
type AwarenessConfig struct {
	LowConfidenceThreshold float64 `yaml:"low_confidence_threshold"`
	MaxSeverityPenalty     float64 `yaml:"max_severity_penalty"`
	AvgSeverityPenalty     float64 `yaml:"avg_severity_penalty"`
	AnomalyPenaltyScale    float64 `yaml:"anomaly_penalty_scale"`
	SpoofingPenalty        float64 `yaml:"spoofing_penalty"`
	ProcessingHistoryLen   int     `yaml:"processing_history_len"`
}

// SimulationConfig drives the demo scenario generator.
type SimulationConfig struct {
	VesselID       string  `yaml:"vessel_id"`
	StartLat       float64 `yaml:"start_lat"`
	StartLon       float64 `yaml:"start_lon"`
	InitialSpeedKn float64 `yaml:"initial_speed_kn"`
	InitialCourse  float64 `yaml:"initial_course"`
	TimeStepSec    float64 `yaml:"time_step_sec"`
	Scenario       string  `yaml:"scenario"`
}

// Config is the root configuration for the awareness pipeline.
type Config struct {
	Fusion      FusionConfig      `yaml:"fusion"`
	Anomaly     AnomalyConfig     `yaml:"anomaly"`
	Spoofing    SpoofingConfig    `yaml:"spoofing"`
	Uncertainty UncertaintyConfig `yaml:"uncertainty"`
	Awareness   AwarenessConfig   `yaml:"awareness"`
	Simulation  SimulationConfig  `yaml:"simulation"`
}

// Default returns the stock configuration. All thresholds are illustrative,
// not regulatory.
func Default() *Config {
	return &Config{
		Fusion: FusionConfig{
			SensorWeights: map[string]float64{
				"gps":     0.95,
				"ais":     0.85,
				"radar":   0.80,
				"chart":   0.90,
				"weather": 0.75,
				"engine":  0.85,
				"camera":  0.70,
				"tide":    0.80,
				"current": 0.75,
			},
			DefaultWeight:       0.5,
			RadarOwnShipFactor:  0.8,
			MaxSpeedKnots:       50.0,
			MaxPlausibleSpeedMS: 25.7, // ~50 knots
			OutlierSafetyFactor: 2.0,
			TargetCorrelationM:  500.0,
			QualityFieldTarget:  10.0,
		},
		Anomaly: AnomalyConfig{
			HistoryLen:           30,
			TrajectoryDeviationM: 500.0,
			TrajectorySeverityM:  2000.0,
			PredictionHorizonSec: 30.0,
			SpeedDeviationKn:     5.0,
			SpeedSeverityKn:      20.0,
			SensorMismatchM:      200.0,
			MismatchSeverityM:    1000.0,
			CollisionCPANM:       2.0,
			CollisionTCPAMin:     10.0,
			SuddenManeuverROT:    15.0,
			ROTSeverityDivisor:   30.0,
			DegradationSeverity:  0.8,
		},
		Spoofing: SpoofingConfig{
			PositionJumpM:        1000.0,
			JumpWindowSec:        10.0,
			ImpossibleSpeedKn:    60.0,
			MultiSensorMismatchM: 500.0,
			TimeInconsistencySec: 60.0,
			JumpConfidenceM:      5000.0,
			SpeedConfidenceKn:    100.0,
			MultiConfidenceM:     2000.0,
			TimeConfidenceSec:    300.0,
			IncidentLogCap:       100,
		},
		Uncertainty: UncertaintyConfig{
			PositionStdM:  map[string]float64{"gps": 5.0, "ais": 10.0, "radar": 50.0},
			SpeedStdKn:    map[string]float64{"gps": 0.1, "ais": 0.5},
			CourseStdDeg:  map[string]float64{"gps": 2.0, "ais": 5.0},
			NoPositionStd: 100.0,
			NoSpeedStd:    2.0,
			NoCourseStd:   10.0,

			HeadingStdDeg:      5.0,
			HeadingStdNoValue:  10.0,
			HeadingStdNoSensor: 15.0,

			TargetCPAStdNM:    0.5,
			TargetTCPAStdMin:  2.0,
			TargetReliability: 0.7,

			WindStdKn:          2.0,
			WindInterval:       4.0,
			WindReliability:    0.7,
			CurrentStdKn:       0.5,
			CurrentInterval:    1.0,
			CurrentReliability: 0.6,
			TideStdM:           0.1,
			TideInterval:       0.2,
			TideReliability:    0.8,

			ZScore: 1.96,
		},
		Awareness: AwarenessConfig{
			LowConfidenceThreshold: 0.5,
			MaxSeverityPenalty:     0.3,
			AvgSeverityPenalty:     0.2,
			AnomalyPenaltyScale:    0.5,
			SpoofingPenalty:        0.5,
			ProcessingHistoryLen:   100,
		},
		Simulation: SimulationConfig{
			VesselID:       "vessel-01",
			StartLat:       51.5074,
			StartLon:       -0.1278,
			InitialSpeedKn: 12.0,
			InitialCourse:  45.0,
			TimeStepSec:    1.0,
			Scenario:       "normal",
		},
	}
}

// Weight returns the reliability weight for a sensor, falling back to
// DefaultWeight for unknown sensors.
func (f *FusionConfig) Weight(sensor string) float64 {
	if w, ok := f.SensorWeights[sensor]; ok {
		return w
	}
	return f.DefaultWeight
}

// Load reads YAML overrides on top of Default(). When cueSchemaPath is
// non-empty the YAML is first validated against the CUE schema.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if cueSchemaPath != "" {
		if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}
	return cfg, nil
}
