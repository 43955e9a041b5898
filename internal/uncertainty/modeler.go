// Package uncertainty estimates the statistical uncertainty of the fused
// state using fixed sensor error characteristics and inverse-variance
// pooling. No learning involved.
package uncertainty

import (
	"log/slog"
	"math"
	"strings"

	"navwatch/internal/config"
	"navwatch/internal/geo"
	"navwatch/internal/navdata"
	"navwatch/internal/sensor"
)

// Reliability multipliers applied when anomalies touch a parameter.
const (
	directPenaltyFactor = 0.3
	sensorPenaltyFactor = 0.2
)

// Modeler computes per-parameter uncertainties. It is stateless; every call
// derives everything from its inputs.
type Modeler struct {
	cfg *config.UncertaintyConfig
	log *slog.Logger
}

// NewModeler creates a modeler.
func NewModeler(cfg *config.UncertaintyConfig, log *slog.Logger) *Modeler {
	return &Modeler{cfg: cfg, log: log}
}

// Reset is a no-op; the modeler carries no state between calls.
func (m *Modeler) Reset() {}

// Calculate produces the uncertainty map for one batch. Detected anomalies
// widen the affected estimates in place before the map is returned.
func (m *Modeler) Calculate(fused *navdata.FusedData, snap *sensor.Snapshot, anomalies []navdata.Anomaly) map[string]*navdata.Uncertainty {
	uncertainties := map[string]*navdata.Uncertainty{
		"position": m.position(snap),
		"speed":    m.speed(fused, snap),
		"course":   m.course(fused, snap),
		"heading":  m.heading(fused, snap),
		"targets":  m.targets(fused),
	}
	for name, u := range m.environmental() {
		uncertainties[name] = u
	}

	if len(anomalies) > 0 {
		m.adjustForAnomalies(uncertainties, anomalies)
	}

	m.log.Debug("uncertainty pass complete", "parameters", len(uncertainties))
	return uncertainties
}

// pool combines independent standard deviations via 1/sigma^2 = sum(1/sigma_i^2).
func pool(sigmas []float64) float64 {
	invVarSum := 0.0
	for _, s := range sigmas {
		invVarSum += 1 / (s * s)
	}
	return math.Sqrt(1 / invVarSum)
}

func present(r sensor.Reading) bool {
	switch v := r.(type) {
	case *sensor.GPSReading:
		return v != nil && v.FieldCount() > 0
	case *sensor.AISReading:
		return v != nil && v.FieldCount() > 0
	case *sensor.RadarReading:
		return v != nil && v.FieldCount() > 0
	}
	return false
}

// position pools the fixed per-sensor position errors of whichever position
// sensors reported anything this batch.
func (m *Modeler) position(snap *sensor.Snapshot) *navdata.Uncertainty {
	var sigmas []float64
	if present(snap.GPS) {
		sigmas = append(sigmas, m.cfg.PositionStdM["gps"])
	}
	if present(snap.AIS) {
		sigmas = append(sigmas, m.cfg.PositionStdM["ais"])
	}
	if present(snap.Radar) {
		sigmas = append(sigmas, m.cfg.PositionStdM["radar"])
	}

	var std float64
	switch len(sigmas) {
	case 0:
		std = m.cfg.NoPositionStd
	case 1:
		std = sigmas[0]
	default:
		std = pool(sigmas)
	}

	ci := m.cfg.ZScore * std
	// Position can never be fully trusted; cap reliability at 90%.
	reliability := math.Min(1, float64(len(sigmas))/3) * 0.9

	return &navdata.Uncertainty{
		Parameter:          "position",
		MeanValue:          0, // relative to the fused position
		StdDeviation:       std,
		ConfidenceInterval: [2]float64{-ci, ci},
		Reliability:        reliability,
	}
}

func (m *Modeler) speed(fused *navdata.FusedData, snap *sensor.Snapshot) *navdata.Uncertainty {
	var sigmas []float64
	if present(snap.GPS) && snap.GPS.Speed != nil {
		sigmas = append(sigmas, m.cfg.SpeedStdKn["gps"])
	}
	if present(snap.AIS) && snap.AIS.Speed != nil {
		sigmas = append(sigmas, m.cfg.SpeedStdKn["ais"])
	}

	std, reliability := m.poolWithReliability(sigmas, m.cfg.NoSpeedStd)
	ci := m.cfg.ZScore * std
	speed := fused.VesselState.Speed

	return &navdata.Uncertainty{
		Parameter:          "speed",
		MeanValue:          speed,
		StdDeviation:       std,
		ConfidenceInterval: [2]float64{speed - ci, speed + ci},
		Reliability:        reliability,
	}
}

func (m *Modeler) course(fused *navdata.FusedData, snap *sensor.Snapshot) *navdata.Uncertainty {
	var sigmas []float64
	if present(snap.GPS) && snap.GPS.Course != nil {
		sigmas = append(sigmas, m.cfg.CourseStdDeg["gps"])
	}
	if present(snap.AIS) && snap.AIS.Course != nil {
		sigmas = append(sigmas, m.cfg.CourseStdDeg["ais"])
	}

	std, reliability := m.poolWithReliability(sigmas, m.cfg.NoCourseStd)
	ci := m.cfg.ZScore * std
	course := fused.VesselState.Course

	return &navdata.Uncertainty{
		Parameter:          "course",
		MeanValue:          course,
		StdDeviation:       std,
		ConfidenceInterval: [2]float64{geo.NormalizeDegrees(course - ci), geo.NormalizeDegrees(course + ci)},
		Reliability:        reliability,
	}
}

// poolWithReliability applies the shared none/one/many ladder for scalar
// parameters: a fallback deviation with low trust, the single sensor's
// deviation with moderate trust, or the pooled deviation with high trust.
func (m *Modeler) poolWithReliability(sigmas []float64, fallbackStd float64) (float64, float64) {
	switch len(sigmas) {
	case 0:
		return fallbackStd, 0.3
	case 1:
		return sigmas[0], 0.7
	default:
		return pool(sigmas), 0.9
	}
}

// heading trusts the AIS compass when it reports, degrades when AIS is
// present without a heading, and falls back hard without AIS.
func (m *Modeler) heading(fused *navdata.FusedData, snap *sensor.Snapshot) *navdata.Uncertainty {
	var std, reliability float64
	switch {
	case present(snap.AIS) && snap.AIS.Heading != nil:
		std, reliability = m.cfg.HeadingStdDeg, 0.8
	case present(snap.AIS):
		std, reliability = m.cfg.HeadingStdNoValue, 0.5
	default:
		std, reliability = m.cfg.HeadingStdNoSensor, 0.3
	}

	ci := m.cfg.ZScore * std
	heading := fused.VesselState.Heading

	return &navdata.Uncertainty{
		Parameter:          "heading",
		MeanValue:          heading,
		StdDeviation:       std,
		ConfidenceInterval: [2]float64{geo.NormalizeDegrees(heading - ci), geo.NormalizeDegrees(heading + ci)},
		Reliability:        reliability,
	}
}

// targets expresses tracking uncertainty over the target count.
func (m *Modeler) targets(fused *navdata.FusedData) *navdata.Uncertainty {
	n := float64(len(fused.Targets))
	if n == 0 {
		return &navdata.Uncertainty{
			Parameter:   "targets",
			Reliability: 1,
		}
	}

	return &navdata.Uncertainty{
		Parameter:          "targets",
		MeanValue:          n,
		StdDeviation:       math.Sqrt(n),
		ConfidenceInterval: [2]float64{math.Max(0, n-2), n + 2},
		Reliability:        m.cfg.TargetReliability,
	}
}

func (m *Modeler) environmental() map[string]*navdata.Uncertainty {
	return map[string]*navdata.Uncertainty{
		"wind": {
			Parameter:          "wind",
			StdDeviation:       m.cfg.WindStdKn,
			ConfidenceInterval: [2]float64{-m.cfg.WindInterval, m.cfg.WindInterval},
			Reliability:        m.cfg.WindReliability,
		},
		"current": {
			Parameter:          "current",
			StdDeviation:       m.cfg.CurrentStdKn,
			ConfidenceInterval: [2]float64{-m.cfg.CurrentInterval, m.cfg.CurrentInterval},
			Reliability:        m.cfg.CurrentReliability,
		},
		"tide": {
			Parameter:          "tide",
			StdDeviation:       m.cfg.TideStdM,
			ConfidenceInterval: [2]float64{-m.cfg.TideInterval, m.cfg.TideInterval},
			Reliability:        m.cfg.TideReliability,
		},
	}
}

// adjustForAnomalies widens the estimates touched by anomalies. The impact
// factor scales with the worst severity seen; sensor-class anomalies erode
// trust in every estimate.
func (m *Modeler) adjustForAnomalies(uncertainties map[string]*navdata.Uncertainty, anomalies []navdata.Anomaly) {
	maxSeverity := 0.0
	for _, a := range anomalies {
		if a.Severity > maxSeverity {
			maxSeverity = a.Severity
		}
	}
	impact := 1 + maxSeverity

	for _, a := range anomalies {
		kind := string(a.Kind)
		if strings.Contains(kind, "position") {
			if u, ok := uncertainties["position"]; ok {
				u.StdDeviation *= impact
				u.Reliability *= 1 - a.Severity*directPenaltyFactor
			}
		}
		if strings.Contains(kind, "speed") {
			if u, ok := uncertainties["speed"]; ok {
				u.StdDeviation *= impact
				u.Reliability *= 1 - a.Severity*directPenaltyFactor
			}
		}
		if strings.Contains(kind, "sensor") {
			for _, u := range uncertainties {
				u.Reliability *= 1 - a.Severity*sensorPenaltyFactor
			}
		}
	}

	m.log.Debug("adjusted uncertainties", "anomalies", len(anomalies))
}

// EstimateCollisionUncertainty estimates the error bounds of a collision
// prediction, in nautical miles for CPA and minutes for TCPA.
func (m *Modeler) EstimateCollisionUncertainty(targetDistance, targetSpeed, ownSpeed float64) (float64, float64) {
	cpaUncertainty := 0.1 + targetDistance*0.02

	tcpaUncertainty := 5.0
	if targetSpeed+ownSpeed > 0 {
		tcpaUncertainty = 1.0
	}
	tcpaUncertainty += targetDistance * 0.5

	return cpaUncertainty, tcpaUncertainty
}
