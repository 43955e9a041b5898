// Package awareness orchestrates the processing pipeline: sensor fusion,
// spoofing detection, anomaly detection, uncertainty modeling, confidence
// aggregation, and alert assembly.
package awareness

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"navwatch/internal/anomaly"
	"navwatch/internal/config"
	"navwatch/internal/fusion"
	"navwatch/internal/navdata"
	"navwatch/internal/ring"
	"navwatch/internal/sensor"
	"navwatch/internal/spoofing"
	"navwatch/internal/uncertainty"
)

const (
	statusOperational = "operational"
	statusDegraded    = "degraded"
)

// Layer coordinates all awareness components. Process is not safe for
// concurrent calls; Status, Metrics, and SpoofingHistory are.
type Layer struct {
	cfg *config.Config
	log *slog.Logger
	now func() time.Time

	fusion      *fusion.Engine
	anomalies   *anomaly.Detector
	spoofing    *spoofing.Detector
	uncertainty *uncertainty.Modeler

	mu              sync.Mutex
	status          map[string]string
	processingTimes *ring.Buffer[float64]
}

// NewLayer wires the pipeline components from one configuration.
func NewLayer(cfg *config.Config, log *slog.Logger) *Layer {
	return &Layer{
		cfg:             cfg,
		log:             log,
		now:             time.Now,
		fusion:          fusion.NewEngine(&cfg.Fusion, log),
		anomalies:       anomaly.NewDetector(&cfg.Anomaly, log),
		spoofing:        spoofing.NewDetector(&cfg.Spoofing, log),
		uncertainty:     uncertainty.NewModeler(&cfg.Uncertainty, log),
		status:          freshStatus(),
		processingTimes: ring.New[float64](cfg.Awareness.ProcessingHistoryLen),
	}
}

func freshStatus() map[string]string {
	return map[string]string{
		"sensor_fusion":        statusOperational,
		"anomaly_detection":    statusOperational,
		"spoofing_detection":   statusOperational,
		"uncertainty_modeling": statusOperational,
	}
}

// Process runs one snapshot through the full pipeline. A component panic
// degrades every module status and surfaces as an error; no partial output
// is returned.
func (l *Layer) Process(snap *sensor.Snapshot) (out *navdata.Output, err error) {
	start := l.now()

	defer func() {
		if r := recover(); r != nil {
			l.log.Error("processing failed", "panic", r)
			l.degrade()
			out = nil
			err = fmt.Errorf("processing sensor data: %v", r)
		}
	}()

	fused := l.fusion.Fuse(snap)
	l.log.Debug("sensor fusion done", "confidence", fused.FusionConfidence)

	spoofingAlerts := l.spoofing.Detect(snap)
	if len(spoofingAlerts) > 0 {
		l.log.Warn("spoofing alerts raised", "count", len(spoofingAlerts))
	}

	anomalies := l.anomalies.Detect(fused, snap)
	uncertainties := l.uncertainty.Calculate(fused, snap, anomalies)

	confidence := l.overallConfidence(fused, uncertainties, anomalies, spoofingAlerts)
	alerts := l.generateAlerts(spoofingAlerts, anomalies, confidence)
	for _, a := range alerts {
		if a.Level == navdata.LevelCritical || a.Level == navdata.LevelEmergency {
			l.log.Warn("alert raised", "level", a.Level, "title", a.Title)
		}
	}

	out = &navdata.Output{
		Timestamp:         l.now(),
		FusedData:         fused,
		Anomalies:         anomalies,
		Uncertainties:     uncertainties,
		SpoofingAlerts:    spoofingAlerts,
		OverallConfidence: confidence,
		Alerts:            alerts,
		SystemStatus:      l.Status(),
	}

	l.recordProcessingTime(l.now().Sub(start).Seconds())
	return out, nil
}

// overallConfidence blends fusion confidence with anomaly severity,
// spoofing confidence, and the average uncertainty reliability. The result
// is clamped to [0,1].
func (l *Layer) overallConfidence(
	fused *navdata.FusedData,
	uncertainties map[string]*navdata.Uncertainty,
	anomalies []navdata.Anomaly,
	spoofingAlerts []navdata.SpoofingAlert,
) float64 {
	aw := l.cfg.Awareness
	confidence := fused.FusionConfidence

	if len(anomalies) > 0 {
		maxSev, sumSev := 0.0, 0.0
		for _, a := range anomalies {
			if a.Severity > maxSev {
				maxSev = a.Severity
			}
			sumSev += a.Severity
		}
		avgSev := sumSev / float64(len(anomalies))
		penalty := (maxSev*aw.MaxSeverityPenalty + avgSev*aw.AvgSeverityPenalty) * aw.AnomalyPenaltyScale
		confidence *= 1 - penalty
	}

	if len(spoofingAlerts) > 0 {
		maxConf := 0.0
		for _, s := range spoofingAlerts {
			if s.Confidence > maxConf {
				maxConf = s.Confidence
			}
		}
		confidence *= 1 - maxConf*aw.SpoofingPenalty
	}

	if len(uncertainties) > 0 {
		sumRel := 0.0
		for _, u := range uncertainties {
			sumRel += u.Reliability
		}
		confidence = (confidence + sumRel/float64(len(uncertainties))) / 2
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

// generateAlerts consolidates every source into one prioritized alert list.
// Spoofing alerts rank first; the sort is stable so equal levels keep their
// source order.
func (l *Layer) generateAlerts(
	spoofingAlerts []navdata.SpoofingAlert,
	anomalies []navdata.Anomaly,
	confidence float64,
) []navdata.Alert {
	var alerts []navdata.Alert

	for _, s := range spoofingAlerts {
		alerts = append(alerts, navdata.Alert{
			ID:    s.ID,
			Level: s.Level(),
			Title: "SPOOFING DETECTED: " +
				strings.ToUpper(strings.ReplaceAll(string(s.Kind), "_", " ")),
			Message:   s.Description + "\n\n" + s.RecommendedAction,
			Timestamp: s.DetectedAt,
			Source:    "spoofing_detector",
			Metadata: map[string]any{
				"spoofing_type":    string(s.Kind),
				"confidence":       s.Confidence,
				"evidence":         s.Evidence,
				"affected_sensors": s.AffectedSensors,
			},
		})
	}

	for _, a := range anomalies {
		var location map[string]any
		if a.Location != nil {
			location = map[string]any{
				"latitude":  a.Location.Latitude,
				"longitude": a.Location.Longitude,
			}
		}
		alerts = append(alerts, navdata.Alert{
			ID:        a.ID,
			Level:     a.Level(),
			Title:     titleWords(string(a.Kind)),
			Message:   a.Description,
			Timestamp: a.DetectedAt,
			Source:    "anomaly_detector",
			Metadata: map[string]any{
				"anomaly_type":     string(a.Kind),
				"severity":         a.Severity,
				"affected_sensors": a.AffectedSensors,
				"location":         location,
			},
		})
	}

	if confidence < l.cfg.Awareness.LowConfidenceThreshold {
		u := uuid.New()
		alerts = append(alerts, navdata.Alert{
			ID:    fmt.Sprintf("low_conf_%x", u[:4]),
			Level: navdata.LevelWarning,
			Title: "Low Situational Awareness Confidence",
			Message: fmt.Sprintf("Overall confidence is %.1f%%. "+
				"Exercise caution and verify sensor readings.", confidence*100),
			Timestamp: l.now(),
			Source:    "situation_awareness",
			Metadata:  map[string]any{"overall_confidence": confidence},
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Level.Rank() > alerts[j].Level.Rank()
	})
	return alerts
}

// titleWords turns a snake_case identifier into a spaced, title-cased label.
func titleWords(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func (l *Layer) recordProcessingTime(seconds float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.processingTimes.Push(seconds)
}

func (l *Layer) degrade() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k := range l.status {
		l.status[k] = statusDegraded
	}
}

// Status returns a copy of the per-module status map.
func (l *Layer) Status() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]string, len(l.status))
	for k, v := range l.status {
		out[k] = v
	}
	return out
}

// Metrics summarizes recent processing times in seconds.
func (l *Layer) Metrics() map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	times := l.processingTimes.Items()
	if len(times) == 0 {
		return map[string]float64{
			"avg_processing_time": 0,
			"max_processing_time": 0,
			"min_processing_time": 0,
		}
	}

	sum, minT, maxT := 0.0, times[0], times[0]
	for _, t := range times {
		sum += t
		if t < minT {
			minT = t
		}
		if t > maxT {
			maxT = t
		}
	}
	return map[string]float64{
		"avg_processing_time": sum / float64(len(times)),
		"max_processing_time": maxT,
		"min_processing_time": minT,
		"samples":             float64(len(times)),
	}
}

// SpoofingHistory exposes the detector's incident log.
func (l *Layer) SpoofingHistory() []spoofing.Incident {
	return l.spoofing.History()
}

// Reset clears component histories, processing metrics, and module
// statuses. Configuration is preserved.
func (l *Layer) Reset() {
	l.log.Info("resetting awareness layer")

	l.fusion.Reset()
	l.anomalies.Reset()
	l.spoofing.Reset()
	l.uncertainty.Reset()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.processingTimes.Clear()
	l.status = freshStatus()
}
