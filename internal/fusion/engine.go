// Package fusion combines raw per-sensor readings into one vessel state,
// target list, and environment estimate using reliability-weighted averaging
// with outlier rejection.
package fusion

import (
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"

	"navwatch/internal/config"
	"navwatch/internal/geo"
	"navwatch/internal/navdata"
	"navwatch/internal/sensor"
)

// Engine fuses multi-sensor snapshots. The only state carried between calls
// is the most recent accepted fused position, kept for outlier rejection.
type Engine struct {
	cfg *config.FusionConfig
	log *slog.Logger
	now func() time.Time

	lastFix *positionFix
}

type positionFix struct {
	lat, lon float64
	at       time.Time
}

// NewEngine creates a fusion engine with the given configuration and event
// sink.
func NewEngine(cfg *config.FusionConfig, log *slog.Logger) *Engine {
	return &Engine{cfg: cfg, log: log, now: time.Now}
}

// Reset discards the retained fused position, preserving configuration.
func (e *Engine) Reset() {
	e.lastFix = nil
}

// Fuse combines one raw snapshot into a FusedData. It never fails; missing
// or malformed sensors are skipped.
func (e *Engine) Fuse(snap *sensor.Snapshot) *navdata.FusedData {
	now := e.now()

	vesselState := e.fuseVesselState(snap, now)
	targets := e.fuseTargets(snap)
	environment := e.fuseEnvironment(snap)
	quality := e.qualityScores(snap)
	confidence := e.fusionConfidence(quality)

	e.log.Debug("fused snapshot",
		"sensors", len(quality),
		"targets", len(targets),
		"confidence", fmt.Sprintf("%.2f", confidence))

	return &navdata.FusedData{
		VesselState:      vesselState,
		Targets:          targets,
		Environment:      environment,
		QualityScores:    quality,
		FusionConfidence: confidence,
		Timestamp:        now,
	}
}

type weighted struct {
	values  []float64
	weights []float64
}

func (w *weighted) add(v, weight float64) {
	w.values = append(w.values, v)
	w.weights = append(w.weights, weight)
}

func (w *weighted) mean(def float64) float64 {
	if len(w.values) == 0 {
		return def
	}
	return stat.Mean(w.values, w.weights)
}

func (e *Engine) fuseVesselState(snap *sensor.Snapshot, now time.Time) navdata.VesselState {
	var lats, lons, speeds, courses, headings, rots weighted

	if gps := snap.GPS; gps != nil {
		w := e.cfg.Weight("gps")
		if gps.HasPosition() && !e.isPositionOutlier(*gps.Latitude, *gps.Longitude, now) {
			lats.add(*gps.Latitude, w)
			lons.add(*gps.Longitude, w)
		}
		if gps.Speed != nil && !e.isSpeedOutlier(*gps.Speed) {
			speeds.add(*gps.Speed, w)
		}
		if gps.Course != nil {
			courses.add(*gps.Course, w)
		}
	}

	if ais := snap.AIS; ais != nil {
		w := e.cfg.Weight("ais")
		if ais.HasPosition() && !e.isPositionOutlier(*ais.Latitude, *ais.Longitude, now) {
			lats.add(*ais.Latitude, w)
			lons.add(*ais.Longitude, w)
		}
		if ais.Speed != nil && !e.isSpeedOutlier(*ais.Speed) {
			speeds.add(*ais.Speed, w)
		}
		if ais.Course != nil {
			courses.add(*ais.Course, w)
		}
		if ais.Heading != nil {
			headings.add(*ais.Heading, w)
		}
		if ais.ROT != nil {
			rots.add(*ais.ROT, w)
		}
	}

	if radar := snap.Radar; radar != nil && radar.HasPosition() {
		w := e.cfg.Weight("radar") * e.cfg.RadarOwnShipFactor
		own := radar.OwnShip
		if !e.isPositionOutlier(*own.Latitude, *own.Longitude, now) {
			lats.add(*own.Latitude, w)
			lons.add(*own.Longitude, w)
		}
	}

	fusedLat := lats.mean(0)
	fusedLon := lons.mean(0)
	fusedCourse := fuseAngles(&courses, 0)
	state := navdata.VesselState{
		Position:   navdata.Position{Latitude: fusedLat, Longitude: fusedLon},
		Speed:      speeds.mean(0),
		Course:     fusedCourse,
		Heading:    fuseAngles(&headings, fusedCourse),
		RateOfTurn: rots.mean(0),
		Timestamp:  now,
	}

	// Only accepted fixes feed the next outlier check; an all-zero "no fix"
	// must not poison the history.
	if len(lats.values) > 0 {
		e.lastFix = &positionFix{lat: fusedLat, lon: fusedLon, at: now}
	}

	return state
}

// fuseAngles computes the weighted circular mean of the collected angles,
// avoiding the 359/1 wraparound error of arithmetic averaging.
func fuseAngles(w *weighted, def float64) float64 {
	if len(w.values) == 0 {
		return def
	}
	return geo.CircularMeanDegrees(w.values, w.weights)
}

// isPositionOutlier rejects a candidate fix that is implausibly far from the
// most recent accepted fused position given the elapsed time. With no
// history, nothing is rejected.
func (e *Engine) isPositionOutlier(lat, lon float64, now time.Time) bool {
	if e.lastFix == nil {
		return false
	}
	elapsed := now.Sub(e.lastFix.at).Seconds()
	if elapsed <= 0 {
		return false
	}
	distance := geo.HaversineMeters(lat, lon, e.lastFix.lat, e.lastFix.lon)
	maxDistance := e.cfg.MaxPlausibleSpeedMS * elapsed * e.cfg.OutlierSafetyFactor
	if distance > maxDistance {
		e.log.Debug("rejected position outlier",
			"distance_m", fmt.Sprintf("%.0f", distance),
			"max_m", fmt.Sprintf("%.0f", maxDistance))
		return true
	}
	return false
}

func (e *Engine) isSpeedOutlier(speed float64) bool {
	return speed < 0 || speed > e.cfg.MaxSpeedKnots
}

type targetEntry struct {
	id   string
	data sensor.TargetReading
}

// fuseTargets merges AIS and radar target contacts. AIS targets are keyed by
// MMSI; radar contacts within the correlation radius of an AIS target only
// suppress duplicate creation and never override AIS fields.
func (e *Engine) fuseTargets(snap *sensor.Snapshot) []navdata.Target {
	var entries []targetEntry
	index := make(map[string]int)

	if snap.AIS != nil {
		for _, tr := range snap.AIS.Targets {
			id := tr.MMSI
			if id == "" {
				id = fmt.Sprintf("ais_%d", len(entries))
			}
			if _, dup := index[id]; dup {
				continue
			}
			index[id] = len(entries)
			entries = append(entries, targetEntry{id: id, data: tr})
		}
	}

	if snap.Radar != nil {
		for _, tr := range snap.Radar.Targets {
			if tr.HasPosition() && e.correlatesWithAIS(tr, entries) {
				continue
			}
			id := fmt.Sprintf("radar_%d", len(entries))
			index[id] = len(entries)
			entries = append(entries, targetEntry{id: id, data: tr})
		}
	}

	targets := make([]navdata.Target, 0, len(entries))
	for _, en := range entries {
		targets = append(targets, buildTarget(en.id, en.data))
	}
	return targets
}

func (e *Engine) correlatesWithAIS(radar sensor.TargetReading, entries []targetEntry) bool {
	for _, en := range entries {
		if !en.data.HasPosition() {
			continue
		}
		d := geo.HaversineMeters(*radar.Latitude, *radar.Longitude,
			*en.data.Latitude, *en.data.Longitude)
		if d < e.cfg.TargetCorrelationM {
			return true
		}
	}
	return false
}

func buildTarget(id string, tr sensor.TargetReading) navdata.Target {
	t := navdata.Target{
		ID:         id,
		Speed:      floatOr(tr.Speed, 0),
		Course:     floatOr(tr.Course, 0),
		CPA:        floatOr(tr.CPA, 999.9),
		TCPA:       floatOr(tr.TCPA, 999.9),
		Distance:   floatOr(tr.Distance, 999.9),
		VesselType: tr.VesselType,
		Name:       tr.Name,
	}
	t.Position = navdata.Position{
		Latitude:  floatOr(tr.Latitude, 0),
		Longitude: floatOr(tr.Longitude, 0),
	}
	return t
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func (e *Engine) fuseEnvironment(snap *sensor.Snapshot) navdata.Environment {
	env := navdata.Environment{
		Weather:    map[string]any{},
		Tide:       map[string]any{},
		Current:    map[string]any{},
		Visibility: "good",
	}
	if snap.Weather != nil {
		env.Weather = snap.Weather.Map()
		if snap.Weather.Visibility != "" {
			env.Visibility = snap.Weather.Visibility
		}
	}
	if snap.Tide != nil {
		env.Tide = snap.Tide.Map()
	}
	if snap.Current != nil {
		env.Current = snap.Current.Map()
	}
	return env
}

// qualityScores rates each present sensor by data completeness.
func (e *Engine) qualityScores(snap *sensor.Snapshot) map[string]float64 {
	scores := make(map[string]float64)
	for name, reading := range snap.Readings() {
		q := float64(reading.FieldCount()) / e.cfg.QualityFieldTarget
		if q > 1 {
			q = 1
		}
		scores[name] = q
	}
	return scores
}

// fusionConfidence is the reliability-weighted average of the quality scores,
// or 0 when no sensors reported.
func (e *Engine) fusionConfidence(quality map[string]float64) float64 {
	if len(quality) == 0 {
		return 0
	}
	var weightedSum, totalWeight float64
	for sensorName, q := range quality {
		w := e.cfg.Weight(sensorName)
		weightedSum += q * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}
