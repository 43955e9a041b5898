// Simulator driving the awareness pipeline on generated snapshots.
package sim

import (
	"log/slog"
	"sync"
	"time"

	"navwatch/internal/awareness"
	"navwatch/internal/config"
	"navwatch/internal/navdata"
	"navwatch/internal/spoofing"
)

// Simulator feeds generated sensor snapshots through the awareness layer on
// a fixed tick and fans the results out to the configured writers.
type Simulator struct {
	vesselID     string
	gen          *Generator
	layer        *awareness.Layer
	writer       AssessmentWriter
	alertWriter  AlertWriter
	tickInterval time.Duration
	log          *slog.Logger

	mu     sync.Mutex
	latest *navdata.Output
	ticks  int
}

// NewSimulator wires a simulator from the full configuration.
func NewSimulator(cfg *config.Config, layer *awareness.Layer, writer AssessmentWriter, alertWriter AlertWriter, tickInterval time.Duration, log *slog.Logger) *Simulator {
	return &Simulator{
		vesselID:     cfg.Simulation.VesselID,
		gen:          NewGenerator(&cfg.Simulation),
		layer:        layer,
		writer:       writer,
		alertWriter:  alertWriter,
		tickInterval: tickInterval,
		log:          log,
	}
}

// Run starts the simulation loop (blocking until stop signal).
func (s *Simulator) Run(stop <-chan struct{}) {
	s.log.Info("simulator starting",
		"vessel", s.vesselID, "tick", s.tickInterval, "scenario", s.Scenario())
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-stop:
			s.log.Info("simulator stopping")
			return
		}
	}
}

// tick generates one snapshot, processes it, and writes the assessment.
func (s *Simulator) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.gen.Next()
	out, err := s.layer.Process(snap)
	if err != nil {
		s.log.Error("processing failed", "error", err)
		return
	}
	s.latest = out
	s.ticks++

	if err := s.writer.WriteAssessment(navdata.NewAssessmentRow(s.vesselID, out)); err != nil {
		s.log.Error("assessment write failed", "error", err)
	}

	if s.alertWriter == nil || len(out.Alerts) == 0 {
		return
	}
	rows := make([]navdata.AlertRow, 0, len(out.Alerts))
	for _, a := range out.Alerts {
		rows = append(rows, navdata.NewAlertRow(s.vesselID, a))
	}
	if bw, ok := s.alertWriter.(batchAlertWriter); ok {
		if err := bw.WriteAlerts(rows); err != nil {
			s.log.Error("alert batch write failed", "error", err)
		}
		return
	}
	for _, r := range rows {
		if err := s.alertWriter.WriteAlert(r); err != nil {
			s.log.Error("alert write failed", "error", err)
		}
	}
}

// Latest returns the most recent pipeline output, or nil before the first
// tick.
func (s *Simulator) Latest() *navdata.Output {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Ticks returns the number of completed processing cycles.
func (s *Simulator) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Scenario returns the active scenario name.
func (s *Simulator) Scenario() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.Scenario()
}

// SetScenario switches the generator's scenario. Component histories are
// kept so scenario onset shows up as detections, matching a live system.
func (s *Simulator) SetScenario(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gen.SetScenario(name); err != nil {
		return err
	}
	s.log.Info("scenario switched", "scenario", name)
	return nil
}

// Status exposes the per-module statuses of the awareness layer.
func (s *Simulator) Status() map[string]string {
	return s.layer.Status()
}

// Metrics exposes the awareness layer's processing-time metrics.
func (s *Simulator) Metrics() map[string]float64 {
	return s.layer.Metrics()
}

// SpoofingHistory exposes the spoofing incident log.
func (s *Simulator) SpoofingHistory() []spoofing.Incident {
	return s.layer.SpoofingHistory()
}
