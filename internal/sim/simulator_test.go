package sim

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"navwatch/internal/awareness"
	"navwatch/internal/config"
	"navwatch/internal/logging"
	"navwatch/internal/navdata"
)

// MockWriter collects assessment rows for validation.
type MockWriter struct {
	Rows []navdata.AssessmentRow
}

func (w *MockWriter) WriteAssessment(row navdata.AssessmentRow) error {
	w.Rows = append(w.Rows, row)
	return nil
}

// MockAlertWriter collects alert rows for validation.
type MockAlertWriter struct {
	Alerts []navdata.AlertRow
}

func (w *MockAlertWriter) WriteAlert(row navdata.AlertRow) error {
	w.Alerts = append(w.Alerts, row)
	return nil
}

func testSimulator(writer AssessmentWriter, alertWriter AlertWriter) *Simulator {
	cfg := config.Default()
	log := logging.NewWriter(io.Discard, slog.LevelError)
	layer := awareness.NewLayer(cfg, log)
	s := NewSimulator(cfg, layer, writer, alertWriter, time.Second, log)
	s.gen.rng = rand.New(rand.NewSource(1))
	return s
}

func TestSimulatorTickWritesAssessment(t *testing.T) {
	writer := &MockWriter{}
	alerts := &MockAlertWriter{}
	s := testSimulator(writer, alerts)

	s.tick()

	if len(writer.Rows) != 1 {
		t.Fatalf("assessment rows = %d, want 1", len(writer.Rows))
	}
	row := writer.Rows[0]
	if row.VesselID != "vessel-01" {
		t.Errorf("vessel id = %q, want vessel-01", row.VesselID)
	}
	if row.TargetCount != 3 {
		t.Errorf("target count = %d, want 3 (radar duplicates suppressed)", row.TargetCount)
	}
	if row.OverallConfidence <= 0 || row.OverallConfidence > 1 {
		t.Errorf("confidence = %f, want in (0, 1]", row.OverallConfidence)
	}
	if s.Latest() == nil {
		t.Error("Latest() nil after tick")
	}
	if s.Ticks() != 1 {
		t.Errorf("ticks = %d, want 1", s.Ticks())
	}
}

func TestSimulatorSpoofingScenario(t *testing.T) {
	writer := &MockWriter{}
	alerts := &MockAlertWriter{}
	s := testSimulator(writer, alerts)

	s.tick()
	if err := s.SetScenario(ScenarioSpoofing); err != nil {
		t.Fatalf("SetScenario: %v", err)
	}
	s.tick()
	s.tick()

	last := writer.Rows[len(writer.Rows)-1]
	if !last.HasSpoofing {
		t.Error("spoofing scenario produced no spoofing alerts")
	}
	if last.SpoofingCount == 0 {
		t.Error("spoofing count = 0 under spoofing scenario")
	}
	var spoofAlert bool
	for _, a := range alerts.Alerts {
		if a.Source == "spoofing_detector" {
			spoofAlert = true
		}
	}
	if !spoofAlert {
		t.Error("no spoofing alert reached the alert writer")
	}
	if len(s.SpoofingHistory()) == 0 {
		t.Error("spoofing incident history empty")
	}
}

func TestSimulatorRunStops(t *testing.T) {
	writer := &MockWriter{}
	s := testSimulator(writer, nil)
	s.tickInterval = 5 * time.Millisecond

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		s.Run(stop)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
	if s.Ticks() == 0 {
		t.Error("no ticks completed while running")
	}
}

func TestSimulatorSetScenarioUnknown(t *testing.T) {
	s := testSimulator(&MockWriter{}, nil)
	if err := s.SetScenario("chaos"); err == nil {
		t.Fatal("unknown scenario accepted")
	}
	if s.Scenario() != ScenarioNormal {
		t.Errorf("scenario = %q after rejected switch", s.Scenario())
	}
}

func TestSimulatorStatusDelegation(t *testing.T) {
	s := testSimulator(&MockWriter{}, nil)
	s.tick()

	for module, status := range s.Status() {
		if status != "operational" {
			t.Errorf("module %s status = %q, want operational", module, status)
		}
	}
	if s.Metrics()["samples"] != 1 {
		t.Errorf("metrics samples = %f, want 1", s.Metrics()["samples"])
	}
}
