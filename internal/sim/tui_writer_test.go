package sim

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"navwatch/internal/config"
	"navwatch/internal/navdata"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p}

	if err := w.WriteAssessment(sampleRow()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok := p.msgs[0].(logMsg); !ok {
		t.Fatalf("expected logMsg, got %T", p.msgs[0])
	}
	if _, ok := p.msgs[1].(assessmentMsg); !ok {
		t.Fatalf("expected assessmentMsg, got %T", p.msgs[1])
	}

	alert := navdata.AlertRow{
		VesselID: "vessel-01", AlertID: "a1", Level: "warning",
		Title: "Collision Risk", Source: "anomaly_detector",
		Timestamp: time.Unix(0, 0).UTC(),
	}
	if err := w.WriteAlert(alert); err != nil {
		t.Fatalf("alert: %v", err)
	}
	if _, ok := p.msgs[2].(alertMsg); !ok {
		t.Fatalf("expected alertMsg, got %T", p.msgs[2])
	}

	w.SetAdminStatus(true)
	if _, ok := p.msgs[3].(adminMsg); !ok {
		t.Fatalf("expected adminMsg, got %T", p.msgs[3])
	}
}

func TestWrapToggle(t *testing.T) {
	cfg := &config.Default().Simulation
	m := newTUIModel(cfg)
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 30})
	m = mi.(tuiModel)
	long := "one two three four five six"
	mi, _ = m.Update(logMsg{line: long})
	m = mi.(tuiModel)
	lines := strings.Split(m.vp.View(), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[1]) != "" {
		t.Fatalf("expected single line before wrap")
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	m = mi.(tuiModel)
	if !m.wrap {
		t.Fatalf("wrap not toggled")
	}
	lines = strings.Split(m.vp.View(), "\n")
	if strings.TrimSpace(lines[1]) == "" {
		t.Fatalf("expected wrapped content on second line")
	}
}

func TestScrollToggle(t *testing.T) {
	cfg := &config.Default().Simulation
	m := newTUIModel(cfg)
	m.vp.Height = 1
	m.vp.Width = 20
	mi, _ := m.Update(logMsg{line: "l1"})
	m = mi.(tuiModel)
	mi, _ = m.Update(logMsg{line: "l2"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset 1, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if m.autoscroll {
		t.Fatalf("autoscroll should be off")
	}
	mi, _ = m.Update(logMsg{line: "l3"})
	m = mi.(tuiModel)
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset unchanged, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = mi.(tuiModel)
	if m.vp.YOffset != 0 {
		t.Fatalf("expected YOffset 0 after scrolling up, got %d", m.vp.YOffset)
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	m = mi.(tuiModel)
	if !m.autoscroll {
		t.Fatalf("autoscroll should be on")
	}
	expected := len(m.logs) - m.vp.Height
	if m.vp.YOffset != expected {
		t.Fatalf("expected YOffset %d, got %d", expected, m.vp.YOffset)
	}
}

func TestAlertSectionRendering(t *testing.T) {
	cfg := &config.Default().Simulation
	m := newTUIModel(cfg)
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	m = mi.(tuiModel)

	if !strings.Contains(m.alertVP.View(), "none") {
		t.Fatalf("expected empty alert section to read none")
	}
	mi, _ = m.Update(alertMsg{line: "WARNING Collision Risk"})
	m = mi.(tuiModel)
	if !strings.Contains(m.alertVP.View(), "Collision Risk") {
		t.Fatalf("alert line not rendered: %q", m.alertVP.View())
	}
}
