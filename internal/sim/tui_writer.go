package sim

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"navwatch/internal/config"
	"navwatch/internal/navdata"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries an assessment log line for the viewport.
type logMsg struct{ line string }

// alertMsg carries an alert log line.
type alertMsg struct{ line string }

// assessmentMsg carries the latest assessment row for the status footer.
type assessmentMsg struct{ navdata.AssessmentRow }

// adminMsg reports admin API status.
type adminMsg struct{ active bool }

const (
	logKeep             = 1000
	maxSectionHeightPct = 0.25
)

// TUIWriter renders assessments using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.SimulationConfig) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(cfg), tea.WithAltScreen())
	w.program = p
	go func() {
		_ = p.Start()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WriteAssessment implements AssessmentWriter.
func (w *TUIWriter) WriteAssessment(row navdata.AssessmentRow) error {
	line := fmt.Sprintf("%s[%s]%s %svessel=%s%s %slat=%.5f%s %slon=%.5f%s %sspd=%.1f%s %scog=%.1f%s %stargets=%d%s %sconf=%.2f%s %sanomalies=%d%s %sspoofing=%d%s",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, row.VesselID, colorReset,
		colorGreen, row.Lat, colorReset,
		colorYellow, row.Lon, colorReset,
		colorCyan, row.SpeedKn, colorReset,
		colorMagenta, row.CourseDeg, colorReset,
		colorWhite(), row.TargetCount, colorReset,
		confidenceColor(row.OverallConfidence), row.OverallConfidence, colorReset,
		countColor(row.AnomalyCount), row.AnomalyCount, colorReset,
		countColor(row.SpoofingCount), row.SpoofingCount, colorReset,
	)
	if row.HasSpoofing {
		line += fmt.Sprintf(" %sSPOOFED%s", colorRed, colorReset)
	}
	w.program.Send(logMsg{line: line})
	w.program.Send(assessmentMsg{row})
	return nil
}

// WriteAlert implements AlertWriter.
func (w *TUIWriter) WriteAlert(row navdata.AlertRow) error {
	line := fmt.Sprintf("%s[%s]%s %s%s%s %s source=%s",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		levelColor(row.Level), strings.ToUpper(row.Level), colorReset,
		row.Title, row.Source)
	w.program.Send(alertMsg{line: line})
	return nil
}

// WriteAlerts outputs multiple alert rows.
func (w *TUIWriter) WriteAlerts(rows []navdata.AlertRow) error {
	for _, r := range rows {
		_ = w.WriteAlert(r)
	}
	return nil
}

// SetAdminStatus updates the admin API indicator.
func (w *TUIWriter) SetAdminStatus(active bool) {
	w.program.Send(adminMsg{active: active})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	cfg          *config.SimulationConfig
	table        table.Model
	vp           viewport.Model
	alertVP      viewport.Model
	logs         []string
	alertLogs    []string
	latest       navdata.AssessmentRow
	haveLatest   bool
	admin        bool
	wrap         bool
	autoscroll   bool
	help         bool
	header       string
	headerHeight int
	height       int
}

func newTUIModel(cfg *config.SimulationConfig) tuiModel {
	cols := []table.Column{
		{Title: "Config", Width: 20},
		{Title: "Value", Width: 18},
		{Title: "Config", Width: 20},
		{Title: "Value", Width: 18},
	}
	rows := []table.Row{
		{"Vessel ID", cfg.VesselID, "Scenario", cfg.Scenario},
		{"Start Lat", fmt.Sprintf("%.4f", cfg.StartLat), "Start Lon", fmt.Sprintf("%.4f", cfg.StartLon)},
		{"Initial Speed (kn)", fmt.Sprintf("%.1f", cfg.InitialSpeedKn), "Initial Course", fmt.Sprintf("%.1f", cfg.InitialCourse)},
		{"Time Step (s)", fmt.Sprintf("%.1f", cfg.TimeStepSec), "", ""},
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	return tuiModel{
		cfg:        cfg,
		table:      t,
		vp:         viewport.New(0, 0),
		alertVP:    viewport.New(0, 0),
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.alertVP.Width = msg.Width
		m.height = msg.Height
		m.header = m.table.View()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshViewport()
		m.refreshAlerts()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
				m.updateViewportHeight()
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
				m.alertVP.GotoBottom()
			}
			return m, nil
		case "h", "?":
			m.help = !m.help
			m.updateViewportHeight()
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
				m.alertVP.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
				m.alertVP.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
				m.alertVP.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
				m.alertVP.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				m.alertVP, _ = m.alertVP.Update(msg)
				return m, cmd
			}
		}
		return m, nil
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > logKeep {
			m.logs = m.logs[len(m.logs)-logKeep:]
		}
		m.refreshViewport()
	case alertMsg:
		m.alertLogs = append(m.alertLogs, msg.line)
		if len(m.alertLogs) > logKeep {
			m.alertLogs = m.alertLogs[len(m.alertLogs)-logKeep:]
		}
		m.updateViewportHeight()
		m.refreshAlerts()
		m.refreshViewport()
	case assessmentMsg:
		m.latest = msg.AssessmentRow
		m.haveLatest = true
	case adminMsg:
		m.admin = msg.active
	}
	return m, nil
}

func (m *tuiModel) updateViewportHeight() {
	bottomHeight := lipgloss.Height(m.renderBottom())

	maxLines := int(float64(m.height) * maxSectionHeightPct)
	if maxLines < 1 {
		maxLines = 1
	}
	alertLines := len(m.alertLogs)
	if alertLines == 0 {
		alertLines = 1
	}
	if alertLines > maxLines {
		alertLines = maxLines
	}
	m.alertVP.Height = alertLines

	h := m.height - m.headerHeight - bottomHeight - m.alertVP.Height - 4
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
		m.alertVP.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshAlerts() {
	content := "none"
	if len(m.alertLogs) > 0 {
		content = strings.Join(m.alertLogs, "\n")
	}
	m.alertVP.SetContent(content)
	if m.autoscroll {
		m.alertVP.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.vp.Width)
	sections := []string{
		m.header,
		divider,
		m.vp.View(),
		divider,
		"Alerts:",
		m.alertVP.View(),
		divider,
		m.renderBottom(),
	}
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderBottom() string {
	indicator := func(on bool) string {
		c := lipgloss.Color("9")
		if on {
			c = lipgloss.Color("10")
		}
		return lipgloss.NewStyle().Foreground(c).Render("●")
	}
	state := "STATE waiting for first assessment"
	if m.haveLatest {
		state = fmt.Sprintf("%sSTATE%s %sconf=%.2f%s %sanomalies=%d%s %sspoofing=%d%s %scritical=%d%s",
			colorBlue, colorReset,
			confidenceColor(m.latest.OverallConfidence), m.latest.OverallConfidence, colorReset,
			countColor(m.latest.AnomalyCount), m.latest.AnomalyCount, colorReset,
			countColor(m.latest.SpoofingCount), m.latest.SpoofingCount, colorReset,
			countColor(m.latest.CriticalAlerts), m.latest.CriticalAlerts, colorReset)
	}
	return fmt.Sprintf("%s | Admin API %s | Wrap %s | Scroll %s | Help %s",
		state, indicator(m.admin), indicator(m.wrap), indicator(m.autoscroll), indicator(m.help))
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q  quit",
		" w  toggle line wrapping",
		" s  toggle auto-scroll",
		" h/? toggle this help view",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}
