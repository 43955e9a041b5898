// ColorStdoutWriter prints human-friendly, colorized assessments to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"navwatch/internal/config"
	"navwatch/internal/navdata"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

func colorWhite() string { return "\x1b[37m" }

// ColorStdoutWriter prints assessment rows using ANSI colors.
type ColorStdoutWriter struct {
	cfg  *config.SimulationConfig
	out  io.Writer
	once sync.Once
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{cfg: cfg, out: os.Stdout}
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}

	fmt.Fprintln(w.out, "Simulation Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Vessel ID:\t%s\n", w.cfg.VesselID)
	fmt.Fprintf(tw, "Start Position:\t%.4f, %.4f\n", w.cfg.StartLat, w.cfg.StartLon)
	fmt.Fprintf(tw, "Initial Speed (kn):\t%.1f\n", w.cfg.InitialSpeedKn)
	fmt.Fprintf(tw, "Initial Course:\t%.1f\n", w.cfg.InitialCourse)
	fmt.Fprintf(tw, "Time Step (s):\t%.1f\n", w.cfg.TimeStepSec)
	fmt.Fprintf(tw, "Scenario:\t%s\n", w.cfg.Scenario)
	tw.Flush()
	fmt.Fprintln(w.out)
}

// WriteAssessment outputs a single assessment row in colorized format.
func (w *ColorStdoutWriter) WriteAssessment(row navdata.AssessmentRow) error {
	w.once.Do(w.printOverview)

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%svessel=%s%s ", colorBlue, row.VesselID, colorReset)
	fmt.Fprintf(w.out, "%slat=%.5f%s ", colorGreen, row.Lat, colorReset)
	fmt.Fprintf(w.out, "%slon=%.5f%s ", colorYellow, row.Lon, colorReset)
	fmt.Fprintf(w.out, "%sspd=%.1f%s ", colorCyan, row.SpeedKn, colorReset)
	fmt.Fprintf(w.out, "%scog=%.1f%s ", colorMagenta, row.CourseDeg, colorReset)
	fmt.Fprintf(w.out, "%shdg=%.1f%s ", colorMagenta, row.HeadingDeg, colorReset)
	fmt.Fprintf(w.out, "%stargets=%d%s ", colorWhite(), row.TargetCount, colorReset)
	fmt.Fprintf(w.out, "%sconf=%.2f%s ", confidenceColor(row.OverallConfidence), row.OverallConfidence, colorReset)
	fmt.Fprintf(w.out, "%sanomalies=%d%s ", countColor(row.AnomalyCount), row.AnomalyCount, colorReset)
	fmt.Fprintf(w.out, "%sspoofing=%d%s", countColor(row.SpoofingCount), row.SpoofingCount, colorReset)
	if row.HasSpoofing {
		fmt.Fprintf(w.out, " %sSPOOFED%s", colorRed, colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteAlert prints a consolidated alert to STDOUT.
func (w *ColorStdoutWriter) WriteAlert(row navdata.AlertRow) error {
	w.once.Do(w.printOverview)
	fmt.Fprintf(w.out, "%s[%s]%s %sALERT%s %s%s%s %s source=%s\n",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorRed, colorReset,
		levelColor(row.Level), row.Level, colorReset,
		row.Title, row.Source)
	return nil
}

// WriteAlerts prints multiple alerts.
func (w *ColorStdoutWriter) WriteAlerts(rows []navdata.AlertRow) error {
	for _, r := range rows {
		_ = w.WriteAlert(r)
	}
	return nil
}

func confidenceColor(c float64) string {
	switch {
	case c >= 0.8:
		return colorGreen
	case c >= 0.5:
		return colorYellow
	default:
		return colorRed
	}
}

func countColor(n int) string {
	if n > 0 {
		return colorRed
	}
	return colorGreen
}

func levelColor(level string) string {
	switch level {
	case string(navdata.LevelEmergency), string(navdata.LevelCritical):
		return colorRed
	case string(navdata.LevelWarning):
		return colorYellow
	default:
		return colorGreen
	}
}
