package main

import (
	"log/slog"
	"os"

	"golang.org/x/term"

	"navwatch/internal/config"
	"navwatch/internal/sim"
)

// newWriters sets up assessment and alert writers based on flags and env
// vars. It returns the writers and a cleanup function to close any resources.
func newWriters(cfg *config.SimulationConfig, printOnly, tui bool, logFile string, log *slog.Logger) (sim.AssessmentWriter, sim.AlertWriter, func(), error) {
	cleanup := func() {}

	writer, alertWriter, closer, err := baseWriters(cfg, printOnly, tui, log)
	if err != nil {
		return nil, nil, nil, err
	}
	if closer != nil {
		cleanup = closer
	}
	if logFile == "" {
		return writer, alertWriter, cleanup, nil
	}

	fw, err := sim.NewFileWriter(logFile, logFile+".alerts")
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	mw := sim.NewMultiWriter(
		[]sim.AssessmentWriter{writer, fw},
		[]sim.AlertWriter{alertWriter, fw},
	)
	prev := cleanup
	cleanup = func() {
		fw.Close()
		prev()
	}
	return mw, mw, cleanup, nil
}

// baseWriters chooses the underlying writers based on the printOnly and tui
// flags and env vars.
func baseWriters(cfg *config.SimulationConfig, printOnly, tui bool, log *slog.Logger) (sim.AssessmentWriter, sim.AlertWriter, func(), error) {
	if tui {
		w := sim.NewTUIWriter(cfg)
		return w, w, func() { w.Close() }, nil
	}

	if printOnly || os.Getenv("GREPTIMEDB_ENDPOINT") == "" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			w := sim.NewColorStdoutWriter(cfg)
			return w, w, nil, nil
		}
		w := sim.NewJSONStdoutWriter()
		return w, w, nil, nil
	}

	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	w, err := sim.NewGreptimeDBWriter(endpoint, database, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return w, w, nil, nil
}
