package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"navwatch/internal/awareness"
	"navwatch/internal/config"
	"navwatch/internal/logging"
	"navwatch/internal/sim"
)

var (
	procInput      string
	procDelay      time.Duration
	procPrintOnly  bool
	procConfigPath string
	procSchemaPath string
	procLogFile    string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a sensor log file",
	Long:  "process feeds recorded sensor batches (one JSON object per line) through the awareness pipeline and emits the resulting assessments.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(procConfigPath, procSchemaPath)
		if err != nil {
			return err
		}

		log := logging.New(slog.LevelInfo)
		writer, alertWriter, cleanup, err := newWriters(&cfg.Simulation, procPrintOnly, false, procLogFile, log)
		if err != nil {
			return err
		}
		defer cleanup()

		layer := awareness.NewLayer(cfg, log)

		var n int
		if procInput == "" {
			n, err = sim.ProcessLog(os.Stdin, layer, cfg.Simulation.VesselID, writer, alertWriter, procDelay)
		} else {
			n, err = sim.ProcessLogFile(procInput, layer, cfg.Simulation.VesselID, writer, alertWriter, procDelay)
		}
		if err != nil {
			return err
		}
		log.Info("processing finished", "batches", n)
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&procInput, "input", "", "Path to sensor log file (defaults to STDIN)")
	processCmd.Flags().DurationVar(&procDelay, "delay", 0, "Delay between batches (e.g. 100ms)")
	processCmd.Flags().BoolVar(&procPrintOnly, "print-only", false, "Print assessments to STDOUT instead of writing to DB")
	processCmd.Flags().StringVar(&procConfigPath, "config", "config/navwatch.yaml", "Path to configuration YAML")
	processCmd.Flags().StringVar(&procSchemaPath, "schema", "schemas/navwatch.cue", "Path to CUE schema file")
	processCmd.Flags().StringVar(&procLogFile, "log-file", "", "Path to export assessment/alert logs (JSONL)")
}
