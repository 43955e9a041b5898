package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"navwatch/internal/admin"
	"navwatch/internal/awareness"
	"navwatch/internal/config"
	"navwatch/internal/logging"
	"navwatch/internal/sim"
)

var (
	simPrintOnly  bool
	simTUI        bool
	simConfigPath string
	simSchemaPath string
	simTick       time.Duration
	simLogFile    string
	simScenario   string
	simAdminAddr  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the real-time vessel simulator",
	Long:  "simulate starts a demo vessel, feeds its sensor batches through the awareness pipeline, and emits assessments and alerts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}
		if simScenario != "" {
			cfg.Simulation.Scenario = simScenario
		}
		if vesselID := os.Getenv("VESSEL_ID"); vesselID != "" {
			cfg.Simulation.VesselID = vesselID
		}

		log := logging.New(slog.LevelInfo)
		if simTUI {
			// The TUI owns the terminal; keep log records out of it.
			log = logging.New(slog.LevelError)
		}

		writer, alertWriter, cleanup, err := newWriters(&cfg.Simulation, simPrintOnly, simTUI, simLogFile, log)
		if err != nil {
			return err
		}
		defer cleanup()

		tickInterval := simTick
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			tickInterval = d
		}

		layer := awareness.NewLayer(cfg, log)
		simulator := sim.NewSimulator(cfg, layer, writer, alertWriter, tickInterval, log)

		srv := admin.NewServer(simulator, log)
		go func() {
			if err := srv.Start(simAdminAddr); err != nil {
				log.Error("admin server failed", "error", err)
			}
		}()
		if tw, ok := writer.(*sim.TUIWriter); ok {
			tw.SetAdminStatus(true)
		}

		stop := make(chan struct{})
		go simulator.Run(stop)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		close(stop)
		log.Info("simulation stopped", "ticks", simulator.Ticks())
		return nil
	},
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print assessments to STDOUT instead of writing to DB")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Render assessments in a terminal UI")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/navwatch.yaml", "Path to configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/navwatch.cue", "Path to CUE schema file")
	simulateCmd.Flags().DurationVar(&simTick, "tick", time.Second, "Sensor batch interval (e.g. 500ms, 2s)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export assessment/alert logs (JSONL)")
	simulateCmd.Flags().StringVar(&simScenario, "scenario", "", "Scenario override (normal, collision, spoofing, anomaly)")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", ":8080", "Admin API listen address")
}
