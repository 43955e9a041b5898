package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "navwatch",
	Short: "Maritime situational awareness toolkit",
	Long:  "navwatch fuses vessel sensor data, detects anomalies and spoofing, and tracks the uncertainty of the fused picture.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(processCmd)
}
