package main

import (
	"github.com/spf13/cobra"

	"navwatch/internal/dashboard"
)

var dashboardOutDir string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render Grafana dashboards",
	Long:  "dashboard renders the Grafana dashboard templates for the assessment and alert tables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboard.Render(dashboardOutDir)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringVar(&dashboardOutDir, "out", "dashboards", "Output directory for rendered dashboards")
}
