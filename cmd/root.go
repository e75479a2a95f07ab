package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string // Optional YAML config file overriding built-in defaults
	logLevel string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "waresim",
	Short: "Discrete-event digital twin for warehouse order fulfillment",
	Long: `waresim replays a warehouse shift as a discrete-event simulation: orders
arrive on a Poisson stream, workers and forklifts pick, pack, and ship them,
and an attached ERP keeps the twin honest through periodic sync, drift
checks, and calibration.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up the flags shared by every subcommand
func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file; unset fields keep their defaults")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
}
