package cmd

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/waresim/waresim/sim"
)

var (
	calibrateEvents string // Path to a recorded event log, JSON array
	calibrateApply  bool   // Emit a YAML config fragment instead of the raw result
	calibrateOutput string // Output path
)

// calibrateCmd re-estimates timing parameters from a recorded event log.
// With --apply the output is a YAML fragment whose keys match the config
// schema, so it can be fed straight back through --config.
var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Estimate timing parameters from a recorded event log",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(calibrateEvents)
		if err != nil {
			logrus.Fatalf("reading events: %v", err)
		}
		var events []sim.Event
		if err := json.Unmarshal(data, &events); err != nil {
			logrus.Fatalf("parsing events: %v", err)
		}

		res := sim.Calibrate(events)
		logrus.Infof("calibrated from %d orders: %d pick, %d pack, %d ship samples, %d gaps",
			res.Orders, res.PickSamples, res.PackSamples, res.ShipSamples, res.Gaps)
		if res.Orders == 0 {
			logrus.Warnf("the log carries no order creations; estimates may be empty")
		}

		// Estimates must produce a config a run would accept.
		if _, err := sim.ApplyCalibration(sim.DefaultConfig(), res); err != nil {
			logrus.Fatalf("estimates failed validation: %v", err)
		}

		if calibrateApply {
			frag, err := yaml.Marshal(res.Params)
			if err != nil {
				logrus.Fatalf("rendering config fragment: %v", err)
			}
			if calibrateOutput == "" || calibrateOutput == "-" {
				if _, err := os.Stdout.Write(frag); err != nil {
					logrus.Fatalf("writing fragment: %v", err)
				}
				return
			}
			if err := os.WriteFile(calibrateOutput, frag, 0o644); err != nil {
				logrus.Fatalf("writing fragment: %v", err)
			}
			logrus.Infof("wrote %s", calibrateOutput)
			return
		}

		if err := writeJSON(res, calibrateOutput); err != nil {
			logrus.Fatalf("writing result: %v", err)
		}
	},
}

func init() {
	calibrateCmd.Flags().StringVar(&calibrateEvents, "events", "", "Recorded event log (JSON array)")
	_ = calibrateCmd.MarkFlagRequired("events")
	calibrateCmd.Flags().BoolVar(&calibrateApply, "apply", false, "Emit a YAML config fragment usable with --config")
	calibrateCmd.Flags().StringVar(&calibrateOutput, "output", "", "Write here instead of stdout")

	rootCmd.AddCommand(calibrateCmd)
}
