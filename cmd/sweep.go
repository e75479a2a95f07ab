package cmd

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/waresim/waresim/sim"
	"github.com/waresim/waresim/sim/erpmock"
)

var (
	sweepScenarios string  // Scenario bundle YAML carrying a sweep block
	sweepParam     string  // Parameter name to sweep
	sweepFrom      float64 // Range start, inclusive
	sweepTo        float64 // Range end, inclusive
	sweepSteps     int     // Number of points in the range
	sweepSKUs      int     // Catalog size for the mock ERP
	sweepOutput    string  // Output path for the results JSON
)

// sweepSpec resolves the sweep definition from either the bundle file or the
// --param/--from/--to/--steps flags.
func sweepSpec() (*sim.SweepSpec, error) {
	if sweepScenarios != "" {
		bundle, err := sim.LoadScenarioBundle(sweepScenarios)
		if err != nil {
			return nil, err
		}
		if err := bundle.Validate(); err != nil {
			return nil, err
		}
		if bundle.Sweep == nil {
			return nil, fmt.Errorf("%s defines no sweep", sweepScenarios)
		}
		return bundle.Sweep, nil
	}
	if sweepParam == "" {
		return nil, fmt.Errorf("give either --scenarios or --param with --from/--to/--steps")
	}
	spec := &sim.SweepSpec{Parameter: sweepParam, From: sweepFrom, To: sweepTo, Steps: sweepSteps}
	if err := (&sim.ScenarioBundle{Sweep: spec}).Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// sweepCmd runs a one-dimensional sensitivity sweep with a progress bar on
// stderr and the accumulated results as JSON on stdout.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep one parameter across a range of values",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadBaseConfig()
		if err != nil {
			logrus.Fatalf("config: %v", err)
		}
		if cmd.Flags().Changed("skus") {
			cfg.NumStorageLocations = sweepSKUs
		}
		spec, err := sweepSpec()
		if err != nil {
			logrus.Fatalf("sweep: %v", err)
		}
		points := spec.Points()

		erp := erpmock.New(cfg.NumStorageLocations, cfg.RandomSeed)
		if err := erp.Connect(); err != nil {
			logrus.Fatalf("connecting mock ERP: %v", err)
		}
		inv, err := erp.FetchInventory()
		if err != nil {
			logrus.Fatalf("fetching catalog: %v", err)
		}

		runner := sim.NewScenarioRunner(cfg, inv)
		bar := progressbar.NewOptions(len(points),
			progressbar.OptionSetDescription(fmt.Sprintf("sweep %s", spec.Parameter)),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
		results, err := runner.Sweep(spec.Parameter, points, func(res sim.ScenarioResult) {
			_ = bar.Add(1)
		})
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
		if err != nil {
			logrus.Fatalf("sweep: %v", err)
		}

		for _, res := range results {
			logrus.Infof("%-24s completed=%d avg=%.1fmin throughput=%.2f/hr",
				res.Name, res.Result.OrdersCompleted,
				res.Result.Metrics.AvgOrderTime, res.Result.Metrics.ThroughputPerHour)
		}

		if err := writeJSON(results, sweepOutput); err != nil {
			logrus.Fatalf("writing results: %v", err)
		}
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepScenarios, "scenarios", "", "Scenario bundle YAML with a sweep block")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "", "Parameter to sweep (see waresim params)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "Range start, inclusive")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 0, "Range end, inclusive")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 0, "Number of points in the range")
	sweepCmd.Flags().IntVar(&sweepSKUs, "skus", 100, "Catalog size generated by the mock ERP")
	sweepCmd.Flags().StringVar(&sweepOutput, "output", "", "Write the results JSON here instead of stdout")

	rootCmd.AddCommand(sweepCmd)
}
