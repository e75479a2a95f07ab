package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/waresim/waresim/sim"
	"github.com/waresim/waresim/sim/erpmock"
)

var (
	whatifScenarios string // Path to the scenario bundle YAML
	whatifSKUs      int    // Catalog size for the mock ERP
	whatifOutput    string // Output path for the results JSON
)

// whatifCmd runs the baseline plus every scenario in a bundle against the
// same starting stock, so the results are directly comparable.
var whatifCmd = &cobra.Command{
	Use:   "whatif",
	Short: "Run what-if scenarios from a YAML bundle",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadBaseConfig()
		if err != nil {
			logrus.Fatalf("config: %v", err)
		}
		if cmd.Flags().Changed("skus") {
			cfg.NumStorageLocations = whatifSKUs
		}

		bundle, err := sim.LoadScenarioBundle(whatifScenarios)
		if err != nil {
			logrus.Fatalf("scenarios: %v", err)
		}
		if err := bundle.Validate(); err != nil {
			logrus.Fatalf("scenarios: %v", err)
		}
		if len(bundle.Scenarios) == 0 {
			logrus.Fatalf("%s defines no scenarios", whatifScenarios)
		}

		base, err := sim.ApplyParams(cfg, bundle.Baseline)
		if err != nil {
			logrus.Fatalf("baseline overrides: %v", err)
		}

		erp := erpmock.New(base.NumStorageLocations, base.RandomSeed)
		if err := erp.Connect(); err != nil {
			logrus.Fatalf("connecting mock ERP: %v", err)
		}
		inv, err := erp.FetchInventory()
		if err != nil {
			logrus.Fatalf("fetching catalog: %v", err)
		}

		runner := sim.NewScenarioRunner(base, inv)

		results := make([]sim.ScenarioResult, 0, len(bundle.Scenarios)+1)
		baseline, err := runner.RunBaseline()
		if err != nil {
			logrus.Fatalf("baseline: %v", err)
		}
		results = append(results, baseline)

		for _, sc := range bundle.Scenarios {
			res, err := runner.RunWhatIf(sc.Name, sc.Overrides)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			logrus.Infof("%-20s completed=%d throughput=%.2f/hr",
				res.Name, res.Result.OrdersCompleted, res.Result.Metrics.ThroughputPerHour)
			results = append(results, res)
		}

		if err := writeJSON(results, whatifOutput); err != nil {
			logrus.Fatalf("writing results: %v", err)
		}
	},
}

func init() {
	whatifCmd.Flags().StringVar(&whatifScenarios, "scenarios", "", "Path to a scenario bundle YAML file")
	_ = whatifCmd.MarkFlagRequired("scenarios")
	whatifCmd.Flags().IntVar(&whatifSKUs, "skus", 100, "Catalog size generated by the mock ERP")
	whatifCmd.Flags().StringVar(&whatifOutput, "output", "", "Write the results JSON here instead of stdout")

	rootCmd.AddCommand(whatifCmd)
}
