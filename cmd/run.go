package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/waresim/waresim/sim"
	"github.com/waresim/waresim/sim/erpmock"
	"github.com/waresim/waresim/sim/erpodoo"
)

var (
	runSeed      int64   // Seed for arrival and service sampling
	runHorizon   float64 // Simulated shift length in minutes
	runWorkers   int     // Worker pool size
	runForklifts int     // Forklift pool size
	runRate      float64 // Order arrivals per hour
	runSKUs      int     // Catalog size for the mock ERP
	runERP       bool    // Attach the mock ERP for sync and drift checks
	runERPOrders int     // Orders waiting in the ERP at shift start
	runTrace     bool    // Record per-resource allocation events
	runOutput    string  // Output path for the run result JSON
	runEventsOut string  // Output path for the recorded event timeline

	runOdooURL      string // Odoo base URL; attaches the live adapter when set
	runOdooDB       string // Odoo database name
	runOdooUser     string // Odoo login
	runOdooPassword string // Odoo password or API key
)

// runCmd executes one simulated shift and emits the run result as JSON
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulated warehouse shift",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadBaseConfig()
		if err != nil {
			logrus.Fatalf("config: %v", err)
		}
		if cmd.Flags().Changed("seed") {
			cfg.RandomSeed = runSeed
		}
		if cmd.Flags().Changed("horizon") {
			cfg.SimulationTime = runHorizon
		}
		if cmd.Flags().Changed("workers") {
			cfg.NumWorkers = runWorkers
		}
		if cmd.Flags().Changed("forklifts") {
			cfg.NumForklifts = runForklifts
		}
		if cmd.Flags().Changed("rate") {
			cfg.OrderArrivalRate = runRate
		}
		if cmd.Flags().Changed("skus") {
			cfg.NumStorageLocations = runSKUs
		}
		if cmd.Flags().Changed("trace") {
			cfg.DetailedTracing = runTrace
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("invalid configuration: %v", err)
		}

		s, err := sim.NewSimulator(cfg)
		if err != nil {
			logrus.Fatalf("building simulator: %v", err)
		}

		switch {
		case runOdooURL != "":
			odoo := erpodoo.New(erpodoo.Config{
				URL:      runOdooURL,
				Database: runOdooDB,
				Username: runOdooUser,
				Password: runOdooPassword,
			})
			if err := s.AttachERP(odoo); err != nil {
				logrus.Fatalf("attaching Odoo: %v", err)
			}
		case runERP:
			erp := erpmock.New(cfg.NumStorageLocations, cfg.RandomSeed)
			if runERPOrders > 0 {
				if err := erp.GenerateOrders(runERPOrders); err != nil {
					logrus.Fatalf("seeding ERP orders: %v", err)
				}
			}
			if err := s.AttachERP(erp); err != nil {
				logrus.Fatalf("attaching ERP: %v", err)
			}
		default:
			// The mock ERP doubles as the catalog source, so a plain run and
			// an attached run start from the same stock for the same seed.
			erp := erpmock.New(cfg.NumStorageLocations, cfg.RandomSeed)
			if err := erp.Connect(); err != nil {
				logrus.Fatalf("connecting mock ERP: %v", err)
			}
			inv, err := erp.FetchInventory()
			if err != nil {
				logrus.Fatalf("fetching catalog: %v", err)
			}
			s.SetInventory(inv)
		}

		res := s.Run()

		logrus.Infof("completed %d orders (%d in progress), avg order time %.1f min, throughput %.2f/hr",
			res.OrdersCompleted, res.OrdersInProgress,
			res.Metrics.AvgOrderTime, res.Metrics.ThroughputPerHour)

		if runEventsOut != "" {
			if err := writeJSON(s.Recorder.Snapshot(), runEventsOut); err != nil {
				logrus.Fatalf("writing events: %v", err)
			}
		}
		if err := writeJSON(res, runOutput); err != nil {
			logrus.Fatalf("writing result: %v", err)
		}
	},
}

func init() {
	runCmd.Flags().Int64Var(&runSeed, "seed", 42, "Seed for random arrival and service sampling")
	runCmd.Flags().Float64Var(&runHorizon, "horizon", 480, "Simulated shift length in minutes")
	runCmd.Flags().IntVar(&runWorkers, "workers", 5, "Number of warehouse workers")
	runCmd.Flags().IntVar(&runForklifts, "forklifts", 2, "Number of forklifts")
	runCmd.Flags().Float64Var(&runRate, "rate", 5.0, "Order arrivals per hour")
	runCmd.Flags().IntVar(&runSKUs, "skus", 100, "Catalog size generated by the mock ERP")
	runCmd.Flags().BoolVar(&runERP, "erp", false, "Attach the mock ERP for sync and drift checking")
	runCmd.Flags().IntVar(&runERPOrders, "erp-orders", 0, "Orders already waiting in the ERP at shift start")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "Record worker and forklift allocation events")
	runCmd.Flags().StringVar(&runOutput, "output", "", "Write the run result JSON here instead of stdout")
	runCmd.Flags().StringVar(&runEventsOut, "events-out", "", "Write the recorded event timeline JSON here, ready for calibrate --events")

	runCmd.Flags().StringVar(&runOdooURL, "odoo-url", "", "Odoo base URL; when set, the run attaches to this live ERP instead of the mock")
	runCmd.Flags().StringVar(&runOdooDB, "odoo-db", "", "Odoo database name")
	runCmd.Flags().StringVar(&runOdooUser, "odoo-user", "", "Odoo login")
	runCmd.Flags().StringVar(&runOdooPassword, "odoo-password", "", "Odoo password or API key")

	rootCmd.AddCommand(runCmd)
}
