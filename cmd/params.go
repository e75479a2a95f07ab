package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/waresim/waresim/sim"
)

// paramsCmd lists the tunable parameter names accepted by scenario
// overrides, sweeps, and calibration fragments.
var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "List tunable parameter names",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range sim.TunableParameters() {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}
