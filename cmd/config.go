package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/waresim/waresim/sim"
)

// Non-numeric settings live outside the tunable-parameter schema but are
// still configurable through files and WARESIM_* environment variables.
var extraConfigKeys = []string{"time_unit", "shortfall_policy", "detailed_tracing"}

// loadBaseConfig resolves the effective configuration: built-in defaults,
// overlaid by the --config file when given, overlaid by WARESIM_* environment
// variables. The result is validated before anything runs against it.
func loadBaseConfig() (sim.Config, error) {
	cfg := sim.DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("WARESIM")
	v.AutomaticEnv()
	for _, name := range sim.TunableParameters() {
		if err := v.BindEnv(name); err != nil {
			return cfg, err
		}
	}
	for _, name := range extraConfigKeys {
		if err := v.BindEnv(name); err != nil {
			return cfg, err
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		logrus.Infof("using config file %s", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// writeJSON renders v as indented JSON to path, or to stdout when path is
// empty or "-". Stdout stays machine-readable: logs go to stderr.
func writeJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	logrus.Infof("wrote %s", path)
	return nil
}
