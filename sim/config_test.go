package sim

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_RejectsBadFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero horizon", func(c *Config) { c.SimulationTime = 0 }},
		{"negative horizon", func(c *Config) { c.SimulationTime = -10 }},
		{"zero workers", func(c *Config) { c.NumWorkers = 0 }},
		{"zero forklifts", func(c *Config) { c.NumForklifts = 0 }},
		{"zero pick mean", func(c *Config) { c.PickTimeMean = 0 }},
		{"negative pick std", func(c *Config) { c.PickTimeStd = -0.5 }},
		{"zero arrival rate", func(c *Config) { c.OrderArrivalRate = 0 }},
		{"threshold above one", func(c *Config) { c.SyncThreshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.SyncThreshold = -0.1 }},
		{"zero buffer", func(c *Config) { c.EventBufferSize = 0 }},
		{"zero calibration window", func(c *Config) { c.CalibrationWindow = 0 }},
		{"bad shortfall policy", func(c *Config) { c.Shortfall = "drop-order" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate_BackorderNeedsLeadTime(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shortfall = ShortfallBackorder
	cfg.ReplenishLeadTime = 0

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "replenish_lead_time")

	cfg.ReplenishLeadTime = 15.0
	assert.NoError(t, cfg.Validate())
}

func TestApplyParams_AppliesAndLeavesBaselineAlone(t *testing.T) {
	base := DefaultConfig()

	got, err := ApplyParams(base, map[string]float64{
		"num_workers":    8,
		"pick_time_mean": 2.75,
	})

	require.NoError(t, err)
	assert.Equal(t, 8, got.NumWorkers)
	assert.Equal(t, 2.75, got.PickTimeMean)

	// Baseline is untouched by value semantics
	assert.Equal(t, DefaultConfig(), base)
}

func TestApplyParams_UnknownName(t *testing.T) {
	base := DefaultConfig()

	got, err := ApplyParams(base, map[string]float64{"conveyor_speed": 3.0})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownParameter))
	assert.Equal(t, base, got)
}

func TestApplyParams_InvalidResultKeepsBaseline(t *testing.T) {
	base := DefaultConfig()

	got, err := ApplyParams(base, map[string]float64{"num_workers": 0})

	require.Error(t, err)
	assert.Equal(t, base, got)
}

func TestApplyParams_EmptyOverridesIsIdentity(t *testing.T) {
	base := DefaultConfig()

	got, err := ApplyParams(base, nil)

	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestApplyParams_IntRounding(t *testing.T) {
	base := DefaultConfig()

	got, err := ApplyParams(base, map[string]float64{"num_workers": 6.6})

	require.NoError(t, err)
	assert.Equal(t, 7, got.NumWorkers)
}

func TestTunableParameters_SortedAndComplete(t *testing.T) {
	names := TunableParameters()

	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "num_workers")
	assert.Contains(t, names, "pick_time_mean")
	assert.Contains(t, names, "order_arrival_rate")
	assert.NotContains(t, names, "shortfall_policy") // not numeric, not tunable
	assert.Len(t, names, len(parameterSetters))
}
