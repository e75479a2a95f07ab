package sim

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioRunner_BaselineSurvivesRuns(t *testing.T) {
	// GIVEN a runner capturing a baseline config and stocked inventory
	base := DefaultConfig()
	base.SimulationTime = 120
	inv := testInventory(10, 80)
	r := NewScenarioRunner(base, inv)

	// WHEN a scenario with heavy overrides runs
	_, err := r.RunWhatIf("surge", map[string]float64{
		"num_workers":        8,
		"order_arrival_rate": 12,
	})
	require.NoError(t, err)

	// THEN the captured baseline is untouched, field for field
	assert.Equal(t, base, r.Baseline())
	for sku, item := range inv {
		assert.Equal(t, 80, item.Quantity, "inventory for %s mutated by a run", sku)
	}
}

func TestScenarioRunner_RunBaselineHasNoOverrides(t *testing.T) {
	base := DefaultConfig()
	base.SimulationTime = 60
	r := NewScenarioRunner(base, testInventory(5, 50))

	res, err := r.RunBaseline()
	require.NoError(t, err)

	assert.Equal(t, "baseline", res.Name)
	assert.Nil(t, res.Overrides)
	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err, "RunID %q is not a UUID", res.RunID)
}

func TestScenarioRunner_UnknownOverrideFailsBeforeRunning(t *testing.T) {
	r := NewScenarioRunner(DefaultConfig(), testInventory(5, 50))

	_, err := r.RunWhatIf("typo", map[string]float64{"num_wrokers": 5})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownParameter))
	assert.Contains(t, err.Error(), `scenario "typo"`)
}

func TestScenarioRunner_InvalidOverrideFailsBeforeRunning(t *testing.T) {
	r := NewScenarioRunner(DefaultConfig(), testInventory(5, 50))

	_, err := r.RunWhatIf("impossible", map[string]float64{"num_workers": -3})

	require.Error(t, err)
}

func TestScenarioRunner_SameScenarioAgreesOnEverythingButRunID(t *testing.T) {
	base := DefaultConfig()
	base.SimulationTime = 120
	r := NewScenarioRunner(base, testInventory(10, 80))

	overrides := map[string]float64{"num_workers": 5}
	first, err := r.RunWhatIf("repeat", overrides)
	require.NoError(t, err)
	second, err := r.RunWhatIf("repeat", overrides)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.Overrides, second.Overrides)
	assert.Equal(t, first.Result, second.Result)
}

func TestScenarioRunner_SweepRunsValuesInOrder(t *testing.T) {
	base := DefaultConfig()
	base.SimulationTime = 60
	r := NewScenarioRunner(base, testInventory(5, 50))

	var seen []string
	results, err := r.Sweep("num_workers", []float64{3, 5, 7}, func(res ScenarioResult) {
		seen = append(seen, res.Name)
	})
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, []string{"num_workers=3", "num_workers=5", "num_workers=7"}, seen)
	for i, want := range []float64{3, 5, 7} {
		assert.Equal(t, map[string]float64{"num_workers": want}, results[i].Overrides)
	}
}

func TestScenarioRunner_SweepRepeatedValueIsIsolated(t *testing.T) {
	base := DefaultConfig()
	base.SimulationTime = 60
	r := NewScenarioRunner(base, testInventory(5, 50))

	results, err := r.Sweep("num_workers", []float64{4, 4}, nil)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.NotEqual(t, results[0].RunID, results[1].RunID)
	assert.Equal(t, results[0].Result, results[1].Result)
}

func TestScenarioRunner_SweepUnknownParameterFails(t *testing.T) {
	r := NewScenarioRunner(DefaultConfig(), testInventory(5, 50))

	results, err := r.Sweep("warp_factor", []float64{1, 2}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownParameter))
	assert.Nil(t, results)
}

func TestScenarioRunner_SweepKeepsResultsBeforeFailure(t *testing.T) {
	base := DefaultConfig()
	base.SimulationTime = 30
	r := NewScenarioRunner(base, testInventory(5, 50))

	results, err := r.Sweep("num_workers", []float64{3, -1, 5}, nil)

	require.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "num_workers=3", results[0].Name)
}

func TestScenarioRunner_WorkerSweepLiftsThroughputToAPlateau(t *testing.T) {
	// GIVEN the default arrival stream against a deep stock position
	base := DefaultConfig()
	r := NewScenarioRunner(base, testInventory(20, 500))

	values := []float64{3, 4, 5, 6, 7, 8, 9, 10}
	results, err := r.Sweep("num_workers", values, nil)
	require.NoError(t, err)
	require.Len(t, results, len(values))

	tp := make([]float64, len(results))
	for i, res := range results {
		require.Greater(t, res.Result.Metrics.ThroughputPerHour, 0.0,
			"%s produced no completions", res.Name)
		tp[i] = res.Result.Metrics.ThroughputPerHour
	}

	// THEN adding workers never meaningfully hurts
	for i := 1; i < len(tp); i++ {
		assert.GreaterOrEqual(t, tp[i], 0.7*tp[i-1],
			"throughput collapsed between %s and %s", results[i-1].Name, results[i].Name)
	}

	// AND the congested low end sits clearly below the saturated high end
	assert.Greater(t, tp[len(tp)-1], 1.2*tp[0],
		"ten workers should beat three decisively: %v", tp)

	// AND once queueing is gone, extra workers change little
	lo, hi := tp[4], tp[4]
	for _, v := range tp[4:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	assert.LessOrEqual(t, hi, 1.35*lo, "no plateau past seven workers: %v", tp)

	// Completions follow the same shape
	c3 := results[0].Result.OrdersCompleted
	c10 := results[len(results)-1].Result.OrdersCompleted
	assert.GreaterOrEqual(t, c10, c3)
}
