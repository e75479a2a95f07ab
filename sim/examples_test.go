package sim

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExampleScenarios_WhatIfStaffing verifies that what-if-staffing.yaml
// loads, validates, and carries the expected staffing scenarios.
func TestExampleScenarios_WhatIfStaffing(t *testing.T) {
	// GIVEN the what-if-staffing.yaml example file
	path := filepath.Join("..", "examples", "what-if-staffing.yaml")
	bundle, err := LoadScenarioBundle(path)
	require.NoError(t, err, "failed to load what-if-staffing.yaml")

	// THEN validation passes
	require.NoError(t, bundle.Validate(), "validation failed")

	// THEN the baseline pins the arrival rate
	assert.Equal(t, 5.0, bundle.Baseline["order_arrival_rate"])

	// THEN the three staffing scenarios are present with their overrides
	require.Len(t, bundle.Scenarios, 3, "expected 3 scenarios")

	byName := make(map[string]map[string]float64)
	for _, sc := range bundle.Scenarios {
		byName[sc.Name] = sc.Overrides
	}

	assert.Equal(t, 6.0, byName["extra-picker"]["num_workers"])
	assert.Equal(t, 1.5, byName["faster-picks"]["pick_time_mean"])
	assert.Equal(t, 12.0, byName["holiday-surge"]["order_arrival_rate"])
	assert.Equal(t, 8.0, byName["holiday-surge"]["num_workers"])

	// THEN no sweep is defined in this bundle
	assert.Nil(t, bundle.Sweep)
}

// TestExampleScenarios_SweepWorkers verifies that sweep-workers.yaml loads
// and resolves to the 3..10 worker grid.
func TestExampleScenarios_SweepWorkers(t *testing.T) {
	// GIVEN the sweep-workers.yaml example file
	path := filepath.Join("..", "examples", "sweep-workers.yaml")
	bundle, err := LoadScenarioBundle(path)
	require.NoError(t, err, "failed to load sweep-workers.yaml")

	// THEN validation passes
	require.NoError(t, bundle.Validate(), "validation failed")

	// THEN the sweep targets the worker pool
	require.NotNil(t, bundle.Sweep)
	assert.Equal(t, "num_workers", bundle.Sweep.Parameter)

	// THEN the range resolves to one point per worker count
	assert.Equal(t, []float64{3, 4, 5, 6, 7, 8, 9, 10}, bundle.Sweep.Points())
}

func TestScenarioBundle_ValidateRejectsUnknownOverride(t *testing.T) {
	bundle := &ScenarioBundle{Scenarios: []ScenarioSpec{
		{Name: "typo", Overrides: map[string]float64{"num_wrokers": 5}},
	}}

	err := bundle.Validate()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownParameter)
}

func TestScenarioBundle_ValidateRejectsDuplicateNames(t *testing.T) {
	bundle := &ScenarioBundle{Scenarios: []ScenarioSpec{
		{Name: "twice"},
		{Name: "twice"},
	}}

	require.Error(t, bundle.Validate())
}

func TestSweepSpec_RangeNeedsAtLeastTwoSteps(t *testing.T) {
	bundle := &ScenarioBundle{Sweep: &SweepSpec{
		Parameter: "num_workers", From: 3, To: 10, Steps: 1,
	}}

	require.Error(t, bundle.Validate())
}

func TestSweepSpec_ExplicitValuesWinOverRange(t *testing.T) {
	sw := &SweepSpec{Parameter: "num_workers", Values: []float64{2, 4, 8}}

	require.NoError(t, sw.validate())
	assert.Equal(t, []float64{2, 4, 8}, sw.Points())
}
