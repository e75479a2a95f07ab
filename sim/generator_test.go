package sim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnOrder_DrawsAreWellFormed(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestSim(t, cfg, testInventory(30, 50))

	for i := 0; i < 200; i++ {
		o := s.spawnOrder()
		require.NotNil(t, o)

		assert.True(t, strings.HasPrefix(o.ID, "SIM-"), "order id %q", o.ID)
		assert.True(t, strings.HasPrefix(o.CustomerID, "CUST-"), "customer id %q", o.CustomerID)
		assert.GreaterOrEqual(t, o.Priority, 1)
		assert.LessOrEqual(t, o.Priority, 5)
		assert.GreaterOrEqual(t, len(o.Lines), 1)
		assert.LessOrEqual(t, len(o.Lines), 30)

		seen := map[string]bool{}
		for _, line := range o.Lines {
			assert.GreaterOrEqual(t, line.Quantity, 1)
			assert.LessOrEqual(t, line.Quantity, 3)
			assert.False(t, seen[line.SKU], "SKU %s drawn twice in one order", line.SKU)
			seen[line.SKU] = true

			item, ok := s.Inventory[line.SKU]
			require.True(t, ok, "order references unknown SKU %s", line.SKU)
			assert.Equal(t, item.Location, line.Location)
		}
	}
}

func TestSpawnOrder_SequentialIDs(t *testing.T) {
	cfg := DefaultConfig()
	s := newTestSim(t, cfg, testInventory(5, 50))

	o1 := s.spawnOrder()
	o2 := s.spawnOrder()

	assert.Equal(t, "SIM-000001", o1.ID)
	assert.Equal(t, "SIM-000002", o2.ID)
}

func TestSpawnOrder_EmptyStockSkipsButCountsArrival(t *testing.T) {
	// GIVEN nothing in stock
	cfg := DefaultConfig()
	s := newTestSim(t, cfg, testInventory(2, 0))

	// WHEN an arrival lands
	o := s.spawnOrder()

	// THEN no order is produced, but the arrival still consumed an ID:
	// IDs number arrivals, not admissions
	assert.Nil(t, o)

	s.Inventory["SKU-0000"].Quantity = 10
	next := s.spawnOrder()
	require.NotNil(t, next)
	assert.Equal(t, "SIM-000002", next.ID)
}

func TestSpawnOrder_LineCountCappedByAvailability(t *testing.T) {
	// With a single in-stock SKU every order collapses to one line
	cfg := DefaultConfig()
	cfg.ItemsPerOrderMean = 10
	s := newTestSim(t, cfg, testInventory(1, 50))

	for i := 0; i < 50; i++ {
		o := s.spawnOrder()
		require.NotNil(t, o)
		assert.Len(t, o.Lines, 1)
	}
}

func TestSpawnOrder_DeterministicAcrossSimulators(t *testing.T) {
	// Two simulators with the same seed draw identical orders
	cfg := DefaultConfig()
	s1 := newTestSim(t, cfg, testInventory(20, 50))
	s2 := newTestSim(t, cfg, testInventory(20, 50))

	for i := 0; i < 50; i++ {
		o1 := s1.spawnOrder()
		o2 := s2.spawnOrder()
		require.NotNil(t, o1)
		require.NotNil(t, o2)

		assert.Equal(t, o1.ID, o2.ID)
		assert.Equal(t, o1.CustomerID, o2.CustomerID)
		assert.Equal(t, o1.Priority, o2.Priority)
		require.Equal(t, len(o1.Lines), len(o2.Lines))
		for j := range o1.Lines {
			assert.Equal(t, *o1.Lines[j], *o2.Lines[j])
		}
	}
}

func TestArrivalStream_RateShapesVolume(t *testing.T) {
	// GIVEN a 8-hour horizon at 5 orders/hour
	cfg := DefaultConfig()
	s := newTestSim(t, cfg, testInventory(50, 100))

	// WHEN the simulation runs on arrivals alone
	s.Run()

	// THEN the creation count lands in a loose Poisson band around 40
	created := len(eventsOfKind(s.Recorder.Snapshot(), EventOrderCreated))
	assert.Greater(t, created, 15)
	assert.Less(t, created, 75)
}
