package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stripWall clears wall-clock stamps so two runs can be compared on their
// simulated timelines alone.
func stripWall(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	for i := range out {
		out[i].Wall = time.Time{}
	}
	return out
}

func TestSimulator_ReferenceShiftHour(t *testing.T) {
	// GIVEN one hour of the reference shift: three workers, one forklift,
	// five orders an hour
	cfg := DefaultConfig()
	cfg.SimulationTime = 60
	cfg.NumWorkers = 3
	cfg.NumForklifts = 1
	cfg.OrderArrivalRate = 5.0
	cfg.RandomSeed = 42
	s := newTestSim(t, cfg, testInventory(20, 50))

	res := s.Run()

	// THEN the volume is consistent with the arrival rate
	assert.GreaterOrEqual(t, res.OrdersCompleted, 0)
	assert.LessOrEqual(t, res.OrdersCompleted, 15)
	assert.Equal(t, 60.0, s.Clock)
	assert.Equal(t, res.OrdersCompleted, len(s.CompletedOrders))
	assert.Greater(t, res.EventsRecorded, int64(0))

	// AND every completed order carries a coherent timing profile
	for _, o := range s.CompletedOrders {
		assert.Equal(t, StatusCompleted, o.Status, "order %s", o.ID)
		assert.True(t, o.IsFullyPicked(), "order %s left stock behind", o.ID)
		assert.GreaterOrEqual(t, o.PickStart, o.CreatedAt, "order %s", o.ID)
		assert.GreaterOrEqual(t, o.PickEnd, o.PickStart, "order %s", o.ID)
		assert.GreaterOrEqual(t, o.CompletedAt, o.PickEnd, "order %s", o.ID)
	}
}

func TestSimulator_SameSeedSameTimeline(t *testing.T) {
	// Two simulators built from the same config and stock must agree on
	// every event and every metric.
	run := func() ([]Event, RunResult) {
		cfg := DefaultConfig()
		cfg.SimulationTime = 240
		s := newTestSim(t, cfg, testInventory(12, 60))
		res := s.Run()
		return stripWall(s.Recorder.Snapshot()), res
	}

	eventsA, resA := run()
	eventsB, resB := run()

	require.Equal(t, len(eventsA), len(eventsB))
	assert.Equal(t, eventsA, eventsB)
	assert.Equal(t, resA, resB)
}

func TestSimulator_DifferentSeedsDiverge(t *testing.T) {
	run := func(seed int64) []Event {
		cfg := DefaultConfig()
		cfg.SimulationTime = 120
		cfg.RandomSeed = seed
		s := newTestSim(t, cfg, testInventory(12, 60))
		s.Run()
		return stripWall(s.Recorder.Snapshot())
	}

	assert.NotEqual(t, run(42), run(43))
}

func TestSimulator_RunTwicePanics(t *testing.T) {
	s := newTestSim(t, quietConfig(), testInventory(1, 10))
	s.Run()

	assert.Panics(t, func() { s.Run() })
}

func TestSimulator_StockNeverGoesNegative(t *testing.T) {
	policies := map[string]func(*Config){
		"fail-line": func(c *Config) { c.Shortfall = ShortfallFailLine },
		"backorder": func(c *Config) {
			c.Shortfall = ShortfallBackorder
			c.ReplenishLeadTime = 15
		},
	}
	for name, tweak := range policies {
		t.Run(name, func(t *testing.T) {
			// Shallow stock under a heavy arrival stream forces shortfalls
			cfg := DefaultConfig()
			cfg.SimulationTime = 240
			cfg.OrderArrivalRate = 20.0
			tweak(&cfg)
			s := newTestSim(t, cfg, testInventory(10, 8))

			s.Run()

			for sku, item := range s.Inventory {
				assert.GreaterOrEqual(t, item.Quantity, 0, "sku %s", sku)
			}
			for _, e := range eventsOfKind(s.Recorder.Snapshot(), EventInventoryUpdated) {
				assert.GreaterOrEqual(t, e.Data["new_quantity"].(int), 0,
					"event %s drove %v negative", e.ID, e.Data["sku"])
			}
		})
	}
}

func TestSimulator_TimelineStopsAtHorizon(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SimulationTime = 90
	s := newTestSim(t, cfg, testInventory(10, 50))

	s.Run()

	assert.Equal(t, 90.0, s.Clock)
	last := 0.0
	for _, e := range s.Recorder.Snapshot() {
		assert.Less(t, e.SimTime, 90.0, "event %s executed past the horizon", e.ID)
		assert.GreaterOrEqual(t, e.SimTime, last, "event %s recorded out of order", e.ID)
		last = e.SimTime
	}
}

func TestNewSimulator_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumWorkers = 0

	_, err := NewSimulator(cfg)

	require.Error(t, err)
}

func TestSimulator_ResultCountsAddUp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SimulationTime = 180
	s := newTestSim(t, cfg, testInventory(12, 60))

	res := s.Run()

	created := eventsOfKind(s.Recorder.Snapshot(), EventOrderCreated)
	assert.Equal(t, len(created), res.OrdersCompleted+res.OrdersInProgress,
		"every created order is either done or in flight")
	assert.Equal(t, int64(s.Recorder.Len())+res.EventsDropped, res.EventsRecorded)
}
