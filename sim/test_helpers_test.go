package sim

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

// quietConfig returns the default configuration with the arrival stream
// pushed far past any test horizon, so tests drive orders explicitly.
func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.OrderArrivalRate = 1e-9
	return cfg
}

// testInventory builds n identically stocked SKUs named SKU-0000..,
// following the mock catalog's aisle-shelf location scheme.
func testInventory(n, qty int) Inventory {
	inv := make(Inventory, n)
	for i := 0; i < n; i++ {
		sku := fmt.Sprintf("SKU-%04d", i)
		inv[sku] = &InventoryItem{
			SKU:      sku,
			Name:     fmt.Sprintf("item %d", i),
			Quantity: qty,
			Location: fmt.Sprintf("A-%02d-%02d", i/10, i%10),
			MinStock: 10,
			MaxStock: 100,
			UnitCost: decimal.NewFromInt(10),
		}
	}
	return inv
}

func newTestSim(t *testing.T, cfg Config, inv Inventory) *Simulator {
	t.Helper()
	s, err := NewSimulator(cfg)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	s.SetInventory(inv)
	return s
}

// eventsOfKind filters a snapshot down to one kind, preserving order.
func eventsOfKind(events []Event, kind EventKind) []Event {
	var out []Event
	for _, e := range events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// statusSequence extracts the ORDER_STATUS_CHANGED payloads for one order.
func statusSequence(events []Event, orderID string) []string {
	var out []string
	for _, e := range eventsOfKind(events, EventOrderStatusChanged) {
		if e.Data["order_id"] == orderID {
			out = append(out, e.Data["status"].(string))
		}
	}
	return out
}
