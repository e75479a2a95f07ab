// Defines the Order struct that models a fulfillment order in the simulation.
// Tracks ordered lines, status, and per-stage timestamps for metrics and
// calibration.

package sim

import (
	"fmt"
	"time"
)

// OrderStatus represents the lifecycle state of an order. Transitions follow
// the fixed sequence below with no skips and no backward moves.
type OrderStatus string

const (
	StatusReceived  OrderStatus = "RECEIVED"
	StatusPicking   OrderStatus = "PICKING"
	StatusPicked    OrderStatus = "PICKED"
	StatusPacking   OrderStatus = "PACKING"
	StatusPacked    OrderStatus = "PACKED"
	StatusShipping  OrderStatus = "SHIPPING"
	StatusCompleted OrderStatus = "COMPLETED"
)

// statusRank orders the lifecycle sequence for transition checking.
var statusRank = map[OrderStatus]int{
	StatusReceived:  0,
	StatusPicking:   1,
	StatusPicked:    2,
	StatusPacking:   3,
	StatusPacked:    4,
	StatusShipping:  5,
	StatusCompleted: 6,
}

// unsetStamp marks a per-stage timestamp that has not been written yet.
// Simulated time starts at 0, so any negative value is safe as a sentinel.
const unsetStamp = -1.0

// OrderLine is a single SKU demand within an order.
type OrderLine struct {
	SKU            string `json:"sku"`
	Quantity       int    `json:"quantity"`
	PickedQuantity int    `json:"picked_quantity"`
	Location       string `json:"location"`
}

// Order is a warehouse order moving through picking, packing, and shipping.
// Created by the arrival generator (or ingested from the ERP), mutated only
// by the lifecycle machine, discarded after metrics are recorded.
type Order struct {
	ID         string       `json:"order_id"`
	CustomerID string       `json:"customer_id"`
	Lines      []*OrderLine `json:"lines"`
	Status     OrderStatus  `json:"status"`

	// Priority 1=low .. 5=high. Affects nothing inside a run: resource pools
	// are strictly FIFO (see Pool). Carried for reporting and ERP round-trips.
	Priority int `json:"priority"`

	// RequiresTransport is set when the order's total unit count exceeds the
	// configured hand-carry limit; such orders need a forklift per line pick.
	RequiresTransport bool `json:"requires_transport"`

	CreatedAt   float64 `json:"created_at"`   // simulated minutes
	CompletedAt float64 `json:"completed_at"` // simulated minutes, unsetStamp until done

	CreatedWall   time.Time `json:"created_wall"`
	CompletedWall time.Time `json:"completed_wall"`

	// Per-stage simulated timestamps, written exactly once each.
	PickStart float64 `json:"pick_start_time"`
	PickEnd   float64 `json:"pick_end_time"`
	PackStart float64 `json:"pack_start_time"`
	PackEnd   float64 `json:"pack_end_time"`
	ShipStart float64 `json:"ship_start_time"`
	ShipEnd   float64 `json:"ship_end_time"`
}

// NewOrder constructs an order in RECEIVED state with all stage stamps unset.
func NewOrder(id, customerID string, lines []*OrderLine, priority int, createdAt float64) *Order {
	return &Order{
		ID:          id,
		CustomerID:  customerID,
		Lines:       lines,
		Status:      StatusReceived,
		Priority:    priority,
		CreatedAt:   createdAt,
		CompletedAt: unsetStamp,
		CreatedWall: time.Now(),
		PickStart:   unsetStamp,
		PickEnd:     unsetStamp,
		PackStart:   unsetStamp,
		PackEnd:     unsetStamp,
		ShipStart:   unsetStamp,
		ShipEnd:     unsetStamp,
	}
}

// TotalItems returns the total unit count across all lines.
func (o *Order) TotalItems() int {
	total := 0
	for _, line := range o.Lines {
		total += line.Quantity
	}
	return total
}

// PickedItems returns the unit count actually picked so far.
func (o *Order) PickedItems() int {
	picked := 0
	for _, line := range o.Lines {
		picked += line.PickedQuantity
	}
	return picked
}

// IsFullyPicked reports whether every line was picked in full.
func (o *Order) IsFullyPicked() bool {
	for _, line := range o.Lines {
		if line.PickedQuantity < line.Quantity {
			return false
		}
	}
	return true
}

// transitionTo moves the order to next and stamps the stage boundary at now.
// The sequence is a local invariant: a skip or backward move is a programming
// error, not a recoverable condition, so it panics.
func (o *Order) transitionTo(next OrderStatus, now float64) {
	fromRank, ok := statusRank[o.Status]
	if !ok {
		panic(fmt.Sprintf("order %s: unknown status %q", o.ID, o.Status))
	}
	toRank, ok := statusRank[next]
	if !ok {
		panic(fmt.Sprintf("order %s: unknown target status %q", o.ID, next))
	}
	if toRank != fromRank+1 {
		panic(fmt.Sprintf("order %s: illegal transition %s -> %s", o.ID, o.Status, next))
	}
	o.Status = next

	switch next {
	case StatusPicking:
		o.stamp(&o.PickStart, "pick_start", now)
	case StatusPicked:
		o.stamp(&o.PickEnd, "pick_end", now)
	case StatusPacking:
		o.stamp(&o.PackStart, "pack_start", now)
	case StatusPacked:
		o.stamp(&o.PackEnd, "pack_end", now)
	case StatusShipping:
		o.stamp(&o.ShipStart, "ship_start", now)
	case StatusCompleted:
		o.stamp(&o.ShipEnd, "ship_end", now)
		o.CompletedAt = now
		o.CompletedWall = time.Now()
	}
}

// stamp writes a stage timestamp exactly once.
func (o *Order) stamp(target *float64, name string, now float64) {
	if *target != unsetStamp {
		panic(fmt.Sprintf("order %s: stamp %s written twice", o.ID, name))
	}
	*target = now
}

func (o *Order) String() string {
	return fmt.Sprintf("Order(ID: %s, Status: %s, Lines: %d, TotalItems: %d)",
		o.ID, o.Status, len(o.Lines), o.TotalItems())
}
