package sim

import "time"

// EventKind tags a recorded warehouse event. Event payloads are free-form
// maps keyed by kind; the keys each kind carries are listed below.
type EventKind string

const (
	// EventOrderCreated carries the full order snapshot: order_id,
	// customer_id, priority, total_items, requires_transport.
	EventOrderCreated EventKind = "ORDER_CREATED"

	// EventOrderStatusChanged carries order_id, status, sim_time, and for
	// COMPLETED additionally total_time. Emitted once per status mutation.
	EventOrderStatusChanged EventKind = "ORDER_STATUS_CHANGED"

	// EventInventoryUpdated carries sku, change (signed delta), new_quantity,
	// and for replenishments reason="replenishment".
	EventInventoryUpdated EventKind = "INVENTORY_UPDATED"

	// EventWorkerAssigned / EventWorkerReleased trace worker pool grants.
	// Recorded only when Config.DetailedTracing is set.
	EventWorkerAssigned EventKind = "WORKER_ASSIGNED"
	EventWorkerReleased EventKind = "WORKER_RELEASED"

	// EventResourceAllocated / EventResourceReleased trace forklift pool
	// grants, with resource naming the pool. Recorded only under
	// DetailedTracing.
	EventResourceAllocated EventKind = "RESOURCE_ALLOCATED"
	EventResourceReleased  EventKind = "RESOURCE_RELEASED"

	// EventSyncRequest marks a periodic ERP synchronization pass and carries
	// sim_time, completed_orders, and the synced_orders cursor.
	EventSyncRequest EventKind = "SYNC_REQUEST"

	// EventCalibrationTrigger is the advisory emitted when measured drift
	// exceeds the configured threshold. Carries drift and threshold.
	EventCalibrationTrigger EventKind = "CALIBRATION_TRIGGER"
)

// Event sources.
const (
	SourceSimulation = "simulation"
	SourceERP        = "erp"
)

// Event is one entry in the synchronization log: every order and inventory
// mutation produces exactly one. Simulation-sourced events carry the
// simulated clock in SimTime; ERP-sourced events set SimTime to -1 and are
// ordered by Wall.
type Event struct {
	// Seq increases monotonically per recorder and never resets, even after
	// ring-buffer eviction.
	Seq  int64     `json:"seq"`
	ID   string    `json:"event_id"` // "DT-%06d" for simulation; ERP adapters prefix their own
	Kind EventKind `json:"event_type"`

	SimTime float64   `json:"sim_time"` // simulated minutes, -1 when not applicable
	Wall    time.Time `json:"timestamp"`

	Source string         `json:"source"`
	Data   map[string]any `json:"data"`
}

// minutes returns the event's position on a single comparable axis:
// simulated minutes for simulation events, wall-clock minutes for ERP
// events. Only differences between events of the same source are meaningful.
func (e Event) minutes() float64 {
	if e.Source == SourceERP || e.SimTime < 0 {
		return float64(e.Wall.UnixNano()) / float64(time.Minute)
	}
	return e.SimTime
}
