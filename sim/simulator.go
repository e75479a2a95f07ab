// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Simulator is the core object that holds simulated time, warehouse state,
// and the event loop. One Simulator executes one run; scenario runs build a
// fresh Simulator per configuration.
type Simulator struct {
	Config  Config
	Clock   float64 // simulated minutes
	Horizon float64

	RNG       *PartitionedRNG
	Workers   *Pool
	Forklifts *Pool
	Inventory Inventory
	Recorder  *Recorder
	Metrics   *Metrics

	// ActiveOrders holds orders that have entered the lifecycle and not yet
	// completed. CompletedOrders preserves completion order.
	ActiveOrders    map[string]*Order
	CompletedOrders []*Order

	service  DurationSampler
	arrivals ArrivalSampler

	erp             ERPSystem
	pendingOrders   []*Order
	syncedCompleted int

	heap     *eventHeap
	eventSeq uint64
	orderSeq int
	ran      bool

	// backorders parks pick lines waiting for restock, FIFO per SKU.
	backorders       map[string][]lineRef
	pendingReplenish map[string]bool
}

// NewSimulator validates cfg and builds a run-ready simulator with empty
// inventory. Attach inventory with SetInventory or AttachERP before Run.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		Config:           cfg,
		Horizon:          cfg.SimulationTime,
		RNG:              NewPartitionedRNG(NewSimulationKey(cfg.RandomSeed)),
		Workers:          NewPool("worker", cfg.NumWorkers, EventWorkerAssigned, EventWorkerReleased),
		Forklifts:        NewPool("forklift", cfg.NumForklifts, EventResourceAllocated, EventResourceReleased),
		Inventory:        make(Inventory),
		Recorder:         NewRecorder(cfg.EventBufferSize),
		Metrics:          NewMetrics(),
		ActiveOrders:     make(map[string]*Order),
		service:          TruncatedNormalSampler{},
		arrivals:         NewPoissonSampler(cfg.OrderArrivalRate),
		heap:             newEventHeap(),
		backorders:       make(map[string][]lineRef),
		pendingReplenish: make(map[string]bool),
	}
	return s, nil
}

// SetInventory hands the simulator its starting stock. The simulator takes
// ownership: pass a Clone if the caller keeps using the map.
func (s *Simulator) SetInventory(inv Inventory) {
	s.Inventory = inv
}

// newBase assigns the next event id. Ids are per-simulator so identically
// configured runs produce identical timelines.
func (s *Simulator) newBase(at float64, k timelineKind) baseEvent {
	s.eventSeq++
	return baseEvent{at: at, id: s.eventSeq, k: k}
}

func (s *Simulator) schedule(e simEvent) {
	s.heap.Schedule(e)
}

// after suspends the calling activity for delay minutes, then resumes it via
// fn. This is one of the two suspension points; the other is Pool.Request.
func (s *Simulator) after(delay float64, fn func(*Simulator)) {
	s.schedule(&timerEvent{baseEvent: s.newBase(s.Clock+delay, kindTimer), fn: fn})
}

// RunResult is the structured record returned for one full run. Formatting
// and export are downstream concerns.
type RunResult struct {
	Duration                float64         `json:"duration"`
	OrdersCompleted         int             `json:"orders_completed"`
	OrdersInProgress        int             `json:"orders_in_progress"`
	EventsRecorded          int64           `json:"events_recorded"`
	EventsDropped           int64           `json:"events_dropped"`
	PendingWorkerRequests   int             `json:"pending_worker_requests"`
	PendingForkliftRequests int             `json:"pending_forklift_requests"`
	Metrics                 MetricsSnapshot `json:"metrics"`
	FinalInventory          map[string]int  `json:"final_inventory"`
}

// Run executes the simulation until the horizon and returns the run record.
// Events scheduled at or past the horizon are never executed; in-flight
// orders at the cutoff are reported, not drained. Run may be called once.
func (s *Simulator) Run() RunResult {
	if s.ran {
		panic("Simulator.Run called twice; build a fresh Simulator per run")
	}
	s.ran = true

	logrus.Infof("starting simulation: horizon=%.1f %s, workers=%d, forklifts=%d, rate=%.1f/hr, seed=%d",
		s.Horizon, s.Config.TimeUnit, s.Config.NumWorkers, s.Config.NumForklifts,
		s.Config.OrderArrivalRate, s.Config.RandomSeed)

	// Orders already pending in the ERP enter the lifecycle at time zero,
	// ahead of the generated stream.
	for _, o := range s.pendingOrders {
		s.startOrder(o)
	}
	s.pendingOrders = nil

	s.scheduleNextArrival()

	if s.erp != nil && s.erp.Connected() && s.Config.ERPSyncInterval > 0 {
		s.schedule(&syncEvent{baseEvent: s.newBase(s.Config.ERPSyncInterval, kindSync)})
	}

	for s.heap.Len() > 0 {
		ev := s.heap.PopNext()
		if ev.when() >= s.Horizon {
			break
		}
		if ev.when() < s.Clock {
			panic(fmt.Sprintf("event at %.4f scheduled before clock %.4f", ev.when(), s.Clock))
		}
		s.Clock = ev.when()
		ev.execute(s)
	}
	s.Clock = s.Horizon
	s.Workers.finish(s.Clock)
	s.Forklifts.finish(s.Clock)

	logrus.Infof("simulation ended at %.1f: %d completed, %d in progress",
		s.Clock, len(s.CompletedOrders), len(s.ActiveOrders))

	return RunResult{
		Duration:                s.Horizon,
		OrdersCompleted:         len(s.CompletedOrders),
		OrdersInProgress:        len(s.ActiveOrders),
		EventsRecorded:          s.Recorder.TotalRecorded(),
		EventsDropped:           s.Recorder.Dropped(),
		PendingWorkerRequests:   s.Workers.Waiting(),
		PendingForkliftRequests: s.Forklifts.Waiting(),
		Metrics:                 s.Metrics.Snapshot(s.Clock, s.Workers, s.Forklifts),
		FinalInventory:          s.Inventory.Quantities(),
	}
}
