// Implements the Pool, a finite-capacity resource with FIFO granting.
// Workers and forklifts are the two pools every order activity contends for.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// waiter is a parked acquisition request: the continuation to run once a
// unit frees up, tagged with the holder for tracing.
type waiter struct {
	orderID string
	fn      func(*Simulator)
}

// Pool is a bounded set of interchangeable resource units. Requests are
// granted strictly first-come-first-served: an order's priority never jumps
// the queue. Grants are delivered through the event heap at the current
// clock, so a release never runs another activity's code inline.
type Pool struct {
	name     string
	capacity int
	free     int
	waiters  []waiter

	assignKind  EventKind
	releaseKind EventKind

	// busy-time integral for utilization metrics
	busyMinutes float64
	lastChange  float64
}

// NewPool creates a pool of capacity identical units. The two event kinds
// are recorded on grant and release when detailed tracing is enabled.
func NewPool(name string, capacity int, assignKind, releaseKind EventKind) *Pool {
	if capacity < 1 {
		panic(fmt.Sprintf("pool %s: capacity must be >= 1, got %d", name, capacity))
	}
	return &Pool{
		name:        name,
		capacity:    capacity,
		free:        capacity,
		assignKind:  assignKind,
		releaseKind: releaseKind,
	}
}

// Name returns the pool's name ("worker", "forklift").
func (p *Pool) Name() string { return p.name }

// Capacity returns the pool's unit count.
func (p *Pool) Capacity() int { return p.capacity }

// Busy returns the number of units currently allocated, including units
// reserved for grants still in flight on the heap.
func (p *Pool) Busy() int { return p.capacity - p.free }

// Waiting returns the number of parked requests. A run ending with waiters
// is a reportable outcome, not an error.
func (p *Pool) Waiting() int { return len(p.waiters) }

// Request asks for one unit on behalf of orderID. The continuation fn runs
// once the unit is granted, at the simulated time of the grant. If no unit
// is free the request joins the FIFO queue.
func (p *Pool) Request(s *Simulator, orderID string, fn func(*Simulator)) {
	if p.free > 0 {
		p.accrue(s.Clock)
		p.free--
		s.schedule(&grantEvent{
			baseEvent: s.newBase(s.Clock, kindGrant),
			pool:      p,
			orderID:   orderID,
			fn:        fn,
		})
		return
	}
	p.waiters = append(p.waiters, waiter{orderID: orderID, fn: fn})
	logrus.Debugf("pool %s: %s waiting (%d queued)", p.name, orderID, len(p.waiters))
}

// Release returns orderID's unit. If anyone is waiting the unit is handed
// straight to the oldest waiter; the pool's busy count does not change in
// that case.
func (p *Pool) Release(s *Simulator, orderID string) {
	p.traceRelease(s, orderID)
	if len(p.waiters) > 0 {
		next := p.waiters[0]
		p.waiters = p.waiters[1:]
		s.schedule(&grantEvent{
			baseEvent: s.newBase(s.Clock, kindGrant),
			pool:      p,
			orderID:   next.orderID,
			fn:        next.fn,
		})
		return
	}
	if p.free == p.capacity {
		panic(fmt.Sprintf("pool %s: release by %s with no unit held", p.name, orderID))
	}
	p.accrue(s.Clock)
	p.free++
}

// accrue folds the busy-unit integral forward to now. Called before every
// busy-count change and once more at the end of the run.
func (p *Pool) accrue(now float64) {
	p.busyMinutes += float64(p.Busy()) * (now - p.lastChange)
	p.lastChange = now
}

// Utilization returns mean busy fraction over elapsed simulated minutes.
func (p *Pool) Utilization(elapsed float64) float64 {
	if elapsed <= 0 {
		return 0
	}
	return p.busyMinutes / (float64(p.capacity) * elapsed)
}

func (p *Pool) finish(now float64) {
	p.accrue(now)
}

func (p *Pool) traceGrant(s *Simulator, orderID string) {
	logrus.Debugf("pool %s: granted to %s at %.2f", p.name, orderID, s.Clock)
	if !s.Config.DetailedTracing {
		return
	}
	s.Recorder.Record(p.assignKind, s.Clock, map[string]any{
		"order_id": orderID,
		"resource": p.name,
		"sim_time": s.Clock,
	})
}

func (p *Pool) traceRelease(s *Simulator, orderID string) {
	if !s.Config.DetailedTracing {
		return
	}
	s.Recorder.Record(p.releaseKind, s.Clock, map[string]any{
		"order_id": orderID,
		"resource": p.name,
		"sim_time": s.Clock,
	})
}
