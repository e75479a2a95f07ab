// Implements the simulation timeline: a priority queue of scheduled events
// with fully deterministic ordering.

package sim

import "container/heap"

// timelineKind classifies scheduled events for tie-breaking at equal
// timestamps.
type timelineKind int

const (
	kindReplenish timelineKind = iota
	kindTimer
	kindGrant
	kindArrival
	kindSync
)

// timelineKindPriority fixes processing order at equal timestamps: restocks
// land before the timers and grants that may consume them, arrivals after
// in-flight work, synchronization passes last.
var timelineKindPriority = map[timelineKind]int{
	kindReplenish: 0,
	kindTimer:     1,
	kindGrant:     2,
	kindArrival:   3,
	kindSync:      4,
}

// simEvent is a scheduled occurrence on the simulation timeline. Distinct
// from Event, which is the recorded log entry a simEvent may produce.
type simEvent interface {
	when() float64
	seq() uint64
	kind() timelineKind
	execute(*Simulator)
}

// baseEvent provides the common scheduling fields. The id is assigned from a
// per-simulator counter so identically configured runs number their events
// identically.
type baseEvent struct {
	at float64
	id uint64
	k  timelineKind
}

func (e *baseEvent) when() float64      { return e.at }
func (e *baseEvent) seq() uint64        { return e.id }
func (e *baseEvent) kind() timelineKind { return e.k }

// timerEvent resumes a suspended activity after a sampled duration. The
// closure carries the activity's continuation.
type timerEvent struct {
	baseEvent
	fn func(*Simulator)
}

func (e *timerEvent) execute(s *Simulator) { e.fn(s) }

// grantEvent hands a reserved resource unit to the waiter that was at the
// head of a pool's FIFO queue. The unit was already debited from the pool
// when this event was scheduled.
type grantEvent struct {
	baseEvent
	pool    *Pool
	orderID string
	fn      func(*Simulator)
}

func (e *grantEvent) execute(s *Simulator) {
	e.pool.traceGrant(s, e.orderID)
	e.fn(s)
}

// eventHeap is a priority queue with deterministic ordering:
// timestamp, then kind priority, then event id.
type eventHeap struct {
	events []simEvent
}

func newEventHeap() *eventHeap {
	h := &eventHeap{events: make([]simEvent, 0)}
	heap.Init(h)
	return h
}

func (h *eventHeap) Len() int { return len(h.events) }

func (h *eventHeap) Less(i, j int) bool {
	ei, ej := h.events[i], h.events[j]

	if ei.when() != ej.when() {
		return ei.when() < ej.when()
	}

	priI := timelineKindPriority[ei.kind()]
	priJ := timelineKindPriority[ej.kind()]
	if priI != priJ {
		return priI < priJ
	}

	return ei.seq() < ej.seq()
}

func (h *eventHeap) Swap(i, j int) {
	h.events[i], h.events[j] = h.events[j], h.events[i]
}

func (h *eventHeap) Push(x interface{}) {
	h.events = append(h.events, x.(simEvent))
}

func (h *eventHeap) Pop() interface{} {
	old := h.events
	n := len(old)
	item := old[n-1]
	h.events = old[0 : n-1]
	return item
}

// Schedule adds an event to the heap.
func (h *eventHeap) Schedule(e simEvent) {
	heap.Push(h, e)
}

// PopNext removes and returns the next event, or nil when empty.
func (h *eventHeap) PopNext() simEvent {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(simEvent)
}

// Peek returns the next event without removing it, or nil when empty.
func (h *eventHeap) Peek() simEvent {
	if h.Len() == 0 {
		return nil
	}
	return h.events[0]
}
