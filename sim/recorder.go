package sim

import (
	"fmt"
	"time"
)

// Recorder is the bounded, append-only event log feeding synchronization and
// calibration. Once full, the oldest entry is evicted for each append: the
// buffer is a sampling window over recent history, and Dropped reports how
// much history fell out of it.
type Recorder struct {
	buf      []Event
	capacity int
	start    int
	count    int
	seq      int64
	dropped  int64
}

// NewRecorder creates a recorder holding at most capacity events.
func NewRecorder(capacity int) *Recorder {
	if capacity < 1 {
		panic(fmt.Sprintf("recorder capacity must be >= 1, got %d", capacity))
	}
	return &Recorder{
		buf:      make([]Event, capacity),
		capacity: capacity,
	}
}

// Record appends a simulation-sourced event and returns it. IDs are assigned
// from a monotonic counter that survives eviction.
func (r *Recorder) Record(kind EventKind, simTime float64, data map[string]any) Event {
	r.seq++
	e := Event{
		Seq:     r.seq,
		ID:      fmt.Sprintf("DT-%06d", r.seq),
		Kind:    kind,
		SimTime: simTime,
		Wall:    time.Now(),
		Source:  SourceSimulation,
		Data:    data,
	}
	r.append(e)
	return e
}

// Append stores an externally built event (for example one delivered by an
// ERP subscription) without reassigning its identity.
func (r *Recorder) Append(e Event) {
	r.append(e)
}

func (r *Recorder) append(e Event) {
	if r.count == r.capacity {
		r.buf[r.start] = e
		r.start = (r.start + 1) % r.capacity
		r.dropped++
		return
	}
	r.buf[(r.start+r.count)%r.capacity] = e
	r.count++
}

// Len returns the number of events currently buffered.
func (r *Recorder) Len() int {
	return r.count
}

// TotalRecorded returns how many simulation events were ever recorded,
// including evicted ones.
func (r *Recorder) TotalRecorded() int64 {
	return r.seq
}

// Dropped returns how many events eviction has discarded. Calibration uses
// this to warn when it is estimating from a gappy window.
func (r *Recorder) Dropped() int64 {
	return r.dropped
}

// Snapshot returns the buffered events oldest first. The slice is a copy;
// the caller may keep it across further appends.
func (r *Recorder) Snapshot() []Event {
	out := make([]Event, 0, r.count)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(r.start+i)%r.capacity])
	}
	return out
}
