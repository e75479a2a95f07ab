package sim

import (
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Metrics accumulates per-run statistics while the simulation executes.
// It keeps raw sample sequences so that a Snapshot can derive aggregates
// once at the end instead of maintaining running moments.
type Metrics struct {
	orderTimes []float64
	pickTimes  []float64
	packTimes  []float64
	shipTimes  []float64

	ItemsPicked int
	LinesFailed int
	pickedValue decimal.Decimal
}

func NewMetrics() *Metrics {
	return &Metrics{pickedValue: decimal.Zero}
}

// RecordOrderCompletion folds a completed order's timings into the sample
// sequences. Stage durations come from the order's stamps, so the caller
// must invoke this only after the COMPLETED transition.
func (m *Metrics) RecordOrderCompletion(o *Order, totalTime float64) {
	m.orderTimes = append(m.orderTimes, totalTime)
	m.pickTimes = append(m.pickTimes, o.PickEnd-o.PickStart)
	m.packTimes = append(m.packTimes, o.PackEnd-o.PackStart)
	m.shipTimes = append(m.shipTimes, o.ShipEnd-o.ShipStart)
	m.ItemsPicked += o.PickedItems()
}

func (m *Metrics) addPickedValue(unitCost decimal.Decimal, qty int) {
	m.pickedValue = m.pickedValue.Add(unitCost.Mul(decimal.NewFromInt(int64(qty))))
}

// MetricsSnapshot is the immutable end-of-run summary. All durations are in
// simulated minutes; throughput is 60 divided by the mean order time, the
// sustained orders-per-hour rate implied by observed cycle times.
type MetricsSnapshot struct {
	OrdersCompleted int `json:"orders_completed"`
	ItemsPicked     int `json:"items_picked"`
	LinesFailed     int `json:"lines_failed"`

	AvgOrderTime    float64 `json:"avg_order_time"`
	MedianOrderTime float64 `json:"median_order_time"`
	MinOrderTime    float64 `json:"min_order_time"`
	MaxOrderTime    float64 `json:"max_order_time"`
	StdOrderTime    float64 `json:"std_order_time"`

	AvgPickTime float64 `json:"avg_pick_time"`
	AvgPackTime float64 `json:"avg_pack_time"`
	AvgShipTime float64 `json:"avg_ship_time"`

	ThroughputPerHour   float64 `json:"throughput_per_hour"`
	WorkerUtilization   float64 `json:"worker_utilization"`
	ForkliftUtilization float64 `json:"forklift_utilization"`

	PickedValue decimal.Decimal `json:"picked_value"`
}

// Snapshot derives the summary for the elapsed simulated minutes. With no
// completed orders every aggregate is zero rather than NaN.
func (m *Metrics) Snapshot(elapsed float64, workers, forklifts *Pool) MetricsSnapshot {
	snap := MetricsSnapshot{
		OrdersCompleted:     len(m.orderTimes),
		ItemsPicked:         m.ItemsPicked,
		LinesFailed:         m.LinesFailed,
		AvgPickTime:         meanOrZero(m.pickTimes),
		AvgPackTime:         meanOrZero(m.packTimes),
		AvgShipTime:         meanOrZero(m.shipTimes),
		WorkerUtilization:   workers.Utilization(elapsed),
		ForkliftUtilization: forklifts.Utilization(elapsed),
		PickedValue:         m.pickedValue,
	}
	if len(m.orderTimes) == 0 {
		return snap
	}

	times := make([]float64, len(m.orderTimes))
	copy(times, m.orderTimes)
	sort.Float64s(times)

	snap.AvgOrderTime = stat.Mean(times, nil)
	snap.MedianOrderTime = medianSorted(times)
	snap.MinOrderTime = times[0]
	snap.MaxOrderTime = times[len(times)-1]
	if len(times) > 1 {
		snap.StdOrderTime = stat.StdDev(times, nil)
	}
	if snap.AvgOrderTime > 0 {
		snap.ThroughputPerHour = 60.0 / snap.AvgOrderTime
	}
	return snap
}

func meanOrZero(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// medianSorted returns the middle element of a sorted sample, averaging the
// two central elements when the length is even.
func medianSorted(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
