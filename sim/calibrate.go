// Calibration infers timing parameters from recorded events by measuring
// the spans between lifecycle stage boundaries: creation to PICKED, PICKED
// to PACKED, PACKED to COMPLETED. The estimates can be applied back onto a
// Config through the same schema scenario overrides use.

package sim

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// fallbackStd stands in for a spread estimate when a stage has fewer than
// two samples.
const fallbackStd = 0.5

// CalibrationResult carries the estimated parameters plus enough counts to
// judge how much evidence backs them.
type CalibrationResult struct {
	// Params holds estimates keyed by tunable-parameter name, ready for
	// ApplyParams. Stages with no samples contribute no keys.
	Params map[string]float64 `json:"params"`

	Orders      int `json:"orders"`
	PickSamples int `json:"pick_samples"`
	PackSamples int `json:"pack_samples"`
	ShipSamples int `json:"ship_samples"`

	// Gaps counts stage boundaries whose predecessor boundary was missing
	// from the log, typically because the ring buffer evicted it.
	Gaps int `json:"gaps"`
}

type stageStamps struct {
	created, picked, packed          float64
	hasCreated, hasPicked, hasPacked bool
}

// Calibrate estimates timing parameters from an ordered event log. Events
// other than order creations and status changes are ignored. The log may
// mix simulation and ERP events; timestamps are normalized to minutes.
func Calibrate(events []Event) CalibrationResult {
	res := CalibrationResult{Params: map[string]float64{}}
	stamps := map[string]*stageStamps{}
	var pickDurs, packDurs, shipDurs []float64

	for i := range events {
		e := &events[i]
		oid, _ := e.Data["order_id"].(string)
		if oid == "" {
			continue
		}
		t := e.minutes()

		switch e.Kind {
		case EventOrderCreated:
			res.Orders++
			stamps[oid] = &stageStamps{created: t, hasCreated: true}

		case EventOrderStatusChanged:
			st := stamps[oid]
			if st == nil {
				st = &stageStamps{}
				stamps[oid] = st
			}
			status, _ := e.Data["status"].(string)
			switch OrderStatus(status) {
			case StatusPicked:
				if st.hasCreated {
					pickDurs = append(pickDurs, t-st.created)
				} else {
					res.Gaps++
				}
				st.picked, st.hasPicked = t, true
			case StatusPacked:
				if st.hasPicked {
					packDurs = append(packDurs, t-st.picked)
				} else {
					res.Gaps++
				}
				st.packed, st.hasPacked = t, true
			case StatusCompleted:
				if st.hasPacked {
					shipDurs = append(shipDurs, t-st.packed)
				} else {
					res.Gaps++
				}
			}
		}
	}

	res.PickSamples = estimateStage(res.Params, "pick_time_mean", "pick_time_std", pickDurs)
	res.PackSamples = estimateStage(res.Params, "pack_time_mean", "pack_time_std", packDurs)
	res.ShipSamples = estimateStage(res.Params, "ship_time_mean", "ship_time_std", shipDurs)
	return res
}

func estimateStage(params map[string]float64, meanKey, stdKey string, durs []float64) int {
	if len(durs) == 0 {
		return 0
	}
	params[meanKey] = stat.Mean(durs, nil)
	if len(durs) > 1 {
		params[stdKey] = stat.StdDev(durs, nil)
	} else {
		params[stdKey] = fallbackStd
	}
	return len(durs)
}

// Calibrate runs calibration over this simulator's recorded events,
// restricted to the most recent CalibrationWindow orders. Evictions and
// boundary gaps are surfaced as warnings because both silently bias the
// estimates toward recent, complete orders.
func (s *Simulator) Calibrate() CalibrationResult {
	events := s.Recorder.Snapshot()
	if dropped := s.Recorder.Dropped(); dropped > 0 {
		logrus.Warnf("calibrating from a truncated log: %d events were evicted", dropped)
	}

	res := Calibrate(windowByOrder(events, s.Config.CalibrationWindow))
	if res.Gaps > 0 {
		logrus.Warnf("calibration found %d stage boundaries with no predecessor", res.Gaps)
	}
	return res
}

// windowByOrder keeps only events belonging to the last n created orders.
// Events carrying no order ID are dropped; calibration has no use for them.
func windowByOrder(events []Event, n int) []Event {
	var created []string
	for i := range events {
		if events[i].Kind == EventOrderCreated {
			if oid, _ := events[i].Data["order_id"].(string); oid != "" {
				created = append(created, oid)
			}
		}
	}
	if len(created) > n {
		created = created[len(created)-n:]
	}
	allowed := make(map[string]struct{}, len(created))
	for _, oid := range created {
		allowed[oid] = struct{}{}
	}

	out := make([]Event, 0, len(events))
	for i := range events {
		oid, _ := events[i].Data["order_id"].(string)
		if _, ok := allowed[oid]; ok {
			out = append(out, events[i])
		}
	}
	return out
}

// ApplyCalibration returns a copy of cfg updated with the calibrated
// estimates. cfg is never mutated; an estimate that fails validation
// leaves the baseline untouched and reports the error.
func ApplyCalibration(cfg Config, res CalibrationResult) (Config, error) {
	return ApplyParams(cfg, res.Params)
}
