package sim

import (
	"github.com/sirupsen/logrus"
)

// ComputeDrift scores the divergence between two inventory states as a value
// in [0, 1]: 0 means identical quantities for every SKU, 1 means the states
// share nothing. The score is the summed absolute per-SKU difference over the
// summed per-SKU magnitude, taken across the union of SKUs so that stock
// present on only one side counts fully against agreement.
func ComputeDrift(sim, reported map[string]int) float64 {
	skus := make(map[string]struct{}, len(sim)+len(reported))
	for sku := range sim {
		skus[sku] = struct{}{}
	}
	for sku := range reported {
		skus[sku] = struct{}{}
	}
	if len(skus) == 0 {
		return 0.0
	}

	totalDiff := 0
	totalMag := 0
	for sku := range skus {
		sq := sim[sku]
		rq := reported[sku]
		d := sq - rq
		if d < 0 {
			d = -d
		}
		totalDiff += d
		mag := sq
		if rq > mag {
			mag = rq
		}
		if mag < 1 {
			mag = 1
		}
		totalMag += mag
	}

	drift := float64(totalDiff) / float64(totalMag)
	if drift < 0 {
		return 0.0
	}
	if drift > 1 {
		return 1.0
	}
	return drift
}

// CheckDrift compares simulated inventory against what the attached ERP
// reports and records a CALIBRATION_TRIGGER when the score exceeds the
// configured threshold. An absent or unreachable ERP scores maximal drift:
// a state that cannot be confirmed is a state that cannot be trusted.
func (s *Simulator) CheckDrift() float64 {
	if s.erp == nil || !s.erp.Connected() {
		return 1.0
	}
	reported, err := s.erp.FetchInventory()
	if err != nil {
		logrus.Warnf("[%8.2f] drift check: inventory fetch failed: %v", s.Clock, err)
		return 1.0
	}

	drift := ComputeDrift(s.Inventory.Quantities(), reported.Quantities())
	if drift > s.Config.SyncThreshold {
		logrus.Warnf("[%8.2f] inventory drift %.4f exceeds threshold %.4f",
			s.Clock, drift, s.Config.SyncThreshold)
		s.Recorder.Record(EventCalibrationTrigger, s.Clock, map[string]any{
			"drift":     drift,
			"threshold": s.Config.SyncThreshold,
			"sim_time":  s.Clock,
		})
	}
	return drift
}
