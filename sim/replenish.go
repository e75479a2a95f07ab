// Stock replenishment: when picking drives an item below its MinStock, a
// restock to MaxStock arrives after the configured lead time. At most one
// replenishment per SKU is outstanding at a time.

package sim

import (
	"github.com/sirupsen/logrus"
)

type replenishEvent struct {
	baseEvent
	sku string
}

func (e *replenishEvent) execute(s *Simulator) {
	delete(s.pendingReplenish, e.sku)
	item, ok := s.Inventory[e.sku]
	if !ok {
		return
	}
	if item.MaxStock > item.Quantity {
		change := item.MaxStock - item.Quantity
		item.Quantity = item.MaxStock
		s.Recorder.Record(EventInventoryUpdated, s.Clock, map[string]any{
			"sku":          e.sku,
			"change":       change,
			"new_quantity": item.Quantity,
			"sim_time":     s.Clock,
			"reason":       "replenishment",
		})
		logrus.Debugf("[%8.2f] restocked %s by %d to %d", s.Clock, e.sku, change, item.Quantity)
	}
	s.releaseBackorders(e.sku)
}

// maybeScheduleReplenish books a restock when stock has fallen below the
// item's reorder point. A disabled lead time turns replenishment off.
func (s *Simulator) maybeScheduleReplenish(item *InventoryItem) {
	if item == nil || item.Quantity >= item.MinStock {
		return
	}
	s.ensureReplenish(item.SKU)
}

// ensureReplenish books a restock regardless of the reorder point, used by
// the backorder path where a parked line is itself the demand signal.
func (s *Simulator) ensureReplenish(sku string) {
	if s.Config.ReplenishLeadTime <= 0 || s.pendingReplenish[sku] {
		return
	}
	s.pendingReplenish[sku] = true
	s.schedule(&replenishEvent{
		baseEvent: s.newBase(s.Clock+s.Config.ReplenishLeadTime, kindReplenish),
		sku:       sku,
	})
}
