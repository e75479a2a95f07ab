// Implements the order lifecycle machine: the fixed stage sequence
// RECEIVED -> PICKING -> PICKED -> PACKING -> PACKED -> SHIPPING -> COMPLETED
// expressed as callback continuations over the event heap. Suspension points
// are exactly resource waits and sampled-duration waits.

package sim

import (
	"github.com/sirupsen/logrus"
)

// lineRef addresses one line of an in-flight order, used to park and resume
// backordered picks.
type lineRef struct {
	order *Order
	line  int
}

// InjectOrder hands the lifecycle machine an externally constructed order in
// RECEIVED state. The generator and the ERP ingest path both funnel through
// here; tests can use it to drive single orders without an arrival stream.
func (s *Simulator) InjectOrder(o *Order) {
	s.startOrder(o)
}

func (s *Simulator) startOrder(o *Order) {
	o.RequiresTransport = o.TotalItems() > s.Config.HandCarryLimit
	s.ActiveOrders[o.ID] = o

	s.Recorder.Record(EventOrderCreated, s.Clock, map[string]any{
		"order_id":           o.ID,
		"customer_id":        o.CustomerID,
		"priority":           o.Priority,
		"total_items":        o.TotalItems(),
		"requires_transport": o.RequiresTransport,
	})

	s.advance(o, StatusPicking)
	s.Workers.Request(s, o.ID, func(s *Simulator) {
		s.pickLine(o, 0)
	})
}

// advance performs the instantaneous state mutation and its event emission.
// Every status mutation produces exactly one ORDER_STATUS_CHANGED record.
func (s *Simulator) advance(o *Order, next OrderStatus) {
	o.transitionTo(next, s.Clock)

	data := map[string]any{
		"order_id": o.ID,
		"status":   string(next),
		"sim_time": s.Clock,
	}
	if next == StatusCompleted {
		data["total_time"] = s.Clock - o.CreatedAt
	}
	s.Recorder.Record(EventOrderStatusChanged, s.Clock, data)
	logrus.Debugf("[%8.2f] %s -> %s", s.Clock, o.ID, next)
}

// pickLine starts work on line i, acquiring a forklift first when the order
// needs transport. Lines are picked strictly in order.
func (s *Simulator) pickLine(o *Order, i int) {
	if i >= len(o.Lines) {
		s.finishPicking(o)
		return
	}
	if o.RequiresTransport {
		s.Forklifts.Request(s, o.ID, func(s *Simulator) {
			s.travelAndPick(o, i)
		})
		return
	}
	s.travelAndPick(o, i)
}

// travelAndPick walks (or drives) to the line's location, then picks it.
func (s *Simulator) travelAndPick(o *Order, i int) {
	rng := s.RNG.ForSubsystem(SubsystemService)
	travel := s.service.Sample(rng, s.Config.TransportTimeMean, s.Config.TransportTimeStd, 1)
	s.after(travel, func(s *Simulator) {
		rng := s.RNG.ForSubsystem(SubsystemService)
		line := o.Lines[i]
		pick := s.service.Sample(rng, s.Config.PickTimeMean, s.Config.PickTimeStd, line.Quantity)
		s.after(pick, func(s *Simulator) {
			s.completeLine(o, i)
		})
	})
}

// completeLine applies the pick to inventory, or invokes the shortfall
// policy when stock cannot cover the line. Stock never goes negative.
func (s *Simulator) completeLine(o *Order, i int) {
	line := o.Lines[i]
	item, ok := s.Inventory[line.SKU]

	if !ok || item.Quantity < line.Quantity {
		s.handleShortfall(o, i, item)
		return
	}

	line.PickedQuantity = line.Quantity
	item.Quantity -= line.Quantity
	s.Recorder.Record(EventInventoryUpdated, s.Clock, map[string]any{
		"sku":          line.SKU,
		"change":       -line.Quantity,
		"new_quantity": item.Quantity,
		"sim_time":     s.Clock,
	})
	s.Metrics.addPickedValue(item.UnitCost, line.Quantity)
	s.maybeScheduleReplenish(item)

	if o.RequiresTransport {
		s.Forklifts.Release(s, o.ID)
	}
	s.pickLine(o, i+1)
}

// handleShortfall resolves an overdraw per the configured policy. item is
// nil when the SKU is not stocked at all.
func (s *Simulator) handleShortfall(o *Order, i int, item *InventoryItem) {
	line := o.Lines[i]

	// An unknown SKU can never be replenished, so backorders on it would
	// wait out the horizon for nothing. Fail the line regardless of policy.
	if s.Config.Shortfall == ShortfallBackorder && item != nil {
		logrus.Debugf("[%8.2f] %s line %d backordered: %s needs %d, on hand %d",
			s.Clock, o.ID, i, line.SKU, line.Quantity, item.Quantity)
		if o.RequiresTransport {
			s.Forklifts.Release(s, o.ID)
		}
		s.Workers.Release(s, o.ID)
		s.backorders[line.SKU] = append(s.backorders[line.SKU], lineRef{order: o, line: i})
		s.ensureReplenish(line.SKU)
		return
	}

	onHand := 0
	if item != nil {
		onHand = item.Quantity
	}
	logrus.Warnf("[%8.2f] %s line %d failed: %s needs %d, on hand %d",
		s.Clock, o.ID, i, line.SKU, line.Quantity, onHand)
	s.Metrics.LinesFailed++

	if o.RequiresTransport {
		s.Forklifts.Release(s, o.ID)
	}
	s.pickLine(o, i+1)
}

// releaseBackorders resumes lines parked on sku after a restock, oldest
// first. Each waiter re-acquires a worker (and forklift, via pickLine)
// before retrying, so restocked stock is still contended fairly.
func (s *Simulator) releaseBackorders(sku string) {
	waiters := s.backorders[sku]
	if len(waiters) == 0 {
		return
	}
	delete(s.backorders, sku)
	for _, w := range waiters {
		w := w
		s.Workers.Request(s, w.order.ID, func(s *Simulator) {
			logrus.Debugf("[%8.2f] %s resuming line %d after restock of %s",
				s.Clock, w.order.ID, w.line, sku)
			s.pickLine(w.order, w.line)
		})
	}
}

// finishPicking closes the picking phase and opens packing. The worker is
// released between the phases; packing acquires its own, matching how a
// picker hands a completed tote to whoever is free at the pack bench.
func (s *Simulator) finishPicking(o *Order) {
	s.Workers.Release(s, o.ID)
	s.advance(o, StatusPicked)
	s.advance(o, StatusPacking)
	s.Workers.Request(s, o.ID, func(s *Simulator) {
		s.pack(o)
	})
}

func (s *Simulator) pack(o *Order) {
	rng := s.RNG.ForSubsystem(SubsystemService)
	d := s.service.Sample(rng, s.Config.PackTimeMean, s.Config.PackTimeStd, o.TotalItems())
	s.after(d, func(s *Simulator) {
		s.Workers.Release(s, o.ID)
		s.advance(o, StatusPacked)
		s.advance(o, StatusShipping)
		rng := s.RNG.ForSubsystem(SubsystemService)
		ship := s.service.Sample(rng, s.Config.ShipTimeMean, s.Config.ShipTimeStd, 1)
		s.after(ship, func(s *Simulator) {
			s.completeOrder(o)
		})
	})
}

func (s *Simulator) completeOrder(o *Order) {
	s.advance(o, StatusCompleted)
	s.Metrics.RecordOrderCompletion(o, s.Clock-o.CreatedAt)
	s.CompletedOrders = append(s.CompletedOrders, o)
	delete(s.ActiveOrders, o.ID)
}
