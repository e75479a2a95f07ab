// Synthetic order arrivals: a Poisson process whose inter-arrival times come
// from the arrivals RNG partition, with order composition drawn from the same
// partition so that arrival count and order content stay coupled under a seed.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type arrivalEvent struct {
	baseEvent
}

func (e *arrivalEvent) execute(s *Simulator) {
	if o := s.spawnOrder(); o != nil {
		s.startOrder(o)
	}
	s.scheduleNextArrival()
}

// scheduleNextArrival books the next Poisson arrival. Arrivals landing at or
// past the horizon sit in the heap and simply never execute.
func (s *Simulator) scheduleNextArrival() {
	rng := s.RNG.ForSubsystem(SubsystemArrivals)
	iat := s.arrivals.SampleIAT(rng)
	s.schedule(&arrivalEvent{baseEvent: s.newBase(s.Clock+iat, kindArrival)})
}

// spawnOrder draws one synthetic order. The draw order is fixed: line count
// first, then SKUs, quantities, customer, priority. Reordering the draws
// changes every seeded stream, so treat this sequence as part of the
// determinism contract.
//
// The order counter advances even when generation aborts, so order IDs
// record arrivals, not admissions.
func (s *Simulator) spawnOrder() *Order {
	s.orderSeq++
	rng := s.RNG.ForSubsystem(SubsystemArrivals)

	n := int(rng.NormFloat64()*s.Config.ItemsPerOrderStd + s.Config.ItemsPerOrderMean)
	if n < 1 {
		n = 1
	}

	avail := s.Inventory.AvailableSKUs()
	if len(avail) == 0 {
		logrus.Warnf("[%8.2f] arrival skipped: nothing in stock", s.Clock)
		return nil
	}
	if n > len(avail) {
		n = len(avail)
	}

	// Sample SKUs without replacement from the sorted in-stock list.
	perm := rng.Perm(len(avail))
	lines := make([]*OrderLine, n)
	for i := 0; i < n; i++ {
		sku := avail[perm[i]]
		lines[i] = &OrderLine{
			SKU:      sku,
			Quantity: rng.Intn(3) + 1,
			Location: s.Inventory[sku].Location,
		}
	}

	customer := fmt.Sprintf("CUST-%04d", rng.Intn(100)+1)
	priority := rng.Intn(5) + 1
	id := fmt.Sprintf("SIM-%06d", s.orderSeq)

	return NewOrder(id, customer, lines, priority, s.Clock)
}
