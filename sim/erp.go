package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ERPSystem is the port to the warehouse's system of record. The simulator
// pulls initial state and pending orders at attach time, pushes completed
// statuses during periodic sync, and reads reported inventory for drift
// checks. Implementations decide what a connection means; the simulator only
// requires that an unconnected system answers Connected() == false.
type ERPSystem interface {
	Connect() error
	Disconnect() error
	Connected() bool

	// FetchOrders returns orders awaiting fulfillment, in RECEIVED state.
	FetchOrders() ([]*Order, error)

	// FetchInventory returns the reported stock state. Implementations must
	// return a copy the caller may mutate freely.
	FetchInventory() (Inventory, error)

	UpdateOrderStatus(orderID string, status OrderStatus) error
	UpdateInventory(sku string, delta int) error

	// SubscribeToEvents registers a callback for events originating on the
	// ERP side, such as order intake or manual stock corrections.
	SubscribeToEvents(fn func(Event)) error
}

// AttachERP connects the simulator to a system of record before the run:
// reported inventory becomes the starting stock, pending orders enter the
// lifecycle at time zero, and ERP-side events flow into the recorder.
func (s *Simulator) AttachERP(erp ERPSystem) error {
	if s.ran {
		return errors.New("erp attach after run")
	}
	if !erp.Connected() {
		if err := erp.Connect(); err != nil {
			return fmt.Errorf("erp connect: %w", err)
		}
	}

	inv, err := erp.FetchInventory()
	if err != nil {
		return fmt.Errorf("erp inventory fetch: %w", err)
	}
	s.SetInventory(inv)

	orders, err := erp.FetchOrders()
	if err != nil {
		return fmt.Errorf("erp order fetch: %w", err)
	}
	s.pendingOrders = append(s.pendingOrders, orders...)

	if err := erp.SubscribeToEvents(s.Recorder.Append); err != nil {
		return fmt.Errorf("erp subscribe: %w", err)
	}

	s.erp = erp
	logrus.Infof("attached ERP: %d SKUs, %d pending orders", len(inv), len(orders))
	return nil
}

// syncEvent is the periodic reconciliation tick. Each firing reschedules the
// next, so sync runs for as long as the horizon allows.
type syncEvent struct {
	baseEvent
}

func (e *syncEvent) execute(s *Simulator) {
	s.handleSync()
	s.schedule(&syncEvent{baseEvent: s.newBase(s.Clock+s.Config.ERPSyncInterval, kindSync)})
}

// handleSync pushes completions recorded since the previous sync, then runs
// a drift check against reported inventory. A rejected push is logged and
// skipped: the ERP may legitimately refuse orders it never issued, and one
// bad order must not wedge the cursor for the rest of the run.
func (s *Simulator) handleSync() {
	s.Recorder.Record(EventSyncRequest, s.Clock, map[string]any{
		"sim_time":         s.Clock,
		"completed_orders": len(s.CompletedOrders),
		"synced_orders":    s.syncedCompleted,
	})

	if s.erp == nil || !s.erp.Connected() {
		logrus.Warnf("[%8.2f] sync skipped: erp not connected", s.Clock)
		return
	}

	for s.syncedCompleted < len(s.CompletedOrders) {
		o := s.CompletedOrders[s.syncedCompleted]
		if err := s.erp.UpdateOrderStatus(o.ID, StatusCompleted); err != nil {
			logrus.Debugf("[%8.2f] sync: status push for %s not accepted: %v", s.Clock, o.ID, err)
		}
		s.syncedCompleted++
	}

	s.CheckDrift()
}
