// Package erpmock is an in-memory stand-in for a warehouse ERP. It fabricates
// a seeded product catalog and order book, so demos and tests can exercise
// attach, sync, and drift paths without a live system. Same seed, same
// catalog: the mock is as deterministic as the simulator it feeds.
package erpmock

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jaswdr/faker"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/waresim/waresim/sim"
)

// ErrNotConnected is returned by data operations before Connect.
var ErrNotConnected = errors.New("erpmock: not connected")

// OrderItem is one SKU demand when registering an order. A slice keeps the
// caller's line order, which matters for reproducible order books.
type OrderItem struct {
	SKU      string
	Quantity int
}

// System implements sim.ERPSystem backed by maps. It is meant to be driven
// from a single goroutine, matching how the simulator calls it.
type System struct {
	connected bool
	inventory sim.Inventory
	orders    map[string]*sim.Order
	orderIDs  []string
	callbacks []func(sim.Event)
	eventSeq  int
	orderSeq  int
	fake      faker.Faker
	rng       *rand.Rand
}

// New builds a mock holding numSKUs catalog items derived from seed.
func New(numSKUs int, seed int64) *System {
	m := &System{
		inventory: make(sim.Inventory, numSKUs),
		orders:    make(map[string]*sim.Order),
		fake:      faker.NewWithSeed(rand.NewSource(seed)),
		rng:       rand.New(rand.NewSource(seed)),
	}
	m.seedCatalog(numSKUs)
	return m
}

// seedCatalog fabricates the product list. Locations follow the aisle-shelf
// scheme A-<aisle>-<shelf>, ten shelves per aisle.
func (m *System) seedCatalog(n int) {
	for i := 0; i < n; i++ {
		sku := fmt.Sprintf("SKU-%04d", i)
		qty := m.fake.IntBetween(10, 100)
		m.inventory[sku] = &sim.InventoryItem{
			SKU:         sku,
			Name:        m.fake.Lorem().Word(),
			Quantity:    qty,
			Location:    fmt.Sprintf("A-%02d-%02d", i/10, i%10),
			MinStock:    m.fake.IntBetween(5, 15),
			MaxStock:    m.fake.IntBetween(100, 150),
			UnitCost:    decimal.NewFromFloat(m.fake.Float64(2, 5, 50)),
			LastUpdated: time.Now(),
		}
	}
}

func (m *System) Connect() error {
	m.connected = true
	logrus.Debug("erpmock: connected")
	return nil
}

func (m *System) Disconnect() error {
	m.connected = false
	logrus.Debug("erpmock: disconnected")
	return nil
}

func (m *System) Connected() bool { return m.connected }

// FetchOrders returns the orders still awaiting fulfillment, oldest first.
// Returned orders are deep copies: the caller may run them through a
// simulation without disturbing the mock's book.
func (m *System) FetchOrders() ([]*sim.Order, error) {
	if !m.connected {
		return nil, ErrNotConnected
	}
	var out []*sim.Order
	for _, id := range m.orderIDs {
		if o := m.orders[id]; o.Status == sim.StatusReceived {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

// FetchInventory returns a deep copy of the reported stock state.
func (m *System) FetchInventory() (sim.Inventory, error) {
	if !m.connected {
		return nil, ErrNotConnected
	}
	return m.inventory.Clone(), nil
}

// UpdateOrderStatus records a status reported back by the warehouse. Orders
// the mock never issued are rejected.
func (m *System) UpdateOrderStatus(orderID string, status sim.OrderStatus) error {
	if !m.connected {
		return ErrNotConnected
	}
	o, ok := m.orders[orderID]
	if !ok {
		return fmt.Errorf("erpmock: unknown order %q", orderID)
	}
	o.Status = status
	m.emit(sim.EventOrderStatusChanged, map[string]any{
		"order_id": orderID,
		"status":   string(status),
	})
	return nil
}

// UpdateInventory applies a signed stock adjustment to a known SKU.
func (m *System) UpdateInventory(sku string, delta int) error {
	if !m.connected {
		return ErrNotConnected
	}
	item, ok := m.inventory[sku]
	if !ok {
		return fmt.Errorf("erpmock: unknown sku %q", sku)
	}
	if item.Quantity+delta < 0 {
		return fmt.Errorf("erpmock: stock for %q cannot go negative: %w", sku, sim.ErrInsufficientStock)
	}
	item.Quantity += delta
	item.LastUpdated = time.Now()
	m.emit(sim.EventInventoryUpdated, map[string]any{
		"sku":          sku,
		"change":       delta,
		"new_quantity": item.Quantity,
	})
	return nil
}

func (m *System) SubscribeToEvents(fn func(sim.Event)) error {
	m.callbacks = append(m.callbacks, fn)
	return nil
}

// CreateOrder registers a customer order and emits its intake event. Lines
// naming unknown SKUs are dropped at entry, the way an ERP refuses
// unsellable items.
func (m *System) CreateOrder(customerID string, items []OrderItem) (*sim.Order, error) {
	var lines []*sim.OrderLine
	for _, it := range items {
		item, ok := m.inventory[it.SKU]
		if !ok {
			continue
		}
		lines = append(lines, &sim.OrderLine{
			SKU:      it.SKU,
			Quantity: it.Quantity,
			Location: item.Location,
		})
	}
	if len(lines) == 0 {
		return nil, errors.New("erpmock: order has no valid lines")
	}

	m.orderSeq++
	id := fmt.Sprintf("ORD-%06d", m.orderSeq)
	o := sim.NewOrder(id, customerID, lines, m.rng.Intn(5)+1, 0)
	m.orders[id] = o
	m.orderIDs = append(m.orderIDs, id)

	m.emit(sim.EventOrderCreated, map[string]any{
		"order_id":    id,
		"customer_id": customerID,
		"priority":    o.Priority,
		"total_items": o.TotalItems(),
	})
	return cloneOrder(o), nil
}

// GenerateOrders fills the book with n synthetic customer orders drawn from
// the in-stock catalog.
func (m *System) GenerateOrders(n int) error {
	for i := 0; i < n; i++ {
		skus := m.inventory.AvailableSKUs()
		if len(skus) == 0 {
			return errors.New("erpmock: catalog has no stock to order against")
		}
		count := m.fake.IntBetween(1, 4)
		if count > len(skus) {
			count = len(skus)
		}
		perm := m.rng.Perm(len(skus))
		items := make([]OrderItem, count)
		for j := 0; j < count; j++ {
			items[j] = OrderItem{SKU: skus[perm[j]], Quantity: m.fake.IntBetween(1, 3)}
		}
		if _, err := m.CreateOrder(m.fake.Person().Name(), items); err != nil {
			return err
		}
	}
	return nil
}

func (m *System) emit(kind sim.EventKind, data map[string]any) {
	m.eventSeq++
	e := sim.Event{
		Seq:     int64(m.eventSeq),
		ID:      fmt.Sprintf("ERP-%06d", m.eventSeq),
		Kind:    kind,
		SimTime: -1,
		Wall:    time.Now(),
		Source:  sim.SourceERP,
		Data:    data,
	}
	for _, fn := range m.callbacks {
		fn(e)
	}
}

func cloneOrder(o *sim.Order) *sim.Order {
	lines := make([]*sim.OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		copied := *l
		lines[i] = &copied
	}
	c := *o
	c.Lines = lines
	return &c
}
