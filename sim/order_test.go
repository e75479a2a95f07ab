package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoLineOrder() *Order {
	return NewOrder("ORD-000001", "CUST-0007", []*OrderLine{
		{SKU: "SKU-0001", Quantity: 2, Location: "A-00-01"},
		{SKU: "SKU-0002", Quantity: 3, Location: "A-00-02"},
	}, 3, 10.0)
}

func TestNewOrder_InitialState(t *testing.T) {
	o := twoLineOrder()

	assert.Equal(t, StatusReceived, o.Status)
	assert.Equal(t, 10.0, o.CreatedAt)
	assert.Equal(t, 5, o.TotalItems())
	assert.Equal(t, 0, o.PickedItems())
	assert.False(t, o.IsFullyPicked())

	// No stage stamp is written yet
	for name, stamp := range map[string]float64{
		"pick_start":   o.PickStart,
		"pick_end":     o.PickEnd,
		"pack_start":   o.PackStart,
		"pack_end":     o.PackEnd,
		"ship_start":   o.ShipStart,
		"ship_end":     o.ShipEnd,
		"completed_at": o.CompletedAt,
	} {
		assert.Equal(t, unsetStamp, stamp, name)
	}
}

func TestOrder_FullWalkStampsEveryStage(t *testing.T) {
	o := twoLineOrder()

	o.transitionTo(StatusPicking, 11.0)
	o.transitionTo(StatusPicked, 15.0)
	o.transitionTo(StatusPacking, 15.0)
	o.transitionTo(StatusPacked, 21.0)
	o.transitionTo(StatusShipping, 21.0)
	o.transitionTo(StatusCompleted, 23.5)

	assert.Equal(t, StatusCompleted, o.Status)
	assert.Equal(t, 11.0, o.PickStart)
	assert.Equal(t, 15.0, o.PickEnd)
	assert.Equal(t, 15.0, o.PackStart)
	assert.Equal(t, 21.0, o.PackEnd)
	assert.Equal(t, 21.0, o.ShipStart)
	assert.Equal(t, 23.5, o.ShipEnd)
	assert.Equal(t, 23.5, o.CompletedAt)
	assert.False(t, o.CompletedWall.IsZero())
	assert.GreaterOrEqual(t, o.PickEnd, o.PickStart)
}

func TestOrder_SkippingAStagePanics(t *testing.T) {
	o := twoLineOrder()

	assert.Panics(t, func() { o.transitionTo(StatusPicked, 1.0) })
}

func TestOrder_BackwardMovePanics(t *testing.T) {
	o := twoLineOrder()
	o.transitionTo(StatusPicking, 1.0)

	assert.Panics(t, func() { o.transitionTo(StatusReceived, 2.0) })
}

func TestOrder_SameStatusPanics(t *testing.T) {
	o := twoLineOrder()
	o.transitionTo(StatusPicking, 1.0)

	assert.Panics(t, func() { o.transitionTo(StatusPicking, 2.0) })
}

func TestOrder_PickedItemsTracksLineProgress(t *testing.T) {
	o := twoLineOrder()

	o.Lines[0].PickedQuantity = 2
	assert.Equal(t, 2, o.PickedItems())
	assert.False(t, o.IsFullyPicked())

	o.Lines[1].PickedQuantity = 3
	assert.Equal(t, 5, o.PickedItems())
	assert.True(t, o.IsFullyPicked())
}

func TestOrder_ShortPickIsNotFullyPicked(t *testing.T) {
	o := twoLineOrder()
	o.Lines[0].PickedQuantity = 2
	o.Lines[1].PickedQuantity = 1

	require.False(t, o.IsFullyPicked())
	assert.Equal(t, 3, o.PickedItems())
}

func TestOrder_String(t *testing.T) {
	o := twoLineOrder()
	s := o.String()

	assert.Contains(t, s, "ORD-000001")
	assert.Contains(t, s, "RECEIVED")
}
