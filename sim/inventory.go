package sim

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInsufficientStock is returned by ERP adapters when an inventory
// adjustment would take a SKU's on-hand count below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// InventoryItem is a stocked SKU with its reorder metadata.
// Quantity never goes negative: pick lines that would overdraw are handled
// by the configured shortfall policy instead.
type InventoryItem struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	Location    string          `json:"location"`
	MinStock    int             `json:"min_stock"`
	MaxStock    int             `json:"max_stock"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	LastUpdated time.Time       `json:"last_updated"`
}

// Inventory maps SKU to item. The map is owned by exactly one simulation run;
// Clone before handing it to another.
type Inventory map[string]*InventoryItem

// SKUs returns all SKUs in sorted order. Sorted iteration keeps every
// consumer of the inventory deterministic.
func (inv Inventory) SKUs() []string {
	skus := make([]string, 0, len(inv))
	for sku := range inv {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	return skus
}

// AvailableSKUs returns the sorted SKUs with on-hand stock.
func (inv Inventory) AvailableSKUs() []string {
	skus := make([]string, 0, len(inv))
	for sku, item := range inv {
		if item.Quantity > 0 {
			skus = append(skus, sku)
		}
	}
	sort.Strings(skus)
	return skus
}

// Quantities returns a plain SKU -> on-hand snapshot for drift comparison
// and result reporting.
func (inv Inventory) Quantities() map[string]int {
	out := make(map[string]int, len(inv))
	for sku, item := range inv {
		out[sku] = item.Quantity
	}
	return out
}

// TotalUnits returns the total on-hand unit count.
func (inv Inventory) TotalUnits() int {
	total := 0
	for _, item := range inv {
		total += item.Quantity
	}
	return total
}

// Clone deep-copies the inventory. Items are copied, not aliased, so a run
// mutating its clone never leaks decrements back into the source.
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for sku, item := range inv {
		copied := *item
		out[sku] = &copied
	}
	return out
}
