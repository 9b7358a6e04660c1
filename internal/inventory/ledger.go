// Package inventory keeps the stock ledger: item records, stock adjustments,
// tier classification and low-stock alerts.
package inventory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

// Adjustment is the outcome of applying a stock delta.
type Adjustment struct {
	Item     domain.InventoryItem
	Previous domain.StockTier
	// LowStock is set when the item moved from above Low Stock to Low Stock or below.
	LowStock *domain.LowStockEvent
}

// AdjustStock applies delta to item's current stock. A result below zero is
// rejected and item is left as it was. Restocks stamp LastRestockedAt.
func AdjustStock(item domain.InventoryItem, delta int, now time.Time) (Adjustment, error) {
	previous := item.Tier()
	next := item.CurrentStock + delta
	if next < 0 {
		return Adjustment{}, &domain.Error{
			Kind: domain.ErrInvalidInput, Op: "adjust stock", Entity: "inventory item", ID: item.ID,
			State:  string(previous),
			Detail: fmt.Sprintf("delta %d would leave %d %s in stock", delta, next, item.Unit),
		}
	}

	item.CurrentStock = next
	item.UpdatedAt = now
	if delta > 0 {
		restocked := now
		item.LastRestockedAt = &restocked
	}

	return Adjustment{Item: item, Previous: previous, LowStock: LowStockCrossing(previous, item, now)}, nil
}

// LowStockCrossing returns the alert for item when it has fallen from above
// Low Stock to Low Stock or below, and nil otherwise.
func LowStockCrossing(previous domain.StockTier, item domain.InventoryItem, now time.Time) *domain.LowStockEvent {
	current := item.Tier()
	if previous.AtOrBelow(domain.StockTierLow) || !current.AtOrBelow(domain.StockTierLow) {
		return nil
	}
	return &domain.LowStockEvent{
		ItemID:       item.ID,
		Name:         item.Name,
		Unit:         item.Unit,
		CurrentStock: item.CurrentStock,
		MinimumStock: item.MinimumStock,
		Tier:         current,
		UnitCost:     item.UnitCost,
		Timestamp:    now,
	}
}

// ItemView is an inventory item as served, with its derived fields.
type ItemView struct {
	domain.InventoryItem
	Tier       domain.StockTier `json:"tier"`
	StockValue decimal.Decimal  `json:"stock_value"`
}

func viewOf(item domain.InventoryItem) ItemView {
	return ItemView{InventoryItem: item, Tier: item.Tier(), StockValue: item.StockValue().Round(2)}
}

func viewsOf(items []domain.InventoryItem) []ItemView {
	views := make([]ItemView, len(items))
	for i, item := range items {
		views[i] = viewOf(item)
	}
	return views
}

// Valuation totals the worth of the stock on hand.
type Valuation struct {
	ItemCount  int             `json:"item_count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

func Value(items []domain.InventoryItem) Valuation {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.StockValue())
	}
	return Valuation{ItemCount: len(items), TotalValue: total.Round(2)}
}
