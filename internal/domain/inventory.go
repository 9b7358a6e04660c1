package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type StockTier string

const (
	StockTierOutOfStock StockTier = "Out of Stock"
	StockTierLow        StockTier = "Low Stock"
	StockTierCritical   StockTier = "Critical"
	StockTierInStock    StockTier = "In Stock"
)

// rank orders tiers from emptiest to fullest.
func (t StockTier) rank() int {
	switch t {
	case StockTierOutOfStock:
		return 0
	case StockTierLow:
		return 1
	case StockTierCritical:
		return 2
	default:
		return 3
	}
}

// AtOrBelow reports whether t is the same as or emptier than other.
func (t StockTier) AtOrBelow(other StockTier) bool {
	return t.rank() <= other.rank()
}

// ClassifyStock derives the tier for a stock level. The Critical ceiling is
// minimum × 1.5, compared as 2·current ≤ 3·minimum to stay in integers.
func ClassifyStock(current, minimum int) StockTier {
	switch {
	case current <= 0:
		return StockTierOutOfStock
	case current <= minimum:
		return StockTierLow
	case 2*current <= 3*minimum:
		return StockTierCritical
	default:
		return StockTierInStock
	}
}

type InventoryItem struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Category        string          `json:"category,omitempty"`
	Unit            string          `json:"unit"`
	CurrentStock    int             `json:"current_stock"`
	MinimumStock    int             `json:"minimum_stock"`
	MaximumStock    *int            `json:"maximum_stock,omitempty"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	SupplierID      *string         `json:"supplier_id,omitempty"`
	LastRestockedAt *time.Time      `json:"last_restocked_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (i InventoryItem) Tier() StockTier {
	return ClassifyStock(i.CurrentStock, i.MinimumStock)
}

// StockValue is CurrentStock × UnitCost; items below zero are worth nothing.
func (i InventoryItem) StockValue() decimal.Decimal {
	if i.CurrentStock <= 0 {
		return decimal.Zero
	}
	return i.UnitCost.Mul(decimal.NewFromInt(int64(i.CurrentStock)))
}
