package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicOrderDelivered    = "order.delivered"
	TopicInventoryLowStock = "inventory.lowStock"
)

// OrderDeliveredEvent marks an order as bill-eligible.
type OrderDeliveredEvent struct {
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	OrderType   OrderType   `json:"order_type"`
	CustomerID  *string     `json:"customer_id,omitempty"`
	Items       []LineItem  `json:"items"`
	Totals      OrderTotals `json:"totals"`
	Timestamp   time.Time   `json:"timestamp"`
}

type LowStockEvent struct {
	ItemID       string          `json:"item_id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	CurrentStock int             `json:"current_stock"`
	MinimumStock int             `json:"minimum_stock"`
	Tier         StockTier       `json:"tier"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Timestamp    time.Time       `json:"timestamp"`
}
