package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeout  OrderType = "takeout"
	OrderTypeDelivery OrderType = "delivery"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeDineIn || t == OrderTypeTakeout || t == OrderTypeDelivery
}

type LineItem struct {
	MenuItemID string          `json:"menu_item_id,omitempty"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

// LineTotal is UnitPrice × Quantity, unrounded.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type OrderTotals struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	TipAmount          decimal.Decimal `json:"tip_amount"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
}

// Rounded returns the totals rounded to cents, the form they are stored and shown in.
func (t OrderTotals) Rounded() OrderTotals {
	return OrderTotals{
		Subtotal:           t.Subtotal.Round(2),
		TaxAmount:          t.TaxAmount.Round(2),
		DiscountAmount:     t.DiscountAmount.Round(2),
		DiscountPercentage: t.DiscountPercentage,
		TipAmount:          t.TipAmount.Round(2),
		TotalAmount:        t.TotalAmount.Round(2),
	}
}

type Order struct {
	ID                  string      `json:"id"`
	OrderNumber         string      `json:"order_number"`
	Type                OrderType   `json:"order_type"`
	Status              OrderStatus `json:"status"`
	TableID             *string     `json:"table_id,omitempty"`
	CustomerID          *string     `json:"customer_id,omitempty"`
	SpecialInstructions string      `json:"special_instructions,omitempty"`
	Items               []LineItem  `json:"items"`
	Totals              OrderTotals `json:"totals"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
	CompletedAt         *time.Time  `json:"completed_at,omitempty"`
}

// Validate checks the structural invariants of an order independent of its totals.
func (o *Order) Validate() error {
	if !o.Type.Valid() {
		return &Error{Kind: ErrInvalidInput, Op: "validate", Entity: "order", ID: o.ID,
			Detail: "unknown order type " + string(o.Type)}
	}
	if o.Type == OrderTypeDineIn && (o.TableID == nil || *o.TableID == "") {
		return &Error{Kind: ErrInvalidInput, Op: "validate", Entity: "order", ID: o.ID,
			Detail: "dine_in orders require a table"}
	}
	if len(o.Items) == 0 {
		return &Error{Kind: ErrInvalidInput, Op: "validate", Entity: "order", ID: o.ID,
			Detail: "order must have at least one item"}
	}
	return nil
}
