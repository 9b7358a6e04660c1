// Package pricing computes order and bill money amounts. Values are kept at
// full precision; rounding to cents happens only when a caller stores or shows them.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Adjustments are the per-order parameters applied on top of the line items.
type Adjustments struct {
	TaxRate            decimal.Decimal
	DiscountPercentage decimal.Decimal
	TipAmount          decimal.Decimal
}

// ComputeTotals derives subtotal, tax, discount, tip and total for a set of line items.
func ComputeTotals(items []domain.LineItem, adj Adjustments) (domain.OrderTotals, error) {
	if adj.TaxRate.IsNegative() {
		return domain.OrderTotals{}, invalid("tax rate must not be negative, got %s", adj.TaxRate)
	}
	if adj.DiscountPercentage.IsNegative() || adj.DiscountPercentage.GreaterThan(hundred) {
		return domain.OrderTotals{}, invalid("discount percentage must be within [0,100], got %s", adj.DiscountPercentage)
	}
	if adj.TipAmount.IsNegative() {
		return domain.OrderTotals{}, invalid("tip amount must not be negative, got %s", adj.TipAmount)
	}
	if err := CheckCents("discount percentage", adj.DiscountPercentage); err != nil {
		return domain.OrderTotals{}, err
	}
	if err := CheckCents("tip amount", adj.TipAmount); err != nil {
		return domain.OrderTotals{}, err
	}

	subtotal := decimal.Zero
	for i, item := range items {
		if item.UnitPrice.IsNegative() {
			return domain.OrderTotals{}, invalid("item %d (%s): unit price must not be negative", i, item.Name)
		}
		if item.Quantity < 0 {
			return domain.OrderTotals{}, invalid("item %d (%s): quantity must not be negative", i, item.Name)
		}
		if err := CheckCents(fmt.Sprintf("item %d (%s): unit price", i, item.Name), item.UnitPrice); err != nil {
			return domain.OrderTotals{}, err
		}
		subtotal = subtotal.Add(item.LineTotal())
	}

	tax := subtotal.Mul(adj.TaxRate)
	discount := subtotal.Mul(adj.DiscountPercentage).Div(hundred)

	return domain.OrderTotals{
		Subtotal:           subtotal,
		TaxAmount:          tax,
		DiscountAmount:     discount,
		DiscountPercentage: adj.DiscountPercentage,
		TipAmount:          adj.TipAmount,
		TotalAmount:        subtotal.Add(tax).Sub(discount).Add(adj.TipAmount),
	}, nil
}

// BillTotal is subtotal + tax - discount + tip, rejecting a result below zero.
func BillTotal(subtotal, tax, discount, tip decimal.Decimal) (decimal.Decimal, error) {
	if discount.IsNegative() {
		return decimal.Zero, invalid("discount amount must not be negative, got %s", discount)
	}
	if tip.IsNegative() {
		return decimal.Zero, invalid("tip amount must not be negative, got %s", tip)
	}
	if err := CheckCents("discount amount", discount); err != nil {
		return decimal.Zero, err
	}
	if err := CheckCents("tip amount", tip); err != nil {
		return decimal.Zero, err
	}
	total := subtotal.Add(tax).Sub(discount).Add(tip)
	if total.IsNegative() {
		return decimal.Zero, invalid("discount %s exceeds the billable amount", discount)
	}
	return total, nil
}

// CheckCents rejects inputs that would lose digits in a NUMERIC(_,2) column.
// Trailing zeros are fine: 10.500 is accepted.
func CheckCents(field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(2)) {
		return domain.InvalidInput("check amount", fmt.Sprintf("%s must have at most 2 decimal places, got %s", field, d))
	}
	return nil
}

func invalid(format string, args ...any) error {
	return &domain.Error{Kind: domain.ErrInvalidInput, Op: "compute totals", Detail: fmt.Sprintf(format, args...)}
}
