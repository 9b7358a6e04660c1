// Package billing derives bills from delivered orders and settles them.
package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
	"github.com/joao-fontenele/restaurant-pos/internal/pricing"
)

// BillInput carries the settlement choices made when a bill is opened.
type BillInput struct {
	PaymentMethod  domain.PaymentMethod
	DiscountAmount decimal.Decimal
	TipAmount      decimal.Decimal
}

// DeriveBill builds the pending bill for order. The order must be delivered
// and must not have been billed already. Tax is carried over from the order,
// never recomputed.
func DeriveBill(order domain.Order, in BillInput, alreadyBilled bool, now time.Time) (domain.Bill, error) {
	if order.Status != domain.OrderStatusDelivered {
		return domain.Bill{}, &domain.Error{
			Kind: domain.ErrPreconditionFailed, Op: "derive bill", Entity: "order", ID: order.ID,
			State: string(order.Status), Detail: "only delivered orders can be billed",
		}
	}
	if alreadyBilled {
		return domain.Bill{}, &domain.Error{
			Kind: domain.ErrPreconditionFailed, Op: "derive bill", Entity: "order", ID: order.ID,
			State: string(order.Status), Detail: "order already has a bill",
		}
	}
	if !in.PaymentMethod.Valid() {
		return domain.Bill{}, &domain.Error{
			Kind: domain.ErrInvalidInput, Op: "derive bill", Entity: "order", ID: order.ID,
			Detail: fmt.Sprintf("unknown payment method %q", in.PaymentMethod),
		}
	}

	total, err := pricing.BillTotal(order.Totals.Subtotal, order.Totals.TaxAmount, in.DiscountAmount, in.TipAmount)
	if err != nil {
		return domain.Bill{}, err
	}

	items := make([]domain.LineItem, len(order.Items))
	copy(items, order.Items)

	return domain.Bill{
		BillNumber:     fmt.Sprintf("BILL-%d", now.UnixMilli()),
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		PaymentMethod:  in.PaymentMethod,
		Subtotal:       order.Totals.Subtotal,
		TaxAmount:      order.Totals.TaxAmount,
		DiscountAmount: in.DiscountAmount,
		TipAmount:      in.TipAmount,
		TotalAmount:    total,
		Status:         domain.BillStatusPending,
		Items:          items,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Summarize aggregates the paid bills created on day (UTC).
func Summarize(bills []domain.Bill, day time.Time) domain.SalesSummary {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	summary := domain.SalesSummary{
		Date:                start.Format(time.DateOnly),
		TotalSales:          decimal.Zero,
		AverageTicket:       decimal.Zero,
		CashPayments:        decimal.Zero,
		CardPayments:        decimal.Zero,
		DigitalWalletAmount: decimal.Zero,
	}

	for _, b := range bills {
		created := b.CreatedAt.UTC()
		if b.Status != domain.BillStatusPaid || created.Before(start) || !created.Before(end) {
			continue
		}
		summary.BillCount++
		summary.TotalSales = summary.TotalSales.Add(b.TotalAmount)
		switch b.PaymentMethod {
		case domain.PaymentMethodCash:
			summary.CashPayments = summary.CashPayments.Add(b.TotalAmount)
		case domain.PaymentMethodCreditCard, domain.PaymentMethodDebitCard:
			summary.CardPayments = summary.CardPayments.Add(b.TotalAmount)
		case domain.PaymentMethodDigitalWallet:
			summary.DigitalWalletAmount = summary.DigitalWalletAmount.Add(b.TotalAmount)
		}
	}

	if summary.BillCount > 0 {
		summary.AverageTicket = summary.TotalSales.Div(decimal.NewFromInt(int64(summary.BillCount))).Round(2)
	}

	return summary
}
