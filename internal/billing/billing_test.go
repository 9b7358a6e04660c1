package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

var now = time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)

func deliveredOrder() domain.Order {
	return domain.Order{
		ID:     "order-1",
		Type:   domain.OrderTypeTakeout,
		Status: domain.OrderStatusDelivered,
		Items:  []domain.LineItem{{Name: "Burger", UnitPrice: decimal.NewFromInt(1000), Quantity: 2}},
		Totals: domain.OrderTotals{
			Subtotal:    decimal.NewFromInt(2000),
			TaxAmount:   decimal.NewFromInt(320),
			TotalAmount: decimal.NewFromInt(2320),
		},
	}
}

func TestDeriveBill(t *testing.T) {
	t.Run("derives pending bill from delivered order", func(t *testing.T) {
		bill, err := DeriveBill(deliveredOrder(), BillInput{
			PaymentMethod: domain.PaymentMethodCash,
			TipAmount:     decimal.NewFromInt(100),
		}, false, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if bill.Status != domain.BillStatusPending {
			t.Errorf("expected pending, got %s", bill.Status)
		}
		if bill.OrderID != "order-1" {
			t.Errorf("expected order-1, got %s", bill.OrderID)
		}
		if !bill.TotalAmount.Equal(decimal.NewFromInt(2420)) {
			t.Errorf("expected total 2420, got %s", bill.TotalAmount)
		}
		if bill.BillNumber != "BILL-1772389800000" {
			t.Errorf("expected BILL-1772389800000, got %s", bill.BillNumber)
		}
		if len(bill.Items) != 1 {
			t.Errorf("expected 1 item, got %d", len(bill.Items))
		}
	})

	t.Run("carries tax over instead of recomputing", func(t *testing.T) {
		order := deliveredOrder()
		order.Totals.TaxAmount = decimal.RequireFromString("123.45")

		bill, err := DeriveBill(order, BillInput{PaymentMethod: domain.PaymentMethodDebitCard}, false, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bill.TaxAmount.Equal(decimal.RequireFromString("123.45")) {
			t.Errorf("expected tax 123.45, got %s", bill.TaxAmount)
		}
		if !bill.TotalAmount.Equal(decimal.RequireFromString("2123.45")) {
			t.Errorf("expected total 2123.45, got %s", bill.TotalAmount)
		}
	})

	t.Run("applies discount", func(t *testing.T) {
		bill, err := DeriveBill(deliveredOrder(), BillInput{
			PaymentMethod:  domain.PaymentMethodCreditCard,
			DiscountAmount: decimal.NewFromInt(320),
		}, false, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bill.TotalAmount.Equal(decimal.NewFromInt(2000)) {
			t.Errorf("expected total 2000, got %s", bill.TotalAmount)
		}
	})

	t.Run("rejects second bill for the same order", func(t *testing.T) {
		_, err := DeriveBill(deliveredOrder(), BillInput{PaymentMethod: domain.PaymentMethodCash}, true, now)
		if !errors.Is(err, domain.ErrPreconditionFailed) {
			t.Errorf("expected ErrPreconditionFailed, got %v", err)
		}
	})

	statuses := []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusConfirmed,
		domain.OrderStatusPreparing,
		domain.OrderStatusReady,
		domain.OrderStatusCancelled,
	}
	for _, status := range statuses {
		t.Run("rejects "+string(status)+" order", func(t *testing.T) {
			order := deliveredOrder()
			order.Status = status

			_, err := DeriveBill(order, BillInput{PaymentMethod: domain.PaymentMethodCash}, false, now)
			if !errors.Is(err, domain.ErrPreconditionFailed) {
				t.Fatalf("expected ErrPreconditionFailed, got %v", err)
			}
			var derr *domain.Error
			if errors.As(err, &derr) && derr.State != string(status) {
				t.Errorf("expected state %s, got %s", status, derr.State)
			}
		})
	}

	t.Run("rejects unknown payment method", func(t *testing.T) {
		_, err := DeriveBill(deliveredOrder(), BillInput{PaymentMethod: "cheque"}, false, now)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("rejects negative tip", func(t *testing.T) {
		_, err := DeriveBill(deliveredOrder(), BillInput{
			PaymentMethod: domain.PaymentMethodCash,
			TipAmount:     decimal.NewFromInt(-1),
		}, false, now)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("rejects discount larger than the bill", func(t *testing.T) {
		_, err := DeriveBill(deliveredOrder(), BillInput{
			PaymentMethod:  domain.PaymentMethodCash,
			DiscountAmount: decimal.NewFromInt(5000),
		}, false, now)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSummarize(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	bill := func(method domain.PaymentMethod, status domain.BillStatus, total string, created time.Time) domain.Bill {
		return domain.Bill{
			PaymentMethod: method,
			Status:        status,
			TotalAmount:   decimal.RequireFromString(total),
			CreatedAt:     created,
		}
	}

	bills := []domain.Bill{
		bill(domain.PaymentMethodCash, domain.BillStatusPaid, "100.00", day.Add(9*time.Hour)),
		bill(domain.PaymentMethodCreditCard, domain.BillStatusPaid, "200.00", day.Add(12*time.Hour)),
		bill(domain.PaymentMethodDebitCard, domain.BillStatusPaid, "50.50", day.Add(13*time.Hour)),
		bill(domain.PaymentMethodDigitalWallet, domain.BillStatusPaid, "49.50", day.Add(23*time.Hour)),
		bill(domain.PaymentMethodCash, domain.BillStatusPending, "999.00", day.Add(10*time.Hour)),
		bill(domain.PaymentMethodCash, domain.BillStatusRefunded, "999.00", day.Add(10*time.Hour)),
		bill(domain.PaymentMethodCash, domain.BillStatusPaid, "999.00", day.Add(24*time.Hour)),
		bill(domain.PaymentMethodCash, domain.BillStatusPaid, "999.00", day.Add(-time.Second)),
	}

	summary := Summarize(bills, day.Add(15*time.Hour))

	if summary.Date != "2026-03-01" {
		t.Errorf("expected date 2026-03-01, got %s", summary.Date)
	}
	if summary.BillCount != 4 {
		t.Errorf("expected 4 bills, got %d", summary.BillCount)
	}
	if !summary.TotalSales.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected total 400, got %s", summary.TotalSales)
	}
	if !summary.AverageTicket.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected average 100, got %s", summary.AverageTicket)
	}
	if !summary.CashPayments.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected cash 100, got %s", summary.CashPayments)
	}
	if !summary.CardPayments.Equal(decimal.RequireFromString("250.50")) {
		t.Errorf("expected card 250.50, got %s", summary.CardPayments)
	}
	if !summary.DigitalWalletAmount.Equal(decimal.RequireFromString("49.50")) {
		t.Errorf("expected digital wallet 49.50, got %s", summary.DigitalWalletAmount)
	}

	t.Run("empty day", func(t *testing.T) {
		summary := Summarize(nil, day)
		if summary.BillCount != 0 {
			t.Errorf("expected 0 bills, got %d", summary.BillCount)
		}
		if !summary.AverageTicket.IsZero() {
			t.Errorf("expected zero average, got %s", summary.AverageTicket)
		}
	})
}
