package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "cash"
	PaymentMethodCreditCard    PaymentMethod = "credit_card"
	PaymentMethodDebitCard     PaymentMethod = "debit_card"
	PaymentMethodDigitalWallet PaymentMethod = "digital_wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodDigitalWallet:
		return true
	}
	return false
}

type BillStatus string

const (
	BillStatusPending   BillStatus = "pending"
	BillStatusPaid      BillStatus = "paid"
	BillStatusCancelled BillStatus = "cancelled"
	BillStatusRefunded  BillStatus = "refunded"
)

func (s BillStatus) Valid() bool {
	switch s {
	case BillStatusPending, BillStatusPaid, BillStatusCancelled, BillStatusRefunded:
		return true
	}
	return false
}

type Bill struct {
	ID             string          `json:"id"`
	BillNumber     string          `json:"bill_number"`
	OrderID        string          `json:"order_id"`
	CustomerID     *string         `json:"customer_id,omitempty"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TipAmount      decimal.Decimal `json:"tip_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         BillStatus      `json:"status"`
	Items          []LineItem      `json:"items"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// SalesSummary aggregates paid bills for a single day.
type SalesSummary struct {
	Date                string          `json:"date"`
	BillCount           int             `json:"bill_count"`
	TotalSales          decimal.Decimal `json:"total_sales"`
	AverageTicket       decimal.Decimal `json:"average_ticket"`
	CashPayments        decimal.Decimal `json:"cash_payments"`
	CardPayments        decimal.Decimal `json:"card_payments"`
	DigitalWalletAmount decimal.Decimal `json:"digital_wallet_payments"`
}
