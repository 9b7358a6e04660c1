package billing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

// ErrStaleStatus means the bill left the expected status before the update landed.
var ErrStaleStatus = errors.New("bill status changed concurrently")

const (
	uniqueViolation       = "23505"
	orderUniqueConstraint = "bills_order_id_key"
)

const billColumns = `id, bill_number, order_id, customer_id, payment_method,
	subtotal, tax_amount, discount_amount, tip_amount, total_amount,
	status, items, paid_at, created_at, updated_at`

type BillRepository struct {
	db *sql.DB
}

func NewBillRepository(db *sql.DB) *BillRepository {
	return &BillRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (domain.Bill, error) {
	var b domain.Bill
	var items []byte
	err := row.Scan(&b.ID, &b.BillNumber, &b.OrderID, &b.CustomerID, &b.PaymentMethod,
		&b.Subtotal, &b.TaxAmount, &b.DiscountAmount, &b.TipAmount, &b.TotalAmount,
		&b.Status, &items, &b.PaidAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(items, &b.Items); err != nil {
		return b, fmt.Errorf("decode bill items: %w", err)
	}
	return b, nil
}

// Create inserts bill with amounts rounded to cents. A second bill for the
// same order violates bills_order_id_key and is reported as
// domain.ErrPreconditionFailed.
func (r *BillRepository) Create(ctx context.Context, bill *domain.Bill) error {
	items, err := json.Marshal(bill.Items)
	if err != nil {
		return fmt.Errorf("encode bill items: %w", err)
	}

	bill.ID = uuid.New().String()
	bill.Subtotal = bill.Subtotal.Round(2)
	bill.TaxAmount = bill.TaxAmount.Round(2)
	bill.DiscountAmount = bill.DiscountAmount.Round(2)
	bill.TipAmount = bill.TipAmount.Round(2)
	bill.TotalAmount = bill.TotalAmount.Round(2)

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO billing.bills (`+billColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, bill.ID, bill.BillNumber, bill.OrderID, bill.CustomerID, bill.PaymentMethod,
		bill.Subtotal, bill.TaxAmount, bill.DiscountAmount, bill.TipAmount, bill.TotalAmount,
		bill.Status, string(items), bill.PaidAt, bill.CreatedAt, bill.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == orderUniqueConstraint {
			return &domain.Error{
				Kind: domain.ErrPreconditionFailed, Op: "derive bill", Entity: "order", ID: bill.OrderID,
				Detail: "order already has a bill", Err: err,
			}
		}
		return fmt.Errorf("insert bill: %w", err)
	}

	return nil
}

func (r *BillRepository) ExistsForOrder(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM billing.bills WHERE order_id = $1)
	`, orderID).Scan(&exists)
	return exists, err
}

func (r *BillRepository) GetByID(ctx context.Context, id string) (*domain.Bill, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NotFound("bill", id)
	}

	bill, err := scanBill(r.db.QueryRowContext(ctx, `
		SELECT `+billColumns+`
		FROM billing.bills
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("bill", id)
		}
		return nil, err
	}

	return &bill, nil
}

func (r *BillRepository) List(ctx context.Context) ([]domain.Bill, error) {
	return r.query(ctx, `
		SELECT `+billColumns+`
		FROM billing.bills
		ORDER BY created_at DESC
	`)
}

// ListCreatedBetween returns bills with from <= created_at < to.
func (r *BillRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.Bill, error) {
	return r.query(ctx, `
		SELECT `+billColumns+`
		FROM billing.bills
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at
	`, from, to)
}

func (r *BillRepository) query(ctx context.Context, query string, args ...any) ([]domain.Bill, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	bills := []domain.Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}

	return bills, rows.Err()
}

// UpdateStatus writes bill's settlement fields only if the stored status is
// still from.
func (r *BillRepository) UpdateStatus(ctx context.Context, bill *domain.Bill, from domain.BillStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE billing.bills
		SET status = $1, paid_at = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`, bill.Status, bill.PaidAt, bill.UpdatedAt, bill.ID, from)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrStaleStatus
	}

	return nil
}
