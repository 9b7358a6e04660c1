package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

// ErrStaleStatus means the order left the expected status before the update landed.
var ErrStaleStatus = errors.New("order status changed concurrently")

const orderColumns = `id, order_number, order_type, status, table_id, customer_id, special_instructions,
	subtotal, tax_amount, discount_amount, discount_percentage, tip_amount, total_amount,
	created_at, updated_at, completed_at`

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.Type, &o.Status, &o.TableID, &o.CustomerID, &o.SpecialInstructions,
		&o.Totals.Subtotal, &o.Totals.TaxAmount, &o.Totals.DiscountAmount, &o.Totals.DiscountPercentage,
		&o.Totals.TipAmount, &o.Totals.TotalAmount,
		&o.CreatedAt, &o.UpdatedAt, &o.CompletedAt)
	return o, err
}

// Create stores order and its items in one transaction, assigning ids.
// Totals are stored rounded to cents.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	order.ID = uuid.New().String()
	order.Totals = order.Totals.Rounded()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders.orders (id, order_number, order_type, status, table_id, customer_id, special_instructions,
			subtotal, tax_amount, discount_amount, discount_percentage, tip_amount, total_amount,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
	`, order.ID, order.OrderNumber, order.Type, order.Status, order.TableID, order.CustomerID, order.SpecialInstructions,
		order.Totals.Subtotal, order.Totals.TaxAmount, order.Totals.DiscountAmount, order.Totals.DiscountPercentage,
		order.Totals.TipAmount, order.Totals.TotalAmount, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO orders.order_items (id, order_id, position, menu_item_id, name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New().String(), order.ID, i, item.MenuItemID, item.Name, item.UnitPrice.Round(2), item.Quantity)
		if err != nil {
			return fmt.Errorf("insert order item %d: %w", i, err)
		}
	}

	order.UpdatedAt = order.CreatedAt
	return tx.Commit()
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NotFound("order", id)
	}

	order, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders.orders
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("order", id)
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT menu_item_id, name, unit_price, quantity
		FROM orders.order_items
		WHERE order_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	order.Items = []domain.LineItem{}
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.MenuItemID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &order, nil
}

// List returns orders newest first, restricted to statuses when non-empty.
// Items are loaded with a single ANY($1) query.
func (r *OrderRepository) List(ctx context.Context, statuses []domain.OrderStatus) ([]domain.Order, error) {
	filter := make([]string, len(statuses))
	for i, s := range statuses {
		filter[i] = string(s)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders.orders
		WHERE cardinality($1::text[]) = 0 OR status = ANY($1)
		ORDER BY created_at DESC
	`, pq.Array(filter))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		order.Items = []domain.LineItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, menu_item_id, name, unit_price, quantity
		FROM orders.order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.LineItem
		if err := itemRows.Scan(&orderID, &item.MenuItemID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

// UpdateStatus writes order's new status only if the stored status is still
// from, returning ErrStaleStatus otherwise.
func (r *OrderRepository) UpdateStatus(ctx context.Context, order *domain.Order, from domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders.orders
		SET status = $1, updated_at = $2, completed_at = $3
		WHERE id = $4 AND status = $5
	`, order.Status, order.UpdatedAt, order.CompletedAt, order.ID, from)
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
