package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

const itemColumns = `id, name, description, category, unit, current_stock, minimum_stock, maximum_stock,
	unit_cost, supplier_id, last_restocked_at, created_at, updated_at`

type InventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Category, &item.Unit,
		&item.CurrentStock, &item.MinimumStock, &item.MaximumStock,
		&item.UnitCost, &item.SupplierID, &item.LastRestockedAt, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

func (r *InventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	item.ID = uuid.New().String()
	item.UnitCost = item.UnitCost.Round(2)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory.items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, item.ID, item.Name, item.Description, item.Category, item.Unit,
		item.CurrentStock, item.MinimumStock, item.MaximumStock,
		item.UnitCost, item.SupplierID, item.LastRestockedAt, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert inventory item: %w", err)
	}

	return nil
}

func (r *InventoryRepository) GetByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NotFound("inventory item", id)
	}

	item, err := scanItem(r.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory.items
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("inventory item", id)
		}
		return nil, err
	}

	return &item, nil
}

func (r *InventoryRepository) ListAll(ctx context.Context) ([]domain.InventoryItem, error) {
	return r.query(ctx, `
		SELECT `+itemColumns+`
		FROM inventory.items
		ORDER BY name
	`)
}

// ListLowStock returns items at or below their minimum, emptiest first.
func (r *InventoryRepository) ListLowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	return r.query(ctx, `
		SELECT `+itemColumns+`
		FROM inventory.items
		WHERE current_stock <= minimum_stock
		ORDER BY current_stock, name
	`)
}

func (r *InventoryRepository) query(ctx context.Context, query string, args ...any) ([]domain.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []domain.InventoryItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Update rewrites the descriptive fields of item. Stock levels only move
// through Adjust.
func (r *InventoryRepository) Update(ctx context.Context, item *domain.InventoryItem) error {
	if _, err := uuid.Parse(item.ID); err != nil {
		return domain.NotFound("inventory item", item.ID)
	}
	item.UnitCost = item.UnitCost.Round(2)

	result, err := r.db.ExecContext(ctx, `
		UPDATE inventory.items
		SET name = $2, description = $3, category = $4, unit = $5, minimum_stock = $6,
			maximum_stock = $7, unit_cost = $8, supplier_id = $9, updated_at = $10
		WHERE id = $1
	`, item.ID, item.Name, item.Description, item.Category, item.Unit, item.MinimumStock,
		item.MaximumStock, item.UnitCost, item.SupplierID, item.UpdatedAt)
	if err != nil {
		return err
	}

	return requireRow(result, item.ID)
}

func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.NotFound("inventory item", id)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM inventory.items WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return requireRow(result, id)
}

// Adjust locks the item row, hands the current item to apply and stores the
// stock fields it returns. Nothing is written when apply fails.
func (r *InventoryRepository) Adjust(ctx context.Context, id string, apply func(domain.InventoryItem) (domain.InventoryItem, error)) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.NotFound("inventory item", id)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	item, err := scanItem(tx.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory.items
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("inventory item", id)
		}
		return err
	}

	updated, err := apply(item)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE inventory.items
		SET current_stock = $2, last_restocked_at = $3, updated_at = $4
		WHERE id = $1
	`, id, updated.CurrentStock, updated.LastRestockedAt, updated.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}

	return tx.Commit()
}

func requireRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.NotFound("inventory item", id)
	}

	return nil
}
