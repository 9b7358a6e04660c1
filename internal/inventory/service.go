package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
	"github.com/joao-fontenele/restaurant-pos/internal/messaging"
	"github.com/joao-fontenele/restaurant-pos/internal/pricing"
	"github.com/joao-fontenele/restaurant-pos/internal/telemetry"
)

var tracer = otel.Tracer("github.com/joao-fontenele/restaurant-pos/internal/inventory")

type Repository interface {
	Create(ctx context.Context, item *domain.InventoryItem) error
	GetByID(ctx context.Context, id string) (*domain.InventoryItem, error)
	ListAll(ctx context.Context) ([]domain.InventoryItem, error)
	ListLowStock(ctx context.Context) ([]domain.InventoryItem, error)
	Update(ctx context.Context, item *domain.InventoryItem) error
	Delete(ctx context.Context, id string) error
	Adjust(ctx context.Context, id string, apply func(domain.InventoryItem) (domain.InventoryItem, error)) error
}

// ItemInput holds the operator-editable fields of an inventory item.
type ItemInput struct {
	Name         string
	Description  string
	Category     string
	Unit         string
	CurrentStock int
	MinimumStock int
	MaximumStock *int
	UnitCost     decimal.Decimal
	SupplierID   *string
}

func (in ItemInput) check(op string) error {
	if in.MinimumStock < 0 {
		return domain.InvalidInput(op, "minimum stock must not be negative")
	}
	if in.CurrentStock < 0 {
		return domain.InvalidInput(op, "current stock must not be negative")
	}
	if in.UnitCost.IsNegative() {
		return domain.InvalidInput(op, "unit cost must not be negative")
	}
	if err := pricing.CheckCents("unit cost", in.UnitCost); err != nil {
		return err
	}
	if in.MaximumStock != nil && *in.MaximumStock < in.MinimumStock {
		return domain.InvalidInput(op, "maximum stock must not be below minimum stock")
	}
	return nil
}

type Service struct {
	repo      Repository
	publisher messaging.Publisher
	counters  *telemetry.Counters
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the inventory service. A nil publisher disables low-stock alerts.
func NewService(repo Repository, publisher messaging.Publisher, logger *slog.Logger) (*Service, error) {
	counters, err := telemetry.NewCounters()
	if err != nil {
		return nil, fmt.Errorf("create counters: %w", err)
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		counters:  counters,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Service) Create(ctx context.Context, in ItemInput) (ItemView, error) {
	if err := in.check("create inventory item"); err != nil {
		return ItemView{}, err
	}

	now := s.now()
	item := domain.InventoryItem{
		Name:         in.Name,
		Description:  in.Description,
		Category:     in.Category,
		Unit:         in.Unit,
		CurrentStock: in.CurrentStock,
		MinimumStock: in.MinimumStock,
		MaximumStock: in.MaximumStock,
		UnitCost:     in.UnitCost,
		SupplierID:   in.SupplierID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if item.CurrentStock > 0 {
		item.LastRestockedAt = &now
	}

	if err := s.repo.Create(ctx, &item); err != nil {
		return ItemView{}, err
	}

	s.logger.InfoContext(ctx, "inventory item created", "item_id", item.ID, "name", item.Name)
	return viewOf(item), nil
}

func (s *Service) Get(ctx context.Context, id string) (ItemView, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ItemView{}, err
	}
	return viewOf(*item), nil
}

func (s *Service) List(ctx context.Context) ([]ItemView, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return viewsOf(items), nil
}

func (s *Service) LowStock(ctx context.Context) ([]ItemView, error) {
	items, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return viewsOf(items), nil
}

func (s *Service) Valuation(ctx context.Context) (Valuation, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return Valuation{}, err
	}
	return Value(items), nil
}

// Update replaces the descriptive fields of an item. CurrentStock in the
// input is ignored; stock moves only through Adjust. Raising MinimumStock can
// still push the item into Low Stock, which raises the same alert as Adjust.
func (s *Service) Update(ctx context.Context, id string, in ItemInput) (ItemView, error) {
	in.CurrentStock = 0
	if err := in.check("update inventory item"); err != nil {
		return ItemView{}, err
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ItemView{}, err
	}
	previous := item.Tier()

	item.Name = in.Name
	item.Description = in.Description
	item.Category = in.Category
	item.Unit = in.Unit
	item.MinimumStock = in.MinimumStock
	item.MaximumStock = in.MaximumStock
	item.UnitCost = in.UnitCost
	item.SupplierID = in.SupplierID
	item.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, item); err != nil {
		return ItemView{}, err
	}

	s.logger.InfoContext(ctx, "inventory item updated", "item_id", id)
	if event := LowStockCrossing(previous, *item, item.UpdatedAt); event != nil {
		s.alertLowStock(ctx, event)
	}
	return viewOf(*item), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "inventory item deleted", "item_id", id)
	return nil
}

// Adjust moves an item's stock by delta under a row lock and raises a
// low-stock alert when the item crosses into Low Stock or below.
func (s *Service) Adjust(ctx context.Context, id string, delta int) (ItemView, error) {
	ctx, span := tracer.Start(ctx, "inventory.Adjust")
	defer span.End()
	span.SetAttributes(attribute.String("inventory.item_id", id), attribute.Int("inventory.delta", delta))

	var adj Adjustment
	err := s.repo.Adjust(ctx, id, func(item domain.InventoryItem) (domain.InventoryItem, error) {
		var err error
		adj, err = AdjustStock(item, delta, s.now())
		return adj.Item, err
	})
	if err != nil {
		return ItemView{}, err
	}

	direction := "consume"
	if delta > 0 {
		direction = "restock"
	}
	s.counters.StockAdjustments.Add(ctx, 1, metric.WithAttributes(attribute.String("direction", direction)))
	s.logger.InfoContext(ctx, "stock adjusted", "item_id", id, "delta", delta,
		"current_stock", adj.Item.CurrentStock, "tier", adj.Item.Tier())

	if adj.LowStock != nil {
		s.alertLowStock(ctx, adj.LowStock)
	}

	return viewOf(adj.Item), nil
}

func (s *Service) alertLowStock(ctx context.Context, event *domain.LowStockEvent) {
	s.counters.LowStockAlerts.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", string(event.Tier))))
	s.logger.WarnContext(ctx, "item crossed into low stock", "item_id", event.ItemID, "tier", event.Tier)
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, domain.TopicInventoryLowStock, event.ItemID, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish low stock event", "error", err, "item_id", event.ItemID)
	}
}
