package orders

import (
	"context"
	"errors"
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
	"github.com/joao-fontenele/restaurant-pos/internal/workflow"
)

var tracer = otel.Tracer("github.com/joao-fontenele/restaurant-pos/internal/orders")

// Repository is the persistence the orders service needs.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, statuses []domain.OrderStatus) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, order *domain.Order, from domain.OrderStatus) error
}

const (
	ViewActive    = "active"
	ViewReady     = "ready"
	ViewCompleted = "completed"
)

// StatusesForView maps a dashboard view to the statuses it shows. The empty
// view shows every order.
func StatusesForView(view string) ([]domain.OrderStatus, error) {
	switch view {
	case "":
		return nil, nil
	case ViewActive:
		return []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusConfirmed, domain.OrderStatusPreparing}, nil
	case ViewReady:
		return []domain.OrderStatus{domain.OrderStatusReady}, nil
	case ViewCompleted:
		return []domain.OrderStatus{domain.OrderStatusDelivered, domain.OrderStatusCancelled}, nil
	default:
		return nil, domain.InvalidInput("list orders", fmt.Sprintf("unknown view %q", view))
	}
}

type CreateOrderInput struct {
	Type                domain.OrderType
	TableID             *string
	CustomerID          *string
	SpecialInstructions string
	DiscountPercentage  decimal.Decimal
	TipAmount           decimal.Decimal
	Items               []domain.LineItem
}

type Service struct {
	repo      Repository
	publisher messaging.Publisher
	taxRate   decimal.Decimal
	counters  *telemetry.Counters
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the orders service. publisher may be nil, in which case
// no events are emitted.
func NewService(repo Repository, publisher messaging.Publisher, taxRate decimal.Decimal, logger *slog.Logger) (*Service, error) {
	counters, err := telemetry.NewCounters()
	if err != nil {
		return nil, fmt.Errorf("create counters: %w", err)
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		taxRate:   taxRate,
		counters:  counters,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Quote computes the totals an order with these items would carry.
func (s *Service) Quote(items []domain.LineItem, discountPercentage, tip decimal.Decimal) (domain.OrderTotals, error) {
	return pricing.ComputeTotals(items, pricing.Adjustments{
		TaxRate:            s.taxRate,
		DiscountPercentage: discountPercentage,
		TipAmount:          tip,
	})
}

func (s *Service) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "orders.Create")
	defer span.End()

	now := s.now()
	order := &domain.Order{
		OrderNumber:         fmt.Sprintf("ORD-%d", now.UnixMilli()),
		Type:                in.Type,
		Status:              domain.OrderStatusPending,
		TableID:             in.TableID,
		CustomerID:          in.CustomerID,
		SpecialInstructions: in.SpecialInstructions,
		Items:               in.Items,
		CreatedAt:           now,
	}
	if order.Type != domain.OrderTypeDineIn {
		order.TableID = nil
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	totals, err := s.Quote(order.Items, in.DiscountPercentage, in.TipAmount)
	if err != nil {
		return nil, err
	}
	order.Totals = totals

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	span.SetAttributes(attribute.String("order.id", order.ID), attribute.String("order.type", string(order.Type)))
	s.counters.OrdersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("order.type", string(order.Type))))
	s.logger.InfoContext(ctx, "order created", "order_id", order.ID, "order_number", order.OrderNumber, "total", order.Totals.TotalAmount)
	return order, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, view string) ([]domain.Order, error) {
	statuses, err := StatusesForView(view)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, statuses)
}

// UpdateStatus applies a workflow transition and persists it only if no one
// else moved the order in between.
func (s *Service) UpdateStatus(ctx context.Context, id string, target domain.OrderStatus) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "orders.UpdateStatus")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id), attribute.String("order.target_status", string(target)))

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tr, err := workflow.TransitionOrder(*current, target, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, &tr.Order, tr.From); err != nil {
		if !errors.Is(err, ErrStaleStatus) {
			return nil, fmt.Errorf("update order status: %w", err)
		}
		latest, getErr := s.repo.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, &domain.Error{
			Kind: domain.ErrIllegalTransition, Op: "transition", Entity: "order", ID: id,
			State: string(latest.Status), Detail: "order was changed concurrently", Err: err,
		}
	}

	s.counters.OrderTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", string(tr.From)),
		attribute.String("to", string(target)),
	))
	s.logger.InfoContext(ctx, "order status updated", "order_id", id, "from", tr.From, "to", target)

	if tr.Delivered != nil && s.publisher != nil {
		if err := s.publisher.Publish(ctx, domain.TopicOrderDelivered, id, tr.Delivered); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order delivered event", "error", err, "order_id", id)
		}
	}

	return &tr.Order, nil
}
