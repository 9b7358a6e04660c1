package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
	"github.com/joao-fontenele/restaurant-pos/internal/telemetry"
	"github.com/joao-fontenele/restaurant-pos/internal/workflow"
)

var tracer = otel.Tracer("github.com/joao-fontenele/restaurant-pos/internal/billing")

type Repository interface {
	Create(ctx context.Context, bill *domain.Bill) error
	ExistsForOrder(ctx context.Context, orderID string) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Bill, error)
	List(ctx context.Context) ([]domain.Bill, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.Bill, error)
	UpdateStatus(ctx context.Context, bill *domain.Bill, from domain.BillStatus) error
}

// OrderSource resolves the order a bill is derived from.
type OrderSource interface {
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
}

type Service struct {
	repo     Repository
	orders   OrderSource
	counters *telemetry.Counters
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, orders OrderSource, logger *slog.Logger) (*Service, error) {
	counters, err := telemetry.NewCounters()
	if err != nil {
		return nil, fmt.Errorf("create counters: %w", err)
	}
	return &Service{
		repo:     repo,
		orders:   orders,
		counters: counters,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// CreateBill derives and stores the bill for orderID. The existence check
// gives a readable error in the common case; the unique index on order_id
// settles concurrent attempts.
func (s *Service) CreateBill(ctx context.Context, orderID string, in BillInput) (*domain.Bill, error) {
	ctx, span := tracer.Start(ctx, "billing.CreateBill")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	billed, err := s.repo.ExistsForOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("check existing bill: %w", err)
	}

	bill, err := DeriveBill(*order, in, billed, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &bill); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("bill.id", bill.ID))
	s.counters.BillsDerived.Add(ctx, 1, metric.WithAttributes(attribute.String("payment_method", string(bill.PaymentMethod))))
	s.logger.InfoContext(ctx, "bill created", "bill_id", bill.ID, "bill_number", bill.BillNumber, "order_id", orderID, "total", bill.TotalAmount)
	return &bill, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Bill, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Bill, error) {
	return s.repo.List(ctx)
}

func (s *Service) Settle(ctx context.Context, id string, target domain.BillStatus) (*domain.Bill, error) {
	ctx, span := tracer.Start(ctx, "billing.Settle")
	defer span.End()
	span.SetAttributes(attribute.String("bill.id", id), attribute.String("bill.target_status", string(target)))

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := current.Status
	updated, err := workflow.SettleBill(*current, target, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, &updated, from); err != nil {
		if !errors.Is(err, ErrStaleStatus) {
			return nil, fmt.Errorf("update bill status: %w", err)
		}
		latest, getErr := s.repo.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, &domain.Error{
			Kind: domain.ErrIllegalTransition, Op: "settle", Entity: "bill", ID: id,
			State: string(latest.Status), Detail: "bill was changed concurrently", Err: err,
		}
	}

	s.counters.BillSettlements.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(target))))
	s.logger.InfoContext(ctx, "bill settled", "bill_id", id, "from", from, "to", target)
	return &updated, nil
}

// DailySummary aggregates paid bills created on day.
func (s *Service) DailySummary(ctx context.Context, day time.Time) (domain.SalesSummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	bills, err := s.repo.ListCreatedBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return domain.SalesSummary{}, err
	}
	return Summarize(bills, start), nil
}
