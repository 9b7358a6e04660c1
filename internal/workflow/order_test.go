package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

var allStatuses = []domain.OrderStatus{
	domain.OrderStatusPending,
	domain.OrderStatusConfirmed,
	domain.OrderStatusPreparing,
	domain.OrderStatusReady,
	domain.OrderStatusDelivered,
	domain.OrderStatusCancelled,
}

var legal = map[[2]domain.OrderStatus]bool{
	{domain.OrderStatusPending, domain.OrderStatusConfirmed}:   true,
	{domain.OrderStatusConfirmed, domain.OrderStatusPreparing}: true,
	{domain.OrderStatusPreparing, domain.OrderStatusReady}:     true,
	{domain.OrderStatusReady, domain.OrderStatusDelivered}:     true,
	{domain.OrderStatusPending, domain.OrderStatusCancelled}:   true,
	{domain.OrderStatusConfirmed, domain.OrderStatusCancelled}: true,
	{domain.OrderStatusPreparing, domain.OrderStatusCancelled}: true,
	{domain.OrderStatusReady, domain.OrderStatusCancelled}:     true,
}

func TestTransitionOrder_Table(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			name := string(from) + "->" + string(to)
			t.Run(name, func(t *testing.T) {
				order := domain.Order{ID: "order-1", Status: from}
				result, err := TransitionOrder(order, to, now)

				if legal[[2]domain.OrderStatus{from, to}] {
					if err != nil {
						t.Fatalf("expected legal transition, got %v", err)
					}
					if result.Order.Status != to {
						t.Errorf("expected status %s, got %s", to, result.Order.Status)
					}
					if result.From != from {
						t.Errorf("expected from %s, got %s", from, result.From)
					}
					return
				}

				if !errors.Is(err, domain.ErrIllegalTransition) {
					t.Fatalf("expected ErrIllegalTransition, got %v", err)
				}
				var derr *domain.Error
				if !errors.As(err, &derr) {
					t.Fatalf("expected *domain.Error, got %T", err)
				}
				if derr.ID != "order-1" || derr.State != string(from) {
					t.Errorf("expected context id=order-1 state=%s, got id=%s state=%s", from, derr.ID, derr.State)
				}
			})
		}
	}
}

func TestTransitionOrder_PendingToReady(t *testing.T) {
	_, err := TransitionOrder(domain.Order{ID: "o", Status: domain.OrderStatusPending}, domain.OrderStatusReady, time.Now())
	if !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestTransitionOrder_Delivered(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	order := domain.Order{ID: "o-9", OrderNumber: "ORD-1", Status: domain.OrderStatusReady, Type: domain.OrderTypeTakeout}

	result, err := TransitionOrder(order, domain.OrderStatusDelivered, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Delivered == nil {
		t.Fatal("expected delivered event")
	}
	if result.Delivered.OrderID != "o-9" || result.Delivered.OrderNumber != "ORD-1" {
		t.Errorf("unexpected event: %+v", result.Delivered)
	}
	if result.Order.CompletedAt == nil || !result.Order.CompletedAt.Equal(now) {
		t.Errorf("expected completed_at %v, got %v", now, result.Order.CompletedAt)
	}
	if order.Status != domain.OrderStatusReady {
		t.Errorf("expected input order to be left untouched, got %s", order.Status)
	}
}

func TestTransitionOrder_NoEventBeforeDelivery(t *testing.T) {
	result, err := TransitionOrder(domain.Order{Status: domain.OrderStatusPending}, domain.OrderStatusConfirmed, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Delivered != nil {
		t.Errorf("expected no delivered event, got %+v", result.Delivered)
	}
}

func TestTransitionOrder_UnknownStatus(t *testing.T) {
	_, err := TransitionOrder(domain.Order{Status: domain.OrderStatusPending}, "served", time.Now())
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNextStatuses(t *testing.T) {
	if got := NextStatuses(domain.OrderStatusDelivered); len(got) != 0 {
		t.Errorf("expected no next statuses for delivered, got %v", got)
	}
	got := NextStatuses(domain.OrderStatusPending)
	if len(got) != 2 || got[0] != domain.OrderStatusConfirmed || got[1] != domain.OrderStatusCancelled {
		t.Errorf("unexpected next statuses for pending: %v", got)
	}
}
