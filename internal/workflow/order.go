// Package workflow is the single authority on legal order, bill and
// reservation status changes.
package workflow

import (
	"fmt"
	"slices"
	"time"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

var orderTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending:   {domain.OrderStatusConfirmed, domain.OrderStatusCancelled},
	domain.OrderStatusConfirmed: {domain.OrderStatusPreparing, domain.OrderStatusCancelled},
	domain.OrderStatusPreparing: {domain.OrderStatusReady, domain.OrderStatusCancelled},
	domain.OrderStatusReady:     {domain.OrderStatusDelivered, domain.OrderStatusCancelled},
}

// NextStatuses lists the statuses an order in from may move to.
func NextStatuses(from domain.OrderStatus) []domain.OrderStatus {
	next := orderTransitions[from]
	out := make([]domain.OrderStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether an order may move directly from one status to the other.
func CanTransition(from, to domain.OrderStatus) bool {
	return allowed(orderTransitions, from, to)
}

func allowed[S comparable](table map[S][]S, from, to S) bool {
	return slices.Contains(table[from], to)
}

// Transition is the outcome of a successful status change.
type Transition struct {
	Order     domain.Order
	From      domain.OrderStatus
	Delivered *domain.OrderDeliveredEvent
}

// TransitionOrder moves order to target, returning the updated copy. Reaching
// delivered stamps CompletedAt and yields the bill-eligible event.
func TransitionOrder(order domain.Order, target domain.OrderStatus, now time.Time) (Transition, error) {
	if !target.Valid() {
		return Transition{}, &domain.Error{
			Kind: domain.ErrInvalidInput, Op: "transition", Entity: "order", ID: order.ID,
			State: string(order.Status), Detail: fmt.Sprintf("unknown status %q", target),
		}
	}
	if !CanTransition(order.Status, target) {
		detail := fmt.Sprintf("cannot move from %s to %s", order.Status, target)
		if order.Status.Terminal() {
			detail = fmt.Sprintf("order is already %s", order.Status)
		}
		return Transition{}, &domain.Error{
			Kind: domain.ErrIllegalTransition, Op: "transition", Entity: "order", ID: order.ID,
			State: string(order.Status), Detail: detail,
		}
	}

	from := order.Status
	order.Status = target
	order.UpdatedAt = now
	result := Transition{From: from}

	if target == domain.OrderStatusDelivered {
		completed := now
		order.CompletedAt = &completed
		result.Delivered = &domain.OrderDeliveredEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			OrderType:   order.Type,
			CustomerID:  order.CustomerID,
			Items:       order.Items,
			Totals:      order.Totals,
			Timestamp:   now,
		}
	}

	result.Order = order
	return result, nil
}
