package workflow

import (
	"fmt"
	"time"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

var billTransitions = map[domain.BillStatus][]domain.BillStatus{
	domain.BillStatusPending: {domain.BillStatusPaid, domain.BillStatusCancelled},
	domain.BillStatusPaid:    {domain.BillStatusRefunded},
}

// SettleBill applies a settlement status change to bill.
func SettleBill(bill domain.Bill, target domain.BillStatus, now time.Time) (domain.Bill, error) {
	if !target.Valid() {
		return domain.Bill{}, &domain.Error{
			Kind: domain.ErrInvalidInput, Op: "settle", Entity: "bill", ID: bill.ID,
			State: string(bill.Status), Detail: fmt.Sprintf("unknown status %q", target),
		}
	}

	if !allowed(billTransitions, bill.Status, target) {
		return domain.Bill{}, &domain.Error{
			Kind: domain.ErrIllegalTransition, Op: "settle", Entity: "bill", ID: bill.ID,
			State: string(bill.Status), Detail: fmt.Sprintf("cannot move from %s to %s", bill.Status, target),
		}
	}

	bill.Status = target
	bill.UpdatedAt = now
	if target == domain.BillStatusPaid {
		paid := now
		bill.PaidAt = &paid
	}
	return bill, nil
}
