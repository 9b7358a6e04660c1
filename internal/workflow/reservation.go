package workflow

import (
	"fmt"
	"time"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

// A confirmed booking can be put back to pending when the host is still
// waiting on the guest; once seated it can only complete.
var reservationTransitions = map[domain.ReservationStatus][]domain.ReservationStatus{
	domain.ReservationStatusPending:   {domain.ReservationStatusConfirmed, domain.ReservationStatusCancelled},
	domain.ReservationStatusConfirmed: {domain.ReservationStatusPending, domain.ReservationStatusSeated, domain.ReservationStatusCancelled},
	domain.ReservationStatusSeated:    {domain.ReservationStatusCompleted},
}

// TransitionReservation moves res to target and returns the updated copy.
func TransitionReservation(res domain.Reservation, target domain.ReservationStatus, now time.Time) (domain.Reservation, error) {
	if !target.Valid() {
		return domain.Reservation{}, &domain.Error{
			Kind: domain.ErrInvalidInput, Op: "transition", Entity: "reservation", ID: res.ID,
			State: string(res.Status), Detail: fmt.Sprintf("unknown status %q", target),
		}
	}
	if !allowed(reservationTransitions, res.Status, target) {
		detail := fmt.Sprintf("cannot move from %s to %s", res.Status, target)
		if res.Status.Terminal() {
			detail = fmt.Sprintf("reservation is already %s", res.Status)
		}
		return domain.Reservation{}, &domain.Error{
			Kind: domain.ErrIllegalTransition, Op: "transition", Entity: "reservation", ID: res.ID,
			State: string(res.Status), Detail: detail,
		}
	}

	res.Status = target
	res.UpdatedAt = now
	return res, nil
}
