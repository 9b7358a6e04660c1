// Package reservations books tables for parties and walks each booking from
// pending through seating to completion.
package reservations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
	"github.com/joao-fontenele/restaurant-pos/internal/telemetry"
	"github.com/joao-fontenele/restaurant-pos/internal/workflow"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var tracer = otel.Tracer("github.com/joao-fontenele/restaurant-pos/internal/reservations")

type Repository interface {
	Create(ctx context.Context, res *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	List(ctx context.Context, date string) ([]domain.Reservation, error)
	Update(ctx context.Context, res *domain.Reservation) error
	UpdateStatus(ctx context.Context, res *domain.Reservation, from domain.ReservationStatus) error
	Delete(ctx context.Context, id string) error
}

// ReservationInput holds the bookable details of a reservation.
type ReservationInput struct {
	CustomerID      *string
	TableID         *string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	PartySize       int
	Date            string
	Time            string
	SpecialRequests string
	Notes           string
}

func (in ReservationInput) check(op string) error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return domain.InvalidInput(op, "customer name is required")
	}
	if in.PartySize < 1 {
		return domain.InvalidInput(op, fmt.Sprintf("party size must be at least 1, got %d", in.PartySize))
	}
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return domain.InvalidInput(op, fmt.Sprintf("reservation date %q is not YYYY-MM-DD", in.Date))
	}
	if _, err := time.Parse(timeLayout, in.Time); err != nil {
		return domain.InvalidInput(op, fmt.Sprintf("reservation time %q is not HH:MM", in.Time))
	}
	return nil
}

func (in ReservationInput) apply(res *domain.Reservation) {
	res.CustomerID = in.CustomerID
	res.TableID = in.TableID
	if res.TableID != nil && *res.TableID == "" {
		res.TableID = nil
	}
	res.CustomerName = strings.TrimSpace(in.CustomerName)
	res.CustomerPhone = in.CustomerPhone
	res.CustomerEmail = in.CustomerEmail
	res.PartySize = in.PartySize
	res.Date = in.Date
	res.Time = in.Time
	res.SpecialRequests = in.SpecialRequests
	res.Notes = in.Notes
}

type Service struct {
	repo     Repository
	counters *telemetry.Counters
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) (*Service, error) {
	counters, err := telemetry.NewCounters()
	if err != nil {
		return nil, fmt.Errorf("create counters: %w", err)
	}
	return &Service{
		repo:     repo,
		counters: counters,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Create books a new pending reservation. A table already held for the same
// slot is reported as ErrPreconditionFailed.
func (s *Service) Create(ctx context.Context, in ReservationInput) (*domain.Reservation, error) {
	ctx, span := tracer.Start(ctx, "reservations.Create")
	defer span.End()

	if err := in.check("create reservation"); err != nil {
		return nil, err
	}

	now := s.now()
	res := &domain.Reservation{Status: domain.ReservationStatusPending, CreatedAt: now, UpdatedAt: now}
	in.apply(res)

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("reservation.id", res.ID), attribute.Int("reservation.party_size", res.PartySize))
	s.logger.InfoContext(ctx, "reservation created", "reservation_id", res.ID,
		"date", res.Date, "time", res.Time, "party_size", res.PartySize)
	return res, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns the reservations for date, or all of them when date is empty.
func (s *Service) List(ctx context.Context, date string) ([]domain.Reservation, error) {
	if date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return nil, domain.InvalidInput("list reservations", fmt.Sprintf("date %q is not YYYY-MM-DD", date))
		}
	}
	return s.repo.List(ctx, date)
}

// Update replaces the booking details. Completed and cancelled reservations
// are closed to edits.
func (s *Service) Update(ctx context.Context, id string, in ReservationInput) (*domain.Reservation, error) {
	if err := in.check("update reservation"); err != nil {
		return nil, err
	}

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status.Terminal() {
		return nil, &domain.Error{
			Kind: domain.ErrIllegalTransition, Op: "update", Entity: "reservation", ID: id,
			State: string(res.Status), Detail: fmt.Sprintf("reservation is already %s", res.Status),
		}
	}

	in.apply(res)
	res.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "reservation updated", "reservation_id", id)
	return res, nil
}

// UpdateStatus applies a reservation transition and persists it only if no
// one else moved the reservation in between.
func (s *Service) UpdateStatus(ctx context.Context, id string, target domain.ReservationStatus) (*domain.Reservation, error) {
	ctx, span := tracer.Start(ctx, "reservations.UpdateStatus")
	defer span.End()
	span.SetAttributes(attribute.String("reservation.id", id), attribute.String("reservation.target_status", string(target)))

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := workflow.TransitionReservation(*current, target, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, &next, current.Status); err != nil {
		if !errors.Is(err, ErrStaleStatus) {
			return nil, err
		}
		latest, getErr := s.repo.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, &domain.Error{
			Kind: domain.ErrIllegalTransition, Op: "transition", Entity: "reservation", ID: id,
			State: string(latest.Status), Detail: "reservation was changed concurrently", Err: err,
		}
	}

	s.counters.ReservationTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", string(current.Status)),
		attribute.String("to", string(target)),
	))
	s.logger.InfoContext(ctx, "reservation status updated", "reservation_id", id, "from", current.Status, "to", target)
	return &next, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "reservation deleted", "reservation_id", id)
	return nil
}
