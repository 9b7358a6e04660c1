package reservations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

// ErrStaleStatus means the reservation left the expected status before the update landed.
var ErrStaleStatus = errors.New("reservation status changed concurrently")

const (
	uniqueViolation     = "23505"
	tableSlotConstraint = "reservations_table_slot_key"
)

const reservationColumns = `id, customer_id, table_id, customer_name, customer_phone, customer_email, party_size,
	to_char(reservation_date, 'YYYY-MM-DD'), to_char(reservation_time, 'HH24:MI'),
	status, special_requests, notes, created_at, updated_at`

type ReservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (domain.Reservation, error) {
	var r domain.Reservation
	err := row.Scan(&r.ID, &r.CustomerID, &r.TableID, &r.CustomerName, &r.CustomerPhone, &r.CustomerEmail,
		&r.PartySize, &r.Date, &r.Time, &r.Status, &r.SpecialRequests, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	res.ID = uuid.New().String()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reservations.reservations (id, customer_id, table_id, customer_name, customer_phone, customer_email,
			party_size, reservation_date, reservation_time, status, special_requests, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, res.ID, res.CustomerID, res.TableID, res.CustomerName, res.CustomerPhone, res.CustomerEmail,
		res.PartySize, res.Date, res.Time, res.Status, res.SpecialRequests, res.Notes, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return slotTaken(err, res, "insert reservation")
	}

	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NotFound("reservation", id)
	}

	res, err := scanReservation(r.db.QueryRowContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations.reservations
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("reservation", id)
		}
		return nil, err
	}

	return &res, nil
}

// List returns reservations in slot order. An empty date lists every day.
func (r *ReservationRepository) List(ctx context.Context, date string) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations.reservations`
	var args []any
	if date != "" {
		query += ` WHERE reservation_date = $1`
		args = append(args, date)
	}
	query += ` ORDER BY reservation_date, reservation_time, customer_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	list := []domain.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, res)
	}

	return list, rows.Err()
}

// Update rewrites the booking details. Status only moves through UpdateStatus.
func (r *ReservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	if _, err := uuid.Parse(res.ID); err != nil {
		return domain.NotFound("reservation", res.ID)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE reservations.reservations
		SET customer_id = $2, table_id = $3, customer_name = $4, customer_phone = $5, customer_email = $6,
			party_size = $7, reservation_date = $8, reservation_time = $9, special_requests = $10, notes = $11,
			updated_at = $12
		WHERE id = $1
	`, res.ID, res.CustomerID, res.TableID, res.CustomerName, res.CustomerPhone, res.CustomerEmail,
		res.PartySize, res.Date, res.Time, res.SpecialRequests, res.Notes, res.UpdatedAt)
	if err != nil {
		return slotTaken(err, res, "update reservation")
	}

	return requireRow(result, res.ID)
}

// UpdateStatus writes res's new status only if the stored status is still
// from, returning ErrStaleStatus otherwise.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, res *domain.Reservation, from domain.ReservationStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE reservations.reservations
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`, res.Status, res.UpdatedAt, res.ID, from)
	if err != nil {
		return slotTaken(err, res, "update reservation status")
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

func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.NotFound("reservation", id)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations.reservations WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return requireRow(result, id)
}

func slotTaken(err error, res *domain.Reservation, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == tableSlotConstraint {
		return tableConflict(res, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func tableConflict(res *domain.Reservation, err error) error {
	table := ""
	if res.TableID != nil {
		table = *res.TableID
	}
	return &domain.Error{
		Kind: domain.ErrPreconditionFailed, Op: "reserve table", Entity: "table", ID: table,
		Detail: fmt.Sprintf("already reserved for %s at %s", res.Date, res.Time), Err: err,
	}
}

func requireRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.NotFound("reservation", id)
	}

	return nil
}
