package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusSeated    ReservationStatus = "seated"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusSeated,
		ReservationStatusCompleted, ReservationStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status change is possible.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationStatusCompleted || s == ReservationStatusCancelled
}

// HoldsTable reports whether a reservation in this status still claims its
// table for the slot.
func (s ReservationStatus) HoldsTable() bool {
	return s != ReservationStatusCancelled
}

// Reservation books a party for a date and time slot, optionally at a table.
// Date is YYYY-MM-DD and Time is HH:MM, both in the restaurant's local time.
type Reservation struct {
	ID              string            `json:"id"`
	CustomerID      *string           `json:"customer_id,omitempty"`
	TableID         *string           `json:"table_id,omitempty"`
	CustomerName    string            `json:"customer_name"`
	CustomerPhone   string            `json:"customer_phone,omitempty"`
	CustomerEmail   string            `json:"customer_email,omitempty"`
	PartySize       int               `json:"party_size"`
	Date            string            `json:"reservation_date"`
	Time            string            `json:"reservation_time"`
	Status          ReservationStatus `json:"status"`
	SpecialRequests string            `json:"special_requests,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
