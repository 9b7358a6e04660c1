package reservations

import (
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
	"github.com/joao-fontenele/restaurant-pos/internal/httpx"
	"github.com/joao-fontenele/restaurant-pos/internal/telemetry"
)

type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /reservations", telemetry.WithHTTPRoute(h.HandleCreate))
	mux.HandleFunc("GET /reservations", telemetry.WithHTTPRoute(h.HandleList))
	mux.HandleFunc("GET /reservations/{id}", telemetry.WithHTTPRoute(h.HandleGet))
	mux.HandleFunc("PUT /reservations/{id}", telemetry.WithHTTPRoute(h.HandleUpdate))
	mux.HandleFunc("PATCH /reservations/{id}/status", telemetry.WithHTTPRoute(h.HandleUpdateStatus))
	mux.HandleFunc("DELETE /reservations/{id}", telemetry.WithHTTPRoute(h.HandleDelete))
}

type reservationRequest struct {
	CustomerID      *string `json:"customer_id"`
	TableID         *string `json:"table_id"`
	CustomerName    string  `json:"customer_name" validate:"required,max=120"`
	CustomerPhone   string  `json:"customer_phone" validate:"max=32"`
	CustomerEmail   string  `json:"customer_email" validate:"omitempty,email"`
	PartySize       int     `json:"party_size" validate:"min=1,max=100"`
	Date            string  `json:"reservation_date" validate:"required,datetime=2006-01-02"`
	Time            string  `json:"reservation_time" validate:"required,datetime=15:04"`
	SpecialRequests string  `json:"special_requests" validate:"max=500"`
	Notes           string  `json:"notes" validate:"max=500"`
}

func (req reservationRequest) input() ReservationInput {
	return ReservationInput{
		CustomerID:      req.CustomerID,
		TableID:         req.TableID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		PartySize:       req.PartySize,
		Date:            req.Date,
		Time:            req.Time,
		SpecialRequests: req.SpecialRequests,
		Notes:           req.Notes,
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	res, err := h.svc.Create(r.Context(), req.input())
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusCreated, res)
}

// HandleList serves GET /reservations?date=YYYY-MM-DD; without a date every
// reservation is listed.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "reservations listed", "count", len(list))
	httpx.WriteJSON(w, h.logger, http.StatusOK, list)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, res)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	res, err := h.svc.Update(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, res)
}

type updateStatusRequest struct {
	Status domain.ReservationStatus `json:"status" validate:"required"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	res, err := h.svc.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, res)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
