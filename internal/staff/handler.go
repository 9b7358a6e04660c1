package staff

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

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
	mux.HandleFunc("POST /staff", telemetry.WithHTTPRoute(h.HandleHire))
	mux.HandleFunc("GET /staff", telemetry.WithHTTPRoute(h.HandleList))
	mux.HandleFunc("GET /staff/summary", telemetry.WithHTTPRoute(h.HandleSummary))
	mux.HandleFunc("GET /staff/{id}", telemetry.WithHTTPRoute(h.HandleGet))
	mux.HandleFunc("PUT /staff/{id}", telemetry.WithHTTPRoute(h.HandleUpdate))
	mux.HandleFunc("PATCH /staff/{id}/status", telemetry.WithHTTPRoute(h.HandleSetStatus))
	mux.HandleFunc("DELETE /staff/{id}", telemetry.WithHTTPRoute(h.HandleDelete))
}

type employeeRequest struct {
	Name       string          `json:"name" validate:"required,max=120"`
	Email      string          `json:"email" validate:"omitempty,email"`
	Phone      string          `json:"phone" validate:"max=32"`
	Position   string          `json:"position" validate:"required,max=60"`
	Department string          `json:"department" validate:"required,oneof='Kitchen' 'Front of House' 'Bar' 'Management'"`
	HourlyRate decimal.Decimal `json:"hourly_rate" validate:"gte=0"`
	HireDate   string          `json:"hire_date" validate:"omitempty,datetime=2006-01-02"`
}

func (req employeeRequest) input() EmployeeInput {
	return EmployeeInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Position:   req.Position,
		Department: req.Department,
		HourlyRate: req.HourlyRate,
		HireDate:   req.HireDate,
	}
}

func (h *Handler) HandleHire(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	e, err := h.svc.Hire(r.Context(), req.input())
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusCreated, e)
}

// HandleList serves GET /staff with optional department and status filters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	employees, err := h.svc.List(r.Context(), Filter{
		Department: q.Get("department"),
		Status:     domain.EmployeeStatus(q.Get("status")),
	})
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "staff listed", "count", len(employees))
	httpx.WriteJSON(w, h.logger, http.StatusOK, employees)
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, summary)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, e)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	e, err := h.svc.Update(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, e)
}

type statusRequest struct {
	Status domain.EmployeeStatus `json:"status" validate:"required"`
}

func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	e, err := h.svc.SetStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, e)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
