package inventory

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

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
	mux.HandleFunc("POST /inventory/items", telemetry.WithHTTPRoute(h.HandleCreate))
	mux.HandleFunc("GET /inventory/items", telemetry.WithHTTPRoute(h.HandleList))
	mux.HandleFunc("GET /inventory/items/{id}", telemetry.WithHTTPRoute(h.HandleGet))
	mux.HandleFunc("PUT /inventory/items/{id}", telemetry.WithHTTPRoute(h.HandleUpdate))
	mux.HandleFunc("DELETE /inventory/items/{id}", telemetry.WithHTTPRoute(h.HandleDelete))
	mux.HandleFunc("POST /inventory/items/{id}/adjust", telemetry.WithHTTPRoute(h.HandleAdjust))
	mux.HandleFunc("GET /inventory/low-stock", telemetry.WithHTTPRoute(h.HandleLowStock))
	mux.HandleFunc("GET /inventory/valuation", telemetry.WithHTTPRoute(h.HandleValuation))
}

type itemRequest struct {
	Name         string          `json:"name" validate:"required,max=120"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit" validate:"required"`
	CurrentStock int             `json:"current_stock" validate:"gte=0"`
	MinimumStock int             `json:"minimum_stock" validate:"gte=0"`
	MaximumStock *int            `json:"maximum_stock" validate:"omitempty,gte=0"`
	UnitCost     decimal.Decimal `json:"unit_cost" validate:"gte=0"`
	SupplierID   *string         `json:"supplier_id"`
}

func (req itemRequest) input() ItemInput {
	return ItemInput{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Unit:         req.Unit,
		CurrentStock: req.CurrentStock,
		MinimumStock: req.MinimumStock,
		MaximumStock: req.MaximumStock,
		UnitCost:     req.UnitCost,
		SupplierID:   req.SupplierID,
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	item, err := h.svc.Create(r.Context(), req.input())
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusCreated, item)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "stock listed", "count", len(items))
	httpx.WriteJSON(w, h.logger, http.StatusOK, items)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, item)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	item, err := h.svc.Update(r.Context(), r.PathValue("id"), req.input())
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, item)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type adjustRequest struct {
	Delta int `json:"delta" validate:"required"`
}

func (h *Handler) HandleAdjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	item, err := h.svc.Adjust(r.Context(), r.PathValue("id"), req.Delta)
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, item)
}

func (h *Handler) HandleLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.LowStock(r.Context())
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, items)
}

func (h *Handler) HandleValuation(w http.ResponseWriter, r *http.Request) {
	valuation, err := h.svc.Valuation(r.Context())
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, valuation)
}
