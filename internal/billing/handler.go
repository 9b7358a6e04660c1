package billing

import (
	"log/slog"
	"net/http"
	"time"

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
	mux.HandleFunc("POST /bills", telemetry.WithHTTPRoute(h.HandleCreate))
	mux.HandleFunc("GET /bills", telemetry.WithHTTPRoute(h.HandleList))
	mux.HandleFunc("GET /bills/summary", telemetry.WithHTTPRoute(h.HandleSummary))
	mux.HandleFunc("GET /bills/{id}", telemetry.WithHTTPRoute(h.HandleGet))
	mux.HandleFunc("PATCH /bills/{id}/status", telemetry.WithHTTPRoute(h.HandleSettle))
}

type createBillRequest struct {
	OrderID        string               `json:"order_id" validate:"required"`
	PaymentMethod  domain.PaymentMethod `json:"payment_method" validate:"required,oneof=cash credit_card debit_card digital_wallet"`
	DiscountAmount decimal.Decimal      `json:"discount_amount" validate:"gte=0"`
	TipAmount      decimal.Decimal      `json:"tip_amount" validate:"gte=0"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	bill, err := h.svc.CreateBill(r.Context(), req.OrderID, BillInput{
		PaymentMethod:  req.PaymentMethod,
		DiscountAmount: req.DiscountAmount,
		TipAmount:      req.TipAmount,
	})
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusCreated, bill)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	bill, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, bill)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	bills, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "bills listed", "count", len(bills))
	httpx.WriteJSON(w, h.logger, http.StatusOK, bills)
}

type settleRequest struct {
	Status domain.BillStatus `json:"status" validate:"required"`
}

func (h *Handler) HandleSettle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	bill, err := h.svc.Settle(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, bill)
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			httpx.WriteError(w, h.logger, domain.InvalidInput("sales summary", "date must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	summary, err := h.svc.DailySummary(r.Context(), day)
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, summary)
}
