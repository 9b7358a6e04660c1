package orders

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

// Register mounts the orders routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", telemetry.WithHTTPRoute(h.HandleCreate))
	mux.HandleFunc("POST /orders/quote", telemetry.WithHTTPRoute(h.HandleQuote))
	mux.HandleFunc("GET /orders", telemetry.WithHTTPRoute(h.HandleList))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(h.HandleGet))
	mux.HandleFunc("PATCH /orders/{id}/status", telemetry.WithHTTPRoute(h.HandleUpdateStatus))
}

type lineItemRequest struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name" validate:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Quantity   int             `json:"quantity" validate:"min=1"`
}

type createOrderRequest struct {
	OrderType           domain.OrderType  `json:"order_type" validate:"required,oneof=dine_in takeout delivery"`
	TableID             *string           `json:"table_id"`
	CustomerID          *string           `json:"customer_id"`
	SpecialInstructions string            `json:"special_instructions" validate:"max=500"`
	DiscountPercentage  decimal.Decimal   `json:"discount_percentage" validate:"gte=0,lte=100"`
	TipAmount           decimal.Decimal   `json:"tip_amount" validate:"gte=0"`
	Items               []lineItemRequest `json:"items" validate:"required,min=1,dive"`
}

type quoteRequest struct {
	DiscountPercentage decimal.Decimal   `json:"discount_percentage" validate:"gte=0,lte=100"`
	TipAmount          decimal.Decimal   `json:"tip_amount" validate:"gte=0"`
	Items              []lineItemRequest `json:"items" validate:"dive"`
}

func toLineItems(reqs []lineItemRequest) []domain.LineItem {
	items := make([]domain.LineItem, len(reqs))
	for i, r := range reqs {
		items[i] = domain.LineItem{
			MenuItemID: r.MenuItemID,
			Name:       r.Name,
			UnitPrice:  r.UnitPrice,
			Quantity:   r.Quantity,
		}
	}
	return items
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	order, err := h.svc.Create(r.Context(), CreateOrderInput{
		Type:                req.OrderType,
		TableID:             req.TableID,
		CustomerID:          req.CustomerID,
		SpecialInstructions: req.SpecialInstructions,
		DiscountPercentage:  req.DiscountPercentage,
		TipAmount:           req.TipAmount,
		Items:               toLineItems(req.Items),
	})
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusCreated, order)
}

func (h *Handler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	totals, err := h.svc.Quote(toLineItems(req.Items), req.DiscountPercentage, req.TipAmount)
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, totals.Rounded())
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.List(r.Context(), r.URL.Query().Get("view"))
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "orders listed", "count", len(orders))
	httpx.WriteJSON(w, h.logger, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	order, err := h.svc.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, order)
}
