// Package worker turns domain events into notification emails.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
	"github.com/joao-fontenele/restaurant-pos/internal/money"
	"github.com/joao-fontenele/restaurant-pos/internal/telemetry"
)

type NotificationHandler struct {
	emailServiceURL string
	managerEmail    string
	formatter       money.Formatter
	httpClient      *http.Client
	counters        *telemetry.Counters
	logger          *slog.Logger
}

func NewNotificationHandler(emailServiceURL, managerEmail string, formatter money.Formatter, client *http.Client, logger *slog.Logger) (*NotificationHandler, error) {
	counters, err := telemetry.NewCounters()
	if err != nil {
		return nil, fmt.Errorf("create counters: %w", err)
	}
	return &NotificationHandler{
		emailServiceURL: emailServiceURL,
		managerEmail:    managerEmail,
		formatter:       formatter,
		httpClient:      client,
		counters:        counters,
		logger:          logger,
	}, nil
}

// Handle dispatches one event by topic. Undecodable payloads and unknown
// topics are logged and dropped; email failures are returned so the message
// is redelivered.
func (h *NotificationHandler) Handle(ctx context.Context, topic string, payload []byte) error {
	switch topic {
	case domain.TopicOrderDelivered:
		var event domain.OrderDeliveredEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			h.logger.ErrorContext(ctx, "dropping malformed event", "topic", topic, "error", err)
			return nil
		}
		return h.handleOrderDelivered(ctx, event)
	case domain.TopicInventoryLowStock:
		var event domain.LowStockEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			h.logger.ErrorContext(ctx, "dropping malformed event", "topic", topic, "error", err)
			return nil
		}
		return h.handleLowStock(ctx, event)
	default:
		h.logger.WarnContext(ctx, "ignoring event on unknown topic", "topic", topic)
		return nil
	}
}

func (h *NotificationHandler) handleOrderDelivered(ctx context.Context, event domain.OrderDeliveredEvent) error {
	h.logger.InfoContext(ctx, "processing order delivered event", "order_id", event.OrderID)

	if event.CustomerID == nil || *event.CustomerID == "" {
		h.logger.InfoContext(ctx, "no customer on order, skipping receipt", "order_id", event.OrderID)
		return nil
	}

	if err := h.sendEmail(ctx, "receipt", emailRequest{
		To:      *event.CustomerID + "@example.com",
		Subject: "Your receipt for order " + event.OrderNumber,
		Body:    h.receiptBody(event),
	}); err != nil {
		h.logger.ErrorContext(ctx, "failed to send receipt email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send receipt email: %w", err)
	}

	return nil
}

func (h *NotificationHandler) receiptBody(event domain.OrderDeliveredEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s (%s)\n\n", event.OrderNumber, event.OrderType)
	for _, item := range event.Items {
		fmt.Fprintf(&b, "%d x %s  %s\n", item.Quantity, item.Name, h.formatter.Format(item.LineTotal()))
	}
	totals := event.Totals
	fmt.Fprintf(&b, "\nSubtotal: %s\n", h.formatter.Format(totals.Subtotal))
	fmt.Fprintf(&b, "Tax: %s\n", h.formatter.Format(totals.TaxAmount))
	if totals.DiscountAmount.IsPositive() {
		fmt.Fprintf(&b, "Discount (%s%%): -%s\n", totals.DiscountPercentage.String(), h.formatter.Format(totals.DiscountAmount))
	}
	if totals.TipAmount.IsPositive() {
		fmt.Fprintf(&b, "Tip: %s\n", h.formatter.Format(totals.TipAmount))
	}
	fmt.Fprintf(&b, "Total: %s\n", h.formatter.Format(totals.TotalAmount))
	return b.String()
}

func (h *NotificationHandler) handleLowStock(ctx context.Context, event domain.LowStockEvent) error {
	h.logger.InfoContext(ctx, "processing low stock event", "item_id", event.ItemID, "tier", event.Tier)

	body := fmt.Sprintf("%s is %s: %d %s left, minimum is %d. Unit cost %s.",
		event.Name, event.Tier, event.CurrentStock, event.Unit, event.MinimumStock, h.formatter.Format(event.UnitCost))

	if err := h.sendEmail(ctx, "low_stock", emailRequest{
		To:      h.managerEmail,
		Subject: fmt.Sprintf("Restock needed: %s (%s)", event.Name, event.Tier),
		Body:    body,
	}); err != nil {
		h.logger.ErrorContext(ctx, "failed to send low stock alert", "error", err, "item_id", event.ItemID)
		return fmt.Errorf("send low stock alert: %w", err)
	}

	return nil
}

type emailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (h *NotificationHandler) sendEmail(ctx context.Context, kind string, body emailRequest) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	h.counters.NotificationsSent.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	return nil
}
