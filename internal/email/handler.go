// Package email is a stand-in mail relay: it validates and logs messages
// after a simulated delivery delay.
package email

import (
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/joao-fontenele/restaurant-pos/internal/httpx"
	"github.com/joao-fontenele/restaurant-pos/internal/telemetry"
)

type Handler struct {
	logger *slog.Logger
	delay  func() time.Duration
}

// NewHandler returns a relay that waits 50-200ms per message.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		delay:  func() time.Duration { return time.Duration(50+rand.IntN(151)) * time.Millisecond },
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /send", telemetry.WithHTTPRoute(h.HandleSend))
}

type sendRequest struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body"`
}

type sendResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	select {
	case <-time.After(h.delay()):
	case <-r.Context().Done():
		return
	}

	h.logger.InfoContext(r.Context(), "email sent", "to", req.To, "subject", req.Subject)

	httpx.WriteJSON(w, h.logger, http.StatusOK, sendResponse{Status: "sent"})
}
