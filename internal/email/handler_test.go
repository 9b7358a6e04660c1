package email

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandler_HandleSend(t *testing.T) {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.delay = func() time.Duration { return 0 }
	mux := http.NewServeMux()
	h.Register(mux)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid message", `{"to":"manager@example.com","subject":"Restock needed","body":"flour"}`, http.StatusOK},
		{"invalid address", `{"to":"manager","subject":"Restock needed"}`, http.StatusBadRequest},
		{"missing subject", `{"to":"manager@example.com"}`, http.StatusBadRequest},
		{"malformed json", `{"to":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/send", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}
