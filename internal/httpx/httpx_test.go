package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

type sampleItem struct {
	Name      string          `json:"name" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Quantity  int             `json:"quantity" validate:"min=1"`
}

type sampleRequest struct {
	Items []sampleItem `json:"items" validate:"required,min=1,dive"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecode(t *testing.T) {
	t.Run("accepts a valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"items":[{"name":"Chai","unit_price":"120.50","quantity":2}]}`))
		var dst sampleRequest
		if err := Decode(req, &dst); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !dst.Items[0].UnitPrice.Equal(decimal.RequireFromString("120.5")) {
			t.Errorf("expected unit price 120.5, got %s", dst.Items[0].UnitPrice)
		}
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"items":`))
		var dst sampleRequest
		if err := Decode(req, &dst); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"items":[],"extra":1}`))
		var dst sampleRequest
		if err := Decode(req, &dst); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("reports failing fields by json name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"items":[{"name":"","unit_price":"-1","quantity":0}]}`))
		var dst sampleRequest
		err := Decode(req, &dst)

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected *ValidationError, got %v", err)
		}
		want := map[string]string{
			"items[0].name":       "required",
			"items[0].unit_price": "gte",
			"items[0].quantity":   "min",
		}
		for field, tag := range want {
			if verr.Fields[field] != tag {
				t.Errorf("expected %s to fail %q, got %q (all: %v)", field, tag, verr.Fields[field], verr.Fields)
			}
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.Error{Kind: domain.ErrInvalidInput}, http.StatusBadRequest},
		{domain.NotFound("order", "x"), http.StatusNotFound},
		{&domain.Error{Kind: domain.ErrIllegalTransition}, http.StatusConflict},
		{fmt.Errorf("wrap: %w", &domain.Error{Kind: domain.ErrPreconditionFailed}), http.StatusPreconditionFailed},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v): expected %d, got %d", tt.err, tt.want, got)
		}
	}
}

func TestWriteError(t *testing.T) {
	t.Run("includes current state", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, discardLogger(), &domain.Error{
			Kind: domain.ErrIllegalTransition, Op: "transition", Entity: "order", ID: "o-1", State: "delivered",
		})

		if rec.Code != http.StatusConflict {
			t.Errorf("expected status 409, got %d", rec.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Details["current_state"] != "delivered" || resp.Details["id"] != "o-1" {
			t.Errorf("unexpected details: %v", resp.Details)
		}
	})

	t.Run("hides internal errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, discardLogger(), errors.New("connection refused"))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "internal server error") {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
	})
}
