package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSamplingRatio(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"", 1, false},
		{"0.25", 0.25, false},
		{"0", 0, false},
		{"1.5", 0, true},
		{"-0.1", 0, true},
		{"half", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := samplingRatio(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNewCounters(t *testing.T) {
	c, err := NewCounters()
	if err != nil {
		t.Fatalf("failed to create counters: %v", err)
	}
	if c.OrdersCreated == nil || c.LowStockAlerts == nil || c.NotificationsSent == nil ||
		c.ReservationTransitions == nil || c.StaffStatusChanges == nil {
		t.Fatal("expected every counter to be set")
	}
}

func TestWithHTTPRoute_CallsHandler(t *testing.T) {
	mux := http.NewServeMux()
	called := false
	mux.HandleFunc("GET /orders/{id}", WithHTTPRoute(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.Pattern != "GET /orders/{id}" {
			t.Errorf("expected pattern GET /orders/{id}, got %q", r.Pattern)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/abc", nil))

	if !called {
		t.Fatal("expected wrapped handler to run")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
}
