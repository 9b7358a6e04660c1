package messaging

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	errFlaky := errors.New("email service unavailable")

	tests := []struct {
		name      string
		attempts  int
		failures  int
		wantCalls int
		wantErr   bool
	}{
		{"succeeds first time", 3, 0, 1, false},
		{"succeeds after failures", 3, 2, 3, false},
		{"gives up after attempts", 3, 5, 3, true},
		{"non-positive attempts run once", 0, 5, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return errFlaky
				}
				return nil
			})

			if calls != tt.wantCalls {
				t.Errorf("expected %d calls, got %d", tt.wantCalls, calls)
			}
			if tt.wantErr && !errors.Is(err, errFlaky) {
				t.Errorf("expected last handler error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestRetry_StopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Retry(ctx, 5, time.Hour, func(context.Context) error {
		calls++
		cancel()
		return errors.New("boom")
	})

	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call before the context ended, got %d", calls)
	}
}

func TestNewConsumer_Options(t *testing.T) {
	c := NewConsumer([]string{"localhost:9092"}, []string{"order.delivered"}, "notification-worker",
		WithRetry(5, 2*time.Second))
	defer func() { _ = c.Close() }()

	if c.attempts != 5 {
		t.Errorf("expected 5 attempts, got %d", c.attempts)
	}
	if c.backoff != 2*time.Second {
		t.Errorf("expected 2s backoff, got %s", c.backoff)
	}
	if c.groupID != "notification-worker" {
		t.Errorf("expected group notification-worker, got %s", c.groupID)
	}
}
