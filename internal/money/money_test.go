package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatter_Format(t *testing.T) {
	f := NewFormatter("")

	tests := []struct {
		in   string
		want string
	}{
		{"0", "KES 0.00"},
		{"5", "KES 5.00"},
		{"2320", "KES 2,320.00"},
		{"1234567.891", "KES 1,234,567.89"},
		{"999.995", "KES 1,000.00"},
		{"100000", "KES 100,000.00"},
		{"-2120.5", "KES -2,120.50"},
		{"-0.001", "KES 0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := f.Format(decimal.RequireFromString(tt.in))
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNewFormatter_Currency(t *testing.T) {
	f := NewFormatter("USD")
	if got := f.Format(decimal.NewFromInt(12)); got != "USD 12.00" {
		t.Errorf("expected %q, got %q", "USD 12.00", got)
	}
}
