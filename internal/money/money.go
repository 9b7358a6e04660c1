// Package money renders amounts for people: a currency code, thousands
// separators and exactly two fractional digits.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "KES"

type Formatter struct {
	Currency string
}

func NewFormatter(currency string) Formatter {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Formatter{Currency: currency}
}

// Format renders d as e.g. "KES 1,234.50".
func (f Formatter) Format(d decimal.Decimal) string {
	return f.Currency + " " + Group(d)
}

// Group renders d with comma thousands separators and two decimals, rounding
// half away from zero.
func Group(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg && !d.Round(2).IsZero() {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
