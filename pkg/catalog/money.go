package catalog

import "github.com/shopspring/decimal"

// Money is a decimal amount that goes over the wire as a JSON number
// ("price": 19.99) rather than decimal's default quoted string. It scans
// from and writes to SQL like decimal.Decimal.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MustParseMoney parses s and panics when it is not a decimal number.
func MustParseMoney(s string) Money {
	return NewMoney(decimal.RequireFromString(s))
}

// MarshalJSON writes the amount as a bare number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both numbers and quoted strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Decimal.UnmarshalJSON(data)
}
