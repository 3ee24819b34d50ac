package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a fixed two-decimal-place amount. Every monetary computation in the
// system (totals, ganji, commissions) goes through this type so repeated
// multiply/subtract chains never accumulate binary floating-point drift.
type Money struct {
	d decimal.Decimal
}

const places = 2

// New creates a Money from whole currency units (e.g. New(1500) == 1500.00).
func New(units int64) Money {
	return Money{d: decimal.NewFromInt(units)}
}

// FromString parses a decimal string such as "1999.99".
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money value %q: %w", s, err)
	}
	return Money{d: d.Round(places)}, nil
}

// FromDecimal fixes an arbitrary decimal to two places, rounding half-up.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Round(places)}
}

func Zero() Money {
	return Money{d: decimal.Zero}
}

func (m Money) Add(other Money) Money {
	return Money{d: m.d.Add(other.d)}
}

func (m Money) Sub(other Money) Money {
	return Money{d: m.d.Sub(other.d)}
}

// MulQty multiplies by an integer quantity. Quantity times a two-place amount
// is always exact, no rounding happens here.
func (m Money) MulQty(qty int) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(int64(qty)))}
}

// Percent returns rate% of the amount, rounded half-up to two places.
func (m Money) Percent(rate decimal.Decimal) Money {
	return Money{d: m.d.Mul(rate).Div(decimal.NewFromInt(100)).Round(places)}
}

// Cmp returns -1, 0 or 1 comparing m against other.
func (m Money) Cmp(other Money) int {
	return m.d.Cmp(other.d)
}

func (m Money) Equal(other Money) bool {
	return m.d.Equal(other.d)
}

func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// Decimal exposes the underlying decimal for rate math in the evaluator.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

func (m Money) String() string {
	return m.d.StringFixed(places)
}

// Value implements driver.Valuer so Money maps to a decimal(18,2) column.
func (m Money) Value() (driver.Value, error) {
	return m.d.StringFixed(places), nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	m.d = d.Round(places)
	return nil
}

// MarshalJSON renders the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.StringFixed(places)), nil
}

// UnmarshalJSON accepts both quoted and bare decimal values.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.d = d.Round(places)
	return nil
}
