package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits stored for monetary columns (DECIMAL(15,2)).
const MoneyScale = 2

// maxMoney is the first value that no longer fits in DECIMAL(15,2).
var maxMoney = decimal.New(1, 13)

// Money is a fixed-point amount that always carries exactly two fractional digits
// through storage and JSON.
type Money struct {
	decimal.Decimal
}

// NewMoney converts a decimal into Money, rounding to two places.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(MoneyScale)}
}

// MustMoney parses s and panics on malformed input. Intended for constants and tests.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseMoney parses a decimal string such as "1234.50" or "-20".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{Decimal: d}, nil
}

// ZeroMoney returns 0.00.
func ZeroMoney() Money {
	return Money{Decimal: decimal.Zero}
}

// Fits reports whether m can be stored without loss in a DECIMAL(15,2) column.
func (m Money) Fits() bool {
	if !m.Decimal.Equal(m.Decimal.Round(MoneyScale)) {
		return false
	}
	return m.Decimal.Abs().LessThan(maxMoney)
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Decimal: m.Decimal.Neg()}
}

// Abs returns |m|.
func (m Money) Abs() Money {
	return Money{Decimal: m.Decimal.Abs()}
}

// String formats m with exactly two fractional digits.
func (m Money) String() string {
	return m.Decimal.StringFixed(MoneyScale)
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner. Engines that store NUMERIC as floating point
// (SQLite) are rounded back to two places.
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		m.Decimal = decimal.Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	m.Decimal = d.Round(MoneyScale)
	return nil
}

// MarshalJSON renders the amount as a quoted two-place string, e.g. "1234.50".
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.Decimal = d
	return nil
}
