// Package money provides dollar amounts held as integer cents, for summing contributions
// and checking them against limits without floating-point drift.
package money

import (
	"encoding/json"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// USD is the only currency reports are filed in.
const USD = "USD"

// Money is a USD amount in cents.
type Money struct {
	m *money.Money
}

// New creates a Money value from cents.
func New(cents int64) *Money {
	return &Money{m: money.New(cents, USD)}
}

// NewFromDecimal creates Money from a dollar amount, rounding half away from zero to the cent.
func NewFromDecimal(dollars decimal.Decimal) *Money {
	return New(dollars.Shift(2).Round(0).IntPart())
}

// Zero returns $0.00.
func Zero() *Money {
	return New(0)
}

// Amount returns the amount in cents.
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// IsZero returns true if the amount is zero
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}

// IsPositive returns true if the amount is greater than zero
func (m *Money) IsPositive() bool {
	return m != nil && m.m != nil && m.m.IsPositive()
}

// IsNegative returns true if the amount is less than zero
func (m *Money) IsNegative() bool {
	return m != nil && m.m != nil && m.m.IsNegative()
}

// Add returns m + other. A nil operand counts as zero.
func (m *Money) Add(other *Money) *Money {
	if m == nil || m.m == nil {
		if other == nil {
			return Zero()
		}
		return other
	}
	if other == nil || other.m == nil {
		return m
	}
	result, err := m.m.Add(other.m)
	if err != nil {
		// Both sides are always USD.
		panic(err)
	}
	return &Money{m: result}
}

// Subtract returns m - other. A nil operand counts as zero.
func (m *Money) Subtract(other *Money) *Money {
	return New(m.Amount() - other.Amount())
}

// Compare returns -1 if m < other, 0 if equal, 1 if m > other
func (m *Money) Compare(other *Money) int {
	a, b := m.Amount(), other.Amount()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// GreaterThan returns true if m > other
func (m *Money) GreaterThan(other *Money) bool {
	return m.Compare(other) > 0
}

// Excess returns how far m exceeds limit, or zero when it does not.
func (m *Money) Excess(limit *Money) *Money {
	if !m.GreaterThan(limit) {
		return Zero()
	}
	return m.Subtract(limit)
}

// PercentageOf returns m as a percentage of total (e.g. 25.5 for 25.5%).
func (m *Money) PercentageOf(total *Money) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return m.ToDecimal().Div(total.ToDecimal()).Mul(decimal.NewFromInt(100))
}

// Display returns a formatted string for display (e.g., "$1,234.56")
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return "$0.00"
	}
	return m.m.Display()
}

// String returns the amount as a decimal string (e.g., "1234.56")
func (m *Money) String() string {
	return m.ToDecimal().StringFixed(2)
}

// ToDecimal converts to dollars.
func (m *Money) ToDecimal() decimal.Decimal {
	return decimal.New(m.Amount(), -2)
}

// MarshalJSON writes the amount in cents alongside its display form.
func (m *Money) MarshalJSON() ([]byte, error) {
	if m == nil || m.m == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(map[string]any{
		"cents":   m.Amount(),
		"display": m.Display(),
	})
}

// UnmarshalJSON reads the form MarshalJSON writes.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Cents int64 `json:"cents"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.m = money.New(v.Cents, USD)
	return nil
}
