package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		want  int64
	}{
		{"positive cents", 1234, 1234},
		{"zero", 0, 0},
		{"negative cents", -5000, -5000},
		{"large amount", 999999999, 999999999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.cents).Amount())
		})
	}
}

func TestNewFromDecimal(t *testing.T) {
	tests := []struct {
		name    string
		dollars string
		want    int64
	}{
		{"whole", "100", 10000},
		{"cents", "1234.56", 123456},
		{"rounds half up", "0.005", 1},
		{"rounds negative away from zero", "-0.005", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewFromDecimal(decimal.RequireFromString(tt.dollars)).Amount())
		})
	}
}

func TestAddSubtract(t *testing.T) {
	a := New(150000)
	b := New(75050)

	assert.Equal(t, int64(225050), a.Add(b).Amount())
	assert.Equal(t, int64(74950), a.Subtract(b).Amount())
	assert.Equal(t, int64(150000), a.Add(nil).Amount())

	var none *Money
	assert.Equal(t, int64(75050), none.Add(b).Amount())
	assert.True(t, none.Add(nil).IsZero())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b *Money
		want int
	}{
		{"less", New(100), New(200), -1},
		{"equal", New(200), New(200), 0},
		{"greater", New(300), New(200), 1},
		{"nil equals zero", nil, Zero(), 0},
		{"nil below positive", nil, New(1), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
		})
	}

	assert.True(t, New(200001).GreaterThan(New(200000)))
	assert.False(t, New(200000).GreaterThan(New(200000)))
}

func TestExcess(t *testing.T) {
	limit := New(200000)

	assert.Equal(t, int64(500), New(200500).Excess(limit).Amount())
	assert.True(t, New(200000).Excess(limit).IsZero())
	assert.True(t, New(100).Excess(limit).IsZero())
}

func TestPercentageOf(t *testing.T) {
	assert.True(t, New(5000).PercentageOf(New(20000)).Equal(decimal.NewFromInt(25)))
	assert.True(t, New(5000).PercentageOf(Zero()).IsZero())
}

func TestDisplayAndString(t *testing.T) {
	m := New(123456)
	assert.Equal(t, "$1,234.56", m.Display())
	assert.Equal(t, "1234.56", m.String())
	assert.True(t, m.ToDecimal().Equal(decimal.RequireFromString("1234.56")))
	assert.Contains(t, New(-5000).Display(), "-")
}

func TestJSON(t *testing.T) {
	data, err := json.Marshal(New(12345))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(12345), raw["cents"])
	assert.Equal(t, "$123.45", raw["display"])

	var m Money
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, int64(12345), m.Amount())
}

func TestNilSafety(t *testing.T) {
	var m *Money

	assert.Equal(t, int64(0), m.Amount())
	assert.True(t, m.IsZero())
	assert.False(t, m.IsPositive())
	assert.False(t, m.IsNegative())
	assert.Equal(t, "$0.00", m.Display())
	assert.Equal(t, "0.00", m.String())
	assert.True(t, m.ToDecimal().IsZero())

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
