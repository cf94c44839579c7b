package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSymbol(t *testing.T) {
	tests := []struct {
		in       string
		expected string
		ok       bool
	}{
		{"aapl", "AAPL", true},
		{"  nflx ", "NFLX", true},
		{"BRK.B", "BRK.B", true},
		{"", "", false},
		{"1ABC", "1ABC", false},
		{"AB CD", "AB CD", false},
		{"ABCDEFGHIJK", "ABCDEFGHIJK", false},
		{"A/B", "A/B", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s, ok := Symbol(tt.in)
			assert.Equal(t, tt.expected, s)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"0", true},
		{"0.00", true},
		{"150", true},
		{"150.5", true},
		{"150.25", true},
		{"150.250", true},
		{"150.005", false},
		{"0.001", false},
		{"-1", false},
		{"-0.01", false},
		{"999999999999.99", true},
		{"1000000000000", false},
		{"1e12", false},
		{"1e10000000", false},
		{"0e10000000", false},
		{"1e-10000000", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.ok, Amount(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestShareCount(t *testing.T) {
	assert.True(t, ShareCount(1))
	assert.True(t, ShareCount(1000))
	assert.False(t, ShareCount(0))
	assert.False(t, ShareCount(-5))
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(MaxCash))
	assert.True(t, InRange(MaxCash.Neg()))
	assert.True(t, InRange(decimal.Zero))
	assert.True(t, InRange(decimal.RequireFromString("0.000")))
	assert.False(t, InRange(MaxCash.Add(decimal.RequireFromString("0.01"))))
	assert.False(t, InRange(decimal.New(1, 1<<30)))
	assert.False(t, InRange(decimal.New(1, -(1<<30))))
}
