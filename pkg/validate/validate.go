package validate

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	maxSymbolLen = 10
	// cash and totals are stored as NUMERIC(14,2)
	maxIntDigits = 12
	minExponent  = -20
)

// MaxCash is the largest balance the store can hold.
var MaxCash = decimal.RequireFromString("999999999999.99")

var symbolRe = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]*$`)

// Symbol upper-cases a ticker and reports whether it is well formed.
func Symbol(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || len(s) > maxSymbolLen {
		return s, false
	}
	return s, symbolRe.MatchString(s)
}

// InRange reports whether d fits the cash column. It looks only at the
// coefficient and exponent, so values like 1e10000000 are rejected without
// being rescaled.
func InRange(d decimal.Decimal) bool {
	exp := int64(d.Exponent())
	if exp < minExponent {
		return false
	}
	if d.IsZero() {
		return exp <= maxIntDigits
	}
	if int64(d.NumDigits())+exp > maxIntDigits {
		return false
	}
	return d.Abs().LessThanOrEqual(MaxCash)
}

// Cents reports whether d has no more than two significant decimal places.
func Cents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// Amount accepts non-negative values expressible in whole cents that fit
// the cash column.
func Amount(d decimal.Decimal) bool {
	return InRange(d) && !d.IsNegative() && Cents(d)
}

// ShareCount accepts strictly positive share counts.
func ShareCount(n int64) bool {
	return n > 0
}
