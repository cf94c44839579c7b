package dto

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const currency = "USD"

// Amount renders d with exactly two decimal places.
func Amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// USD renders d the way the web UI shows money, e.g. "$10,000.00".
func USD(d decimal.Decimal) string {
	return money.New(d.Shift(2).Round(0).IntPart(), currency).Display()
}
