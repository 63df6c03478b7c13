package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimalCurrencies are charged by Stripe in their major unit.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true,
	"kmf": true, "krw": true, "mga": true, "pyg": true, "rwf": true,
	"vnd": true, "vuv": true, "xaf": true, "xof": true, "xpf": true,
}

var hundred = decimal.NewFromInt(100)

// IsZeroDecimalCurrency reports whether currency has no minor unit.
func IsZeroDecimalCurrency(currency string) bool {
	return zeroDecimalCurrencies[strings.ToLower(currency)]
}

// ToAPIAmount converts an amount in the major unit to the smallest unit
// Stripe expects, rounding half away from zero.
func ToAPIAmount(amount decimal.Decimal, currency string) int64 {
	if IsZeroDecimalCurrency(currency) {
		return amount.Round(0).IntPart()
	}
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromAPIAmount is the inverse of ToAPIAmount.
func FromAPIAmount(amount int64, currency string) decimal.Decimal {
	if IsZeroDecimalCurrency(currency) {
		return decimal.NewFromInt(amount)
	}
	return decimal.New(amount, -2)
}
