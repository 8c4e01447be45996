// Package format holds the numeric guards and display helpers shared by the
// engines, the CLI and the API.
package format

import (
	"math"

	"github.com/shopspring/decimal"
)

// PctChange returns (to-from)/from*100; ok is false when from is zero or not finite
func PctChange(from, to float64) (pct float64, ok bool) {
	if from == 0 || math.IsNaN(from) || math.IsInf(from, 0) {
		return 0, false
	}
	return (to - from) / from * 100, true
}

// ValidDenominator reports whether v can safely be divided by
func ValidDenominator(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Round2 rounds half away from zero to two decimals
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Money renders v with two decimals, e.g. "1050.00"
func Money(v float64) string {
	if !finite(v) {
		return nonFinite(v)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Signed renders v with two decimals and an explicit sign for positives
func Signed(v float64) string {
	if !finite(v) {
		return nonFinite(v)
	}
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

// Pct renders a signed percentage, e.g. "+5.00%"
func Pct(v float64) string {
	return Signed(v) + "%"
}

// Quantity renders share counts without trailing zeros
func Quantity(v float64) string {
	if !finite(v) {
		return nonFinite(v)
	}
	return decimal.NewFromFloat(v).String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// nonFinite renders NaN and infinities, which decimal cannot represent
func nonFinite(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case v > 0:
		return "+Inf"
	default:
		return "-Inf"
	}
}
