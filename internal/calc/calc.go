// Package calc holds the pure invoice arithmetic. Everything here is
// referentially transparent and safe to call redundantly on every form sync.
package calc

import (
	"math"
	"strconv"
	"strings"

	"github.com/billforge/billforge/internal/models"
)

// Round2 rounds half away from zero at two decimals, matching how monetary
// values are displayed everywhere in the app.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// ParseNumber coerces free-form numeric input. Anything unparseable,
// including the empty string, becomes 0; this never fails.
func ParseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ItemAmount computes a line's derived amount at display precision.
func ItemAmount(quantity, rate float64) float64 {
	return Round2(quantity * rate)
}

// ComputeTotals derives the subtotal/tax/total triple from item amounts.
// A negative tax rate is treated as 0; no items means a zero subtotal.
func ComputeTotals(amounts []float64, taxRate float64) models.Totals {
	if taxRate < 0 || math.IsNaN(taxRate) || math.IsInf(taxRate, 0) {
		taxRate = 0
	}
	var subtotal float64
	for _, a := range amounts {
		subtotal += a
	}
	tax := subtotal * taxRate / 100
	return models.Totals{
		Subtotal:  Round2(subtotal),
		TaxRate:   taxRate,
		TaxAmount: Round2(tax),
		Total:     Round2(subtotal + tax),
	}
}

// Amounts extracts the derived amount of each item, recomputing from
// quantity and rate so the result never depends on possibly stale fields.
func Amounts(items []models.LineItem) []float64 {
	out := make([]float64, 0, len(items))
	for _, it := range items {
		out = append(out, ItemAmount(it.Quantity, it.Rate))
	}
	return out
}
