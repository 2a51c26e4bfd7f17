package allocation

import (
	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals summarises how much of the portfolio has been assigned
type Totals struct {
	Total     float64 `json:"total" msgpack:"total"`         // sum of allocations, 0.1 precision
	Remaining float64 `json:"remaining" msgpack:"remaining"` // 100 - total clamped to [0,100], 0.1 precision
	Over      bool    `json:"over" msgpack:"over"`           // allocations exceed 100%
}

// CalculateTotals sums the allocations of the given tickers (absent = 0).
// Nothing forces the total to 100; remaining is informational.
func CalculateTotals(tickers []string, allocations domain.AllocationMap) Totals {
	total := decimal.Zero
	for _, t := range tickers {
		total = total.Add(decimal.NewFromFloat(allocations.Get(t)))
	}

	remaining := hundred.Sub(total)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	if remaining.GreaterThan(hundred) {
		remaining = hundred
	}

	return Totals{
		Total:     total.Round(1).InexactFloat64(),
		Remaining: remaining.Round(1).InexactFloat64(),
		Over:      total.GreaterThan(hundred),
	}
}

// DollarAmount converts a percentage of the portfolio value into currency, rounded to cents
func DollarAmount(pct, portfolioValue float64) float64 {
	return decimal.NewFromFloat(pct).
		Div(hundred).
		Mul(decimal.NewFromFloat(portfolioValue)).
		Round(2).
		InexactFloat64()
}

// DollarAmounts maps each ticker to its dollar amount for the portfolio value
func DollarAmounts(tickers []string, allocations domain.AllocationMap, portfolioValue float64) map[string]float64 {
	out := make(map[string]float64, len(tickers))
	for _, t := range tickers {
		out[t] = DollarAmount(allocations.Get(t), portfolioValue)
	}
	return out
}
