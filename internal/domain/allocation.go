package domain

import (
	"fmt"
	"math"
	"sort"
)

// Allocation slider bounds (percent)
const (
	AllocationMin = 0.0
	AllocationMax = 100.0
)

// DefaultPortfolioValue is the notional portfolio size used for dollar amounts
const DefaultPortfolioValue = 100000.0

// AllocationMap maps ticker to a percentage in [0,100].
// It is sparse: an absent ticker means 0. Nothing forces the values to sum to 100.
type AllocationMap map[string]float64

// Get returns the allocation for ticker, 0 if absent
func (a AllocationMap) Get(ticker string) float64 {
	if a == nil {
		return 0
	}
	return a[ticker]
}

// With returns a copy of the map with one ticker set.
// The value is clamped to [AllocationMin, AllocationMax].
func (a AllocationMap) With(ticker string, pct float64) AllocationMap {
	out := a.Clone()
	out[ticker] = ClampAllocation(pct)
	return out
}

// Clone returns a copy that is safe to modify
func (a AllocationMap) Clone() AllocationMap {
	out := make(AllocationMap, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Tickers returns the tickers present in the map, sorted
func (a AllocationMap) Tickers() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate rejects NaN and out-of-range entries
func (a AllocationMap) Validate() error {
	for ticker, pct := range a {
		if math.IsNaN(pct) || pct < AllocationMin || pct > AllocationMax {
			return fmt.Errorf("%w: %s=%v", ErrInvalidAllocation, ticker, pct)
		}
	}
	return nil
}

// ClampAllocation bounds a percentage to the slider range
func ClampAllocation(pct float64) float64 {
	if math.IsNaN(pct) {
		return AllocationMin
	}
	return math.Max(AllocationMin, math.Min(AllocationMax, pct))
}
