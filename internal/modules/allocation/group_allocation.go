package allocation

import (
	"math"

	"github.com/aristath/etfadvisor/internal/domain"
)

// GroupAllocation is the share of the allocated portfolio sitting in one macro group
type GroupAllocation struct {
	Group domain.MacroGroup `json:"group" msgpack:"group"`
	// Allocation percentage points attributed to the group
	Pct float64 `json:"pct" msgpack:"pct"`
	// Pct / total allocated, 0 when nothing is allocated
	ShareOfSum float64 `json:"share_of_sum" msgpack:"share_of_sum"`
}

// CalculateGroupAllocation attributes each ETF's allocation to the macro groups it operates in.
// An ETF spanning several groups has its allocation split equally among them.
// Groups are returned in upstream, midstream, downstream order.
func CalculateGroupAllocation(etfs []domain.ETF, allocations domain.AllocationMap) []GroupAllocation {
	groupValues := aggregateByGroupMulti(etfs, allocations)

	var total float64
	for _, etf := range etfs {
		total += allocations.Get(etf.Ticker)
	}

	out := make([]GroupAllocation, 0, len(domain.MacroGroups))
	for _, g := range domain.MacroGroups {
		pct := groupValues[g]
		var share float64
		if total > 0 {
			share = pct / total
		}
		out = append(out, GroupAllocation{
			Group:      g,
			Pct:        round(pct, 2),
			ShareOfSum: round(share, 4),
		})
	}
	return out
}

// etfGroups lists the macro groups an ETF operates in
func etfGroups(etf domain.ETF) []domain.MacroGroup {
	var groups []domain.MacroGroup
	for _, g := range domain.MacroGroups {
		if etf.InGroup(g) {
			groups = append(groups, g)
		}
	}
	return groups
}

// aggregateByGroupMulti sums allocation percentages by macro group,
// splitting an ETF's value equally among every group it belongs to
func aggregateByGroupMulti(etfs []domain.ETF, allocations domain.AllocationMap) map[domain.MacroGroup]float64 {
	groupValues := make(map[domain.MacroGroup]float64)

	for _, etf := range etfs {
		groups := etfGroups(etf)
		if len(groups) == 0 {
			continue
		}
		split := allocations.Get(etf.Ticker) / float64(len(groups))
		for _, g := range groups {
			groupValues[g] += split
		}
	}

	return groupValues
}

// round rounds a float64 to n decimal places
func round(val float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(val*multiplier) / multiplier
}
