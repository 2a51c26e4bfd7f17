package baskets

import (
	"sort"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/aristath/etfadvisor/internal/modules/overlap"
)

// Fixed blend coefficients for the basket final score
const (
	CoverageFactor = 2.0
	EVFactor       = 5.0
	ChinaFactor    = 5.0
	RiskFactor     = 3.0
)

// Breakdown is the quantitative evaluation of one basket
type Breakdown struct {
	BaseScore       float64 `json:"base_score" msgpack:"base_score"`
	OverlapMatrix   [][]int `json:"overlap_matrix" msgpack:"overlap_matrix"`
	TotalOverlap    int     `json:"total_overlap" msgpack:"total_overlap"`
	Diversification float64 `json:"diversification" msgpack:"diversification"`
	StageCoverage   int     `json:"stage_coverage" msgpack:"stage_coverage"`
	EVRatio         float64 `json:"ev_ratio" msgpack:"ev_ratio"`
	ChinaAlignment  float64 `json:"china_alignment" msgpack:"china_alignment"`
	RiskBalance     float64 `json:"risk_balance" msgpack:"risk_balance"`
	FinalScore      float64 `json:"final_score" msgpack:"final_score"`
}

// Basket is a scored combination of ETFs
type Basket struct {
	ETFs      []domain.ETF `json:"etfs" msgpack:"etfs"`
	Breakdown Breakdown    `json:"breakdown" msgpack:"breakdown"`
}

// Tickers returns member tickers in enumeration order
func (b Basket) Tickers() []string {
	return domain.Tickers(b.ETFs)
}

// Diversification returns 1 / (1 + totalOverlap)
func Diversification(totalOverlap int) float64 {
	return 1 / (1 + float64(totalOverlap))
}

// Score evaluates a basket.
//
// Base score weights each member's ETF score by its allocation percentage; a
// member without an allocation (or without a score) contributes 0. China
// alignment is the share of members with a low China tier regardless of the
// user's comfort, and risk balance rewards distinct risk tiers rather than
// alignment with the user's tolerance.
func Score(members []domain.ETF, scores map[string]float64, allocations domain.AllocationMap) Breakdown {
	var b Breakdown
	if len(members) == 0 {
		b.OverlapMatrix = [][]int{}
		b.Diversification = 1
		return b
	}

	for _, etf := range members {
		b.BaseScore += scores[etf.Ticker] * (allocations.Get(etf.Ticker) / 100)
	}

	m := overlap.Compute(members)
	b.OverlapMatrix = m.Rows()
	b.TotalOverlap = m.Total()
	b.Diversification = Diversification(b.TotalOverlap)

	stageLists := make([][]domain.Stage, len(members))
	riskTiers := make(map[domain.RiskLevel]struct{})
	var ev, lowChina int
	for i, etf := range members {
		stageLists[i] = etf.Stages
		riskTiers[etf.RiskLevel] = struct{}{}
		if etf.EVBatteryTheme {
			ev++
		}
		if etf.ChinaExposure == domain.ChinaLow {
			lowChina++
		}
	}

	n := float64(len(members))
	b.StageCoverage = domain.DistinctStages(stageLists...)
	b.EVRatio = float64(ev) / n
	b.ChinaAlignment = float64(lowChina) / n
	b.RiskBalance = float64(len(riskTiers)) / float64(len(domain.RiskLevels))

	b.FinalScore = b.BaseScore*b.Diversification +
		float64(b.StageCoverage)*CoverageFactor +
		b.EVRatio*EVFactor +
		b.ChinaAlignment*ChinaFactor +
		b.RiskBalance*RiskFactor

	return b
}

// ScoreAll scores each combination, keeping enumeration order
func ScoreAll(combos [][]domain.ETF, scores map[string]float64, allocations domain.AllocationMap) []Basket {
	out := make([]Basket, len(combos))
	for i, combo := range combos {
		out[i] = Basket{
			ETFs:      combo,
			Breakdown: Score(combo, scores, allocations),
		}
	}
	return out
}

// Rank orders baskets by final score (highest first) and truncates to limit.
// Ties keep enumeration order. A limit of 0 or less keeps everything.
func Rank(baskets []Basket, limit int) []Basket {
	sort.SliceStable(baskets, func(i, j int) bool {
		return baskets[i].Breakdown.FinalScore > baskets[j].Breakdown.FinalScore
	})
	if limit > 0 && len(baskets) > limit {
		baskets = baskets[:limit]
	}
	return baskets
}

// Recommend enumerates size-k baskets from the ranked candidates, scores and ranks them
func Recommend(candidates []domain.ETF, k int, policy Policy, scores map[string]float64, allocations domain.AllocationMap, limit int) []Basket {
	return Rank(ScoreAll(Enumerate(candidates, k, policy), scores, allocations), limit)
}
