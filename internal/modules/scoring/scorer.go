// Package scoring provides the per-ETF weighted scorer, candidate filtering and ranking.
package scoring

import (
	"github.com/aristath/etfadvisor/internal/domain"
)

// Breakdown is the component-by-component result of scoring one ETF.
// Each component is either 0 or the full corresponding weight; there is no partial credit.
type Breakdown struct {
	Upstream    float64 `json:"upstream" msgpack:"upstream"`
	Midstream   float64 `json:"midstream" msgpack:"midstream"`
	Downstream  float64 `json:"downstream" msgpack:"downstream"`
	EV          float64 `json:"ev" msgpack:"ev"`
	China       float64 `json:"china" msgpack:"china"`
	Risk        float64 `json:"risk" msgpack:"risk"`
	Total       float64 `json:"total" msgpack:"total"`
	MaxPossible float64 `json:"max_possible" msgpack:"max_possible"`
	Normalized  float64 `json:"normalized" msgpack:"normalized"` // Total / MaxPossible * 100, 0 when MaxPossible is 0
}

// Components returns the six contributions keyed by weight name
func (b Breakdown) Components() map[domain.WeightKey]float64 {
	return map[domain.WeightKey]float64{
		domain.WeightUpstream:   b.Upstream,
		domain.WeightMidstream:  b.Midstream,
		domain.WeightDownstream: b.Downstream,
		domain.WeightEVBattery:  b.EV,
		domain.WeightChina:      b.China,
		domain.WeightRisk:       b.Risk,
	}
}

// BreakdownETF scores a single ETF against the preference vector and weights.
//
// Matching rules:
//   - Upstream/midstream/downstream: awarded only when the user selected a stage in
//     that group AND the ETF operates in that group.
//   - EV: awarded whenever the ETF carries the EV/battery theme. The user's EV
//     preference is a candidate pre-filter (see Filter), never a scoring input.
//   - China: prefer_low with a low-exposure ETF, or prefer_high with a high-exposure ETF.
//   - Risk: tolerance equals the ETF's risk tier exactly.
//
// MaxPossible is the sum of all weights regardless of what was awarded.
func BreakdownETF(etf domain.ETF, prefs domain.Preferences, weights domain.Weights) Breakdown {
	var b Breakdown

	if domain.GroupUpstream.ContainsAny(prefs.SelectedStages) && etf.InGroup(domain.GroupUpstream) {
		b.Upstream = weights.Upstream
	}
	if domain.GroupMidstream.ContainsAny(prefs.SelectedStages) && etf.InGroup(domain.GroupMidstream) {
		b.Midstream = weights.Midstream
	}
	if domain.GroupDownstream.ContainsAny(prefs.SelectedStages) && etf.InGroup(domain.GroupDownstream) {
		b.Downstream = weights.Downstream
	}

	if etf.EVBatteryTheme {
		b.EV = weights.EVBattery
	}

	if prefs.ChinaComfort.Matches(etf.ChinaExposure) {
		b.China = weights.ChinaExposure
	}

	if prefs.RiskTolerance == etf.RiskLevel {
		b.Risk = weights.RiskTolerance
	}

	b.Total = b.Upstream + b.Midstream + b.Downstream + b.EV + b.China + b.Risk
	b.MaxPossible = weights.Sum()
	if b.MaxPossible > 0 {
		b.Normalized = b.Total / b.MaxPossible * 100
	}

	return b
}
