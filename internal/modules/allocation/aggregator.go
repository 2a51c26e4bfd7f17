// Package allocation derives allocation-weighted metrics, narratives and totals
// from the percentages a user assigns across selected ETFs.
package allocation

import (
	"fmt"
	"strings"

	"github.com/aristath/etfadvisor/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NoSelectionSummary is returned by Summary when there are no ETFs
const NoSelectionSummary = "No ETFs selected."

// Narrative cut points
const (
	insightEVStrong      = 0.6
	insightEVModerate    = 0.3
	chinaLowCutoff       = 0.3
	chinaModerateCutoff  = 0.6
	riskConservativeUpTo = 1.7
	riskBalancedUpTo     = 2.3
	broadCoverageFrom    = 3.0

	summaryRiskElevated = 2.0
	summaryEVStrong     = 0.5
)

// RiskValue encodes a risk tier as low=1, medium=2, high=3
func RiskValue(r domain.RiskLevel) float64 {
	switch r {
	case domain.RiskLow:
		return 1
	case domain.RiskMedium:
		return 2
	case domain.RiskHigh:
		return 3
	}
	return 0
}

// ChinaValue encodes a China tier as low=0, medium=0.5, high=1
func ChinaValue(c domain.ChinaExposure) float64 {
	switch c {
	case domain.ChinaMedium:
		return 0.5
	case domain.ChinaHigh:
		return 1
	}
	return 0
}

// EVValue encodes the EV/battery flag as 0 or 1
func EVValue(etf domain.ETF) float64 {
	if etf.EVBatteryTheme {
		return 1
	}
	return 0
}

// WeightedAverage returns Σ(v·w)/Σw, or 0 when Σw is 0.
// values and weights must have the same length.
func WeightedAverage(values, weights []float64) float64 {
	if len(values) == 0 || floats.Sum(weights) == 0 {
		return 0
	}
	return stat.Mean(values, weights)
}

// Metrics are the allocation-weighted averages across a selection
type Metrics struct {
	TotalAllocation float64 `json:"total_allocation" msgpack:"total_allocation"`
	EV              float64 `json:"ev" msgpack:"ev"`
	China           float64 `json:"china" msgpack:"china"`
	Risk            float64 `json:"risk" msgpack:"risk"`
	StageCoverage   float64 `json:"stage_coverage" msgpack:"stage_coverage"`
}

// Compute weights each ETF's encoded attributes by its allocation (absent = 0)
func Compute(etfs []domain.ETF, allocations domain.AllocationMap) Metrics {
	n := len(etfs)
	weights := make([]float64, n)
	ev := make([]float64, n)
	china := make([]float64, n)
	risk := make([]float64, n)
	stages := make([]float64, n)

	for i, etf := range etfs {
		weights[i] = allocations.Get(etf.Ticker)
		ev[i] = EVValue(etf)
		china[i] = ChinaValue(etf.ChinaExposure)
		risk[i] = RiskValue(etf.RiskLevel)
		stages[i] = float64(etf.StageCount())
	}

	return Metrics{
		TotalAllocation: floats.Sum(weights),
		EV:              WeightedAverage(ev, weights),
		China:           WeightedAverage(china, weights),
		Risk:            WeightedAverage(risk, weights),
		StageCoverage:   WeightedAverage(stages, weights),
	}
}

// Summary renders the allocation-weighted narrative for the selection
func Summary(etfs []domain.ETF, allocations domain.AllocationMap) string {
	if len(etfs) == 0 {
		return NoSelectionSummary
	}
	m := Compute(etfs, allocations)

	riskPhrase := "balanced risk exposure"
	if m.Risk > summaryRiskElevated {
		riskPhrase = "higher-volatility assets"
	}
	evPhrase := "moderate EV exposure"
	if m.EV > summaryEVStrong {
		evPhrase = "strong EV/battery alignment"
	}
	chinaPhrase := "high China concentration"
	switch {
	case m.China < chinaLowCutoff:
		chinaPhrase = "low China dependency"
	case m.China < chinaModerateCutoff:
		chinaPhrase = "moderate China exposure"
	}
	coveragePhrase := "focused supply-chain exposure"
	if m.StageCoverage >= broadCoverageFrom {
		coveragePhrase = "broad supply-chain diversification"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Your current allocation totals %.1f%%.\n\n", m.TotalAllocation)
	sb.WriteString("Based on your slider selections:\n\n")
	fmt.Fprintf(&sb, "• EV/battery exposure is %.0f%%.\n", m.EV*100)
	fmt.Fprintf(&sb, "• China exposure aligns at %.0f%%.\n", m.China*100)
	fmt.Fprintf(&sb, "• Risk profile is %.0f%% of maximum.\n", m.Risk/3*100)
	fmt.Fprintf(&sb, "• Supply-chain coverage averages %.1f stages per ETF.\n\n", m.StageCoverage)
	fmt.Fprintf(&sb, "This allocation emphasizes %s and %s.\n\n", riskPhrase, evPhrase)
	fmt.Fprintf(&sb, "Your portfolio reflects %s, and maintains %s.\n\n", chinaPhrase, coveragePhrase)
	sb.WriteString("As you adjust allocations, this summary will update to reflect your evolving strategy.")

	return sb.String()
}

// Insights returns one short observation each for EV, China, risk and coverage, in that order.
// An empty selection yields no insights.
func Insights(etfs []domain.ETF, allocations domain.AllocationMap) []string {
	if len(etfs) == 0 {
		return []string{}
	}
	m := Compute(etfs, allocations)
	insights := make([]string, 0, 4)

	switch {
	case m.EV > insightEVStrong:
		insights = append(insights, "Your portfolio leans strongly toward EV and battery themes.")
	case m.EV > insightEVModerate:
		insights = append(insights, "You have moderate EV exposure, balancing growth and stability.")
	default:
		insights = append(insights, "Your EV exposure is low, reducing thematic concentration risk.")
	}

	switch {
	case m.China < chinaLowCutoff:
		insights = append(insights, "Your China exposure is low, reducing geopolitical and supply‑chain risk.")
	case m.China < chinaModerateCutoff:
		insights = append(insights, "Your China exposure is moderate, offering balanced cost and risk.")
	default:
		insights = append(insights, "Your China exposure is high, increasing geopolitical sensitivity.")
	}

	switch {
	case m.Risk < riskConservativeUpTo:
		insights = append(insights, "Your risk profile is conservative, prioritizing stability.")
	case m.Risk < riskBalancedUpTo:
		insights = append(insights, "Your risk profile is balanced across volatility levels.")
	default:
		insights = append(insights, "Your risk profile is aggressive, emphasizing higher‑volatility assets.")
	}

	if m.StageCoverage >= broadCoverageFrom {
		insights = append(insights, "Your supply‑chain coverage is broad, improving diversification.")
	} else {
		insights = append(insights, "Your supply‑chain coverage is narrow, increasing concentration risk.")
	}

	return insights
}
