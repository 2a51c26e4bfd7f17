package scoring

import (
	"sort"

	"github.com/aristath/etfadvisor/internal/domain"
)

// ScoredETF pairs a catalog record with its score breakdown
type ScoredETF struct {
	domain.ETF
	Breakdown Breakdown `json:"breakdown" msgpack:"breakdown"`
}

// Score returns the total weighted score
func (s ScoredETF) Score() float64 {
	return s.Breakdown.Total
}

// Filter narrows the catalog to candidates for the preference vector.
//   - With stages selected, an ETF must operate in at least one of them.
//   - With EV preference set, ETFs without the EV/battery theme are excluded.
//
// Catalog order is preserved.
func Filter(etfs []domain.ETF, prefs domain.Preferences) []domain.ETF {
	out := make([]domain.ETF, 0, len(etfs))
	for _, etf := range etfs {
		if prefs.HasStageFilter() && !etf.HasAnyStage(prefs.SelectedStages) {
			continue
		}
		if prefs.EVPreference && !etf.EVBatteryTheme {
			continue
		}
		out = append(out, etf)
	}
	return out
}

// ScoreAll scores every ETF without filtering or reordering
func ScoreAll(etfs []domain.ETF, prefs domain.Preferences, weights domain.Weights) []ScoredETF {
	scored := make([]ScoredETF, len(etfs))
	for i, etf := range etfs {
		scored[i] = ScoredETF{
			ETF:       etf,
			Breakdown: BreakdownETF(etf, prefs, weights),
		}
	}
	return scored
}

// Rank filters, scores and orders ETFs by total score (highest first), then truncates to limit.
// Equal scores keep catalog order. A limit of 0 or less returns every candidate.
func Rank(etfs []domain.ETF, prefs domain.Preferences, weights domain.Weights, limit int) []ScoredETF {
	scored := ScoreAll(Filter(etfs, prefs), prefs, weights)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score() > scored[j].Score()
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// ScoreMap indexes total scores by ticker
func ScoreMap(scored []ScoredETF) map[string]float64 {
	out := make(map[string]float64, len(scored))
	for _, s := range scored {
		out[s.Ticker] = s.Score()
	}
	return out
}

// ETFs strips the breakdowns off a scored list, keeping order
func ETFs(scored []ScoredETF) []domain.ETF {
	out := make([]domain.ETF, len(scored))
	for i, s := range scored {
		out[i] = s.ETF
	}
	return out
}
