package allocation

import (
	"testing"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		weights  []float64
		expected float64
	}{
		{"equal weights", []float64{1, 3}, []float64{50, 50}, 2},
		{"skewed weights", []float64{0, 1}, []float64{25, 75}, 0.75},
		{"all weights zero", []float64{3, 7, 9}, []float64{0, 0, 0}, 0},
		{"empty", nil, nil, 0},
		{"single weighted", []float64{2, 9}, []float64{0, 10}, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, WeightedAverage(tt.values, tt.weights), 1e-9)
		})
	}
}

func TestEncodings(t *testing.T) {
	assert.Equal(t, 1.0, RiskValue(domain.RiskLow))
	assert.Equal(t, 2.0, RiskValue(domain.RiskMedium))
	assert.Equal(t, 3.0, RiskValue(domain.RiskHigh))
	assert.Equal(t, 0.0, ChinaValue(domain.ChinaLow))
	assert.Equal(t, 0.5, ChinaValue(domain.ChinaMedium))
	assert.Equal(t, 1.0, ChinaValue(domain.ChinaHigh))
	assert.Equal(t, 1.0, EVValue(domain.ETF{EVBatteryTheme: true}))
	assert.Equal(t, 0.0, EVValue(domain.ETF{}))
}

func selection() []domain.ETF {
	return []domain.ETF{
		{Ticker: "LIT", Stages: []domain.Stage{domain.StageComponents, domain.StageEndProducts}, EVBatteryTheme: true, ChinaExposure: domain.ChinaMedium, RiskLevel: domain.RiskMedium},
		{Ticker: "URNM", Stages: []domain.Stage{domain.StageExploration, domain.StageMining}, ChinaExposure: domain.ChinaLow, RiskLevel: domain.RiskHigh},
	}
}

func TestCompute(t *testing.T) {
	m := Compute(selection(), domain.AllocationMap{"LIT": 60, "URNM": 20})

	assert.Equal(t, 80.0, m.TotalAllocation)
	assert.InDelta(t, 0.75, m.EV, 1e-9)
	assert.InDelta(t, 0.375, m.China, 1e-9)
	assert.InDelta(t, 2.25, m.Risk, 1e-9)
	assert.InDelta(t, 2.0, m.StageCoverage, 1e-9)
}

func TestSummary_Empty(t *testing.T) {
	assert.Equal(t, "No ETFs selected.", Summary(nil, nil))
}

func TestSummary_Narrative(t *testing.T) {
	text := Summary(selection(), domain.AllocationMap{"LIT": 60, "URNM": 20})

	assert.Contains(t, text, "Your current allocation totals 80.0%.")
	assert.Contains(t, text, "• EV/battery exposure is 75%.")
	assert.Contains(t, text, "• China exposure aligns at 38%.")
	assert.Contains(t, text, "• Risk profile is 75% of maximum.")
	assert.Contains(t, text, "• Supply-chain coverage averages 2.0 stages per ETF.")
	assert.Contains(t, text, "This allocation emphasizes higher-volatility assets and strong EV/battery alignment.")
	assert.Contains(t, text, "Your portfolio reflects moderate China exposure, and maintains focused supply-chain exposure.")
}

func TestSummary_NoAllocations(t *testing.T) {
	text := Summary(selection(), nil)

	assert.Contains(t, text, "Your current allocation totals 0.0%.")
	assert.Contains(t, text, "balanced risk exposure and moderate EV exposure")
	assert.Contains(t, text, "low China dependency")
}

func TestInsights(t *testing.T) {
	tests := []struct {
		name     string
		alloc    domain.AllocationMap
		expected []string
	}{
		{
			name:  "EV heavy",
			alloc: domain.AllocationMap{"LIT": 60, "URNM": 20},
			expected: []string{
				"Your portfolio leans strongly toward EV and battery themes.",
				"Your China exposure is moderate, offering balanced cost and risk.",
				"Your risk profile is balanced across volatility levels.",
				"Your supply‑chain coverage is narrow, increasing concentration risk.",
			},
		},
		{
			name:  "miner heavy",
			alloc: domain.AllocationMap{"URNM": 100},
			expected: []string{
				"Your EV exposure is low, reducing thematic concentration risk.",
				"Your China exposure is low, reducing geopolitical and supply‑chain risk.",
				"Your risk profile is aggressive, emphasizing higher‑volatility assets.",
				"Your supply‑chain coverage is narrow, increasing concentration risk.",
			},
		},
		{
			name:  "even split",
			alloc: domain.AllocationMap{"LIT": 50, "URNM": 50},
			expected: []string{
				"You have moderate EV exposure, balancing growth and stability.",
				"Your China exposure is low, reducing geopolitical and supply‑chain risk.",
				"Your risk profile is aggressive, emphasizing higher‑volatility assets.",
				"Your supply‑chain coverage is narrow, increasing concentration risk.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Insights(selection(), tt.alloc))
		})
	}
}

func TestInsights_BroadCoverageAndConservative(t *testing.T) {
	etfs := []domain.ETF{
		{Ticker: "PICK", Stages: []domain.Stage{domain.StageExploration, domain.StageMining, domain.StageProcessing}, ChinaExposure: domain.ChinaHigh, RiskLevel: domain.RiskLow},
	}

	insights := Insights(etfs, domain.AllocationMap{"PICK": 10})

	require.Len(t, insights, 4)
	assert.Equal(t, "Your China exposure is high, increasing geopolitical sensitivity.", insights[1])
	assert.Equal(t, "Your risk profile is conservative, prioritizing stability.", insights[2])
	assert.Equal(t, "Your supply‑chain coverage is broad, improving diversification.", insights[3])
}

func TestInsights_Empty(t *testing.T) {
	assert.Empty(t, Insights(nil, domain.AllocationMap{"X": 10}))
}

func TestInsights_Thresholds(t *testing.T) {
	// Two single-stage ETFs; a carries the attribute under test, b is neutral
	pair := func(a domain.ETF, wa float64, wb float64) []string {
		a.Ticker = "A"
		if a.Stages == nil {
			a.Stages = []domain.Stage{domain.StageMining}
		}
		if a.ChinaExposure == "" {
			a.ChinaExposure = domain.ChinaLow
		}
		if a.RiskLevel == "" {
			a.RiskLevel = domain.RiskLow
		}
		b := domain.ETF{Ticker: "B", Stages: []domain.Stage{domain.StageMining}, ChinaExposure: domain.ChinaLow, RiskLevel: domain.RiskLow}
		return Insights([]domain.ETF{a, b}, domain.AllocationMap{"A": wa, "B": wb})
	}

	tests := []struct {
		name     string
		etf      domain.ETF
		wa, wb   float64
		index    int
		expected string
	}{
		{"ev at strong cut", domain.ETF{EVBatteryTheme: true}, 60, 40, 0, "You have moderate EV exposure, balancing growth and stability."},
		{"ev above strong cut", domain.ETF{EVBatteryTheme: true}, 61, 39, 0, "Your portfolio leans strongly toward EV and battery themes."},
		{"ev at moderate cut", domain.ETF{EVBatteryTheme: true}, 30, 70, 0, "Your EV exposure is low, reducing thematic concentration risk."},
		{"china at low cut", domain.ETF{ChinaExposure: domain.ChinaHigh}, 30, 70, 1, "Your China exposure is moderate, offering balanced cost and risk."},
		{"china below low cut", domain.ETF{ChinaExposure: domain.ChinaHigh}, 29, 71, 1, "Your China exposure is low, reducing geopolitical and supply‑chain risk."},
		{"china at moderate cut", domain.ETF{ChinaExposure: domain.ChinaHigh}, 60, 40, 1, "Your China exposure is high, increasing geopolitical sensitivity."},
		{"risk at conservative cut", domain.ETF{RiskLevel: domain.RiskHigh}, 35, 65, 2, "Your risk profile is balanced across volatility levels."},
		{"risk below conservative cut", domain.ETF{RiskLevel: domain.RiskHigh}, 34, 66, 2, "Your risk profile is conservative, prioritizing stability."},
		{"risk at balanced cut", domain.ETF{RiskLevel: domain.RiskHigh}, 65, 35, 2, "Your risk profile is aggressive, emphasizing higher‑volatility assets."},
		{"coverage at broad cut", domain.ETF{Stages: []domain.Stage{domain.StageExploration, domain.StageMining, domain.StageProcessing, domain.StageComponents, domain.StageEndProducts}}, 50, 50, 3, "Your supply‑chain coverage is broad, improving diversification."},
		{"coverage below broad cut", domain.ETF{Stages: []domain.Stage{domain.StageExploration, domain.StageMining, domain.StageProcessing, domain.StageComponents, domain.StageEndProducts}}, 49, 51, 3, "Your supply‑chain coverage is narrow, increasing concentration risk."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insights := pair(tt.etf, tt.wa, tt.wb)
			require.Len(t, insights, 4)
			assert.Equal(t, tt.expected, insights[tt.index])
		})
	}
}

func TestSummary_Thresholds(t *testing.T) {
	evETF := domain.ETF{Ticker: "A", Stages: []domain.Stage{domain.StageMining}, EVBatteryTheme: true, ChinaExposure: domain.ChinaLow, RiskLevel: domain.RiskHigh}
	plain := domain.ETF{Ticker: "B", Stages: []domain.Stage{domain.StageMining}, ChinaExposure: domain.ChinaLow, RiskLevel: domain.RiskLow}
	etfs := []domain.ETF{evETF, plain}

	// EV 0.5 and risk 2.0 sit exactly on the cuts
	text := Summary(etfs, domain.AllocationMap{"A": 50, "B": 50})
	assert.Contains(t, text, "This allocation emphasizes balanced risk exposure and moderate EV exposure.")

	text = Summary(etfs, domain.AllocationMap{"A": 51, "B": 49})
	assert.Contains(t, text, "This allocation emphasizes higher-volatility assets and strong EV/battery alignment.")
}
