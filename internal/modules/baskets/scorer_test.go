package baskets

import (
	"testing"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/aristath/etfadvisor/internal/modules/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_WorkedExample(t *testing.T) {
	members := []domain.ETF{
		{Ticker: "URA", Stages: []domain.Stage{domain.StageMining}, ChinaExposure: domain.ChinaLow, RiskLevel: domain.RiskHigh},
		{Ticker: "FAN", Stages: []domain.Stage{domain.StageEndProducts}, EVBatteryTheme: true, ChinaExposure: domain.ChinaMedium, RiskLevel: domain.RiskMedium},
	}
	scores := map[string]float64{"URA": 10, "FAN": 8}
	alloc := domain.AllocationMap{"URA": 50, "FAN": 50}

	b := Score(members, scores, alloc)

	assert.InDelta(t, 9.0, b.BaseScore, 1e-9)
	assert.Equal(t, 0, b.TotalOverlap)
	assert.Equal(t, 1.0, b.Diversification)
	assert.Equal(t, [][]int{{0, 0}, {0, 0}}, b.OverlapMatrix)
	assert.Equal(t, 2, b.StageCoverage)
	assert.Equal(t, 0.5, b.EVRatio)
	assert.Equal(t, 0.5, b.ChinaAlignment)
	assert.InDelta(t, 2.0/3.0, b.RiskBalance, 1e-9)
	// 9*1 + 2*2 + 0.5*5 + 0.5*5 + (2/3)*3
	assert.InDelta(t, 20.0, b.FinalScore, 1e-9)
}

func TestScore_MissingAllocationContributesNothing(t *testing.T) {
	members := []domain.ETF{
		etf("A", domain.StageMining),
		etf("B", domain.StageEndProducts),
	}

	b := Score(members, map[string]float64{"A": 30, "B": 30}, nil)
	assert.Zero(t, b.BaseScore)

	b = Score(members, map[string]float64{"A": 30, "B": 30}, domain.AllocationMap{"A": 100})
	assert.InDelta(t, 30.0, b.BaseScore, 1e-9)
}

func TestScore_OverlapPenalisesBase(t *testing.T) {
	members := []domain.ETF{
		etf("A", domain.StageMining, domain.StageProcessing),
		etf("B", domain.StageMining, domain.StageProcessing),
	}

	b := Score(members, map[string]float64{"A": 20, "B": 20}, domain.AllocationMap{"A": 50, "B": 50})

	assert.Equal(t, 4, b.TotalOverlap)
	assert.InDelta(t, 0.2, b.Diversification, 1e-9)
	assert.InDelta(t, 20.0, b.BaseScore, 1e-9)
	// 20*0.2 + 2*2 + 0 + 1*5 + (1/3)*3
	assert.InDelta(t, 14.0, b.FinalScore, 1e-9)
}

func TestDiversification_StrictlyDecreasing(t *testing.T) {
	prev := Diversification(0)
	assert.Equal(t, 1.0, prev)
	for overlap := 1; overlap <= 20; overlap++ {
		d := Diversification(overlap)
		assert.Less(t, d, prev)
		assert.Greater(t, d, 0.0)
		prev = d
	}
}

func TestRank_StableOnTies(t *testing.T) {
	baskets := []Basket{
		{ETFs: []domain.ETF{etf("A")}, Breakdown: Breakdown{FinalScore: 5}},
		{ETFs: []domain.ETF{etf("B")}, Breakdown: Breakdown{FinalScore: 7}},
		{ETFs: []domain.ETF{etf("C")}, Breakdown: Breakdown{FinalScore: 5}},
		{ETFs: []domain.ETF{etf("D")}, Breakdown: Breakdown{FinalScore: 7}},
	}

	ranked := Rank(baskets, 3)

	require.Len(t, ranked, 3)
	assert.Equal(t, "B", Label(ranked[0].ETFs))
	assert.Equal(t, "D", Label(ranked[1].ETFs))
	assert.Equal(t, "A", Label(ranked[2].ETFs))
}

func TestRecommend_OverCatalog(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	top := c.All()[:5]
	scores := map[string]float64{}
	for _, e := range top {
		scores[e.Ticker] = 10
	}

	two := Recommend(top, 2, PolicyUnfiltered, scores, nil, 5)
	three := Recommend(top, 3, PolicyUnfiltered, scores, nil, 5)

	assert.Len(t, two, 5)
	assert.Len(t, three, 5)
	for i := 1; i < len(two); i++ {
		assert.GreaterOrEqual(t, two[i-1].Breakdown.FinalScore, two[i].Breakdown.FinalScore)
	}
	for _, b := range three {
		assert.Len(t, b.ETFs, 3)
		assert.LessOrEqual(t, b.Breakdown.StageCoverage, len(domain.AllStages))
	}
}

func TestExplain(t *testing.T) {
	b := Basket{
		ETFs: []domain.ETF{
			{Ticker: "URA", RiskLevel: domain.RiskHigh},
			{Ticker: "FAN", RiskLevel: domain.RiskMedium},
		},
		Breakdown: Breakdown{TotalOverlap: 0, Diversification: 1, StageCoverage: 2, EVRatio: 0.5, ChinaAlignment: 0.5},
	}

	text := Explain(b)

	assert.Contains(t, text, "total overlap 0")
	assert.Contains(t, text, "diversification coefficient of 1.000")
	assert.Contains(t, text, "covers 2 unique supply-chain stages")
	assert.Contains(t, text, "EV exposure is 50%, while China alignment is 50%")
	assert.Contains(t, text, "risk levels across: high, medium.")
}
