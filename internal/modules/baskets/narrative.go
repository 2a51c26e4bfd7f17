package baskets

import (
	"fmt"
	"strings"

	"github.com/aristath/etfadvisor/internal/domain"
)

// Explain renders the "why this basket works" narrative for a scored basket
func Explain(b Basket) string {
	bd := b.Breakdown

	risks := make([]string, len(b.ETFs))
	for i, etf := range b.ETFs {
		risks[i] = string(etf.RiskLevel)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "This basket minimizes supply-chain concentration (total overlap %d), ", bd.TotalOverlap)
	fmt.Fprintf(&sb, "achieves a diversification coefficient of %.3f, ", bd.Diversification)
	fmt.Fprintf(&sb, "and covers %d unique supply-chain stages.\n\n", bd.StageCoverage)
	fmt.Fprintf(&sb, "EV exposure is %.0f%%, while China alignment is %.0f%%.\n\n", bd.EVRatio*100, bd.ChinaAlignment*100)
	fmt.Fprintf(&sb, "Risk balance is strong due to a mix of risk levels across: %s.\n\n", strings.Join(risks, ", "))
	sb.WriteString("Overall, this basket provides a well-balanced blend of upstream, midstream, and downstream exposure with quant-verified diversification.")

	return sb.String()
}

// Label joins member tickers with " + "
func Label(etfs []domain.ETF) string {
	return strings.Join(domain.Tickers(etfs), " + ")
}
