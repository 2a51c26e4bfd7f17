package advisor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/aristath/etfadvisor/internal/modules/scoring"
)

// NoMatchSummary is the recommendation summary when nothing survives filtering
const NoMatchSummary = "No ETFs match your criteria. Try adjusting your filters or weights."

// summaryListSize caps the ETFs listed in the recommendation summary
const summaryListSize = 5

// RecommendationSummary echoes the criteria and lists the top ranked ETFs
func RecommendationSummary(ranked []scoring.ScoredETF, prefs domain.Preferences) string {
	if len(ranked) == 0 {
		return NoMatchSummary
	}

	labels := make([]string, len(prefs.SelectedStages))
	for i, s := range prefs.SelectedStages {
		labels[i] = s.Label()
	}
	stages := strings.Join(labels, ", ")
	if stages == "" {
		stages = "No specific stages selected"
	}

	ev := "No"
	if prefs.EVPreference {
		ev = "Yes"
	}

	var sb strings.Builder
	sb.WriteString("Your personalized ETF recommendations are based on:\n")
	fmt.Fprintf(&sb, "• Supply chain stages: %s\n", stages)
	fmt.Fprintf(&sb, "• EV/Battery preference: %s\n", ev)
	fmt.Fprintf(&sb, "• China exposure comfort: %s\n", prefs.ChinaComfort)
	fmt.Fprintf(&sb, "• Risk tolerance: %s\n\n", prefs.RiskTolerance)
	sb.WriteString("Top ETFs:")

	for i, etf := range ranked {
		if i == summaryListSize {
			break
		}
		fmt.Fprintf(&sb, "\n• %s - %s (Score: %s)", etf.Ticker, etf.Name, strconv.FormatFloat(etf.Score(), 'f', -1, 64))
	}

	return sb.String()
}
