package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/aristath/etfadvisor/internal/modules/advisor"
	"github.com/aristath/etfadvisor/internal/modules/baskets"
	"github.com/aristath/etfadvisor/internal/modules/catalog"
	"github.com/aristath/etfadvisor/internal/modules/display"
	"github.com/aristath/etfadvisor/internal/modules/scenarios"
	"github.com/spf13/cobra"
)

type recommendOptions struct {
	scenario       string
	stages         []string
	ev             bool
	china          string
	risk           string
	weights        map[string]string
	allocations    map[string]string
	level          string
	policy         string
	portfolioValue float64
}

// NewRecommendCmd runs the full pipeline once and prints the advice
func NewRecommendCmd() *cobra.Command {
	return newRecommendCmd(&recommendOptions{})
}

func newRecommendCmd(opts *recommendOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Score the catalog and recommend 2- and 3-ETF baskets",
		Example: `  etfadvisor recommend --stages mining,processing --china prefer_low
  etfadvisor recommend --scenario growth --level high
  etfadvisor recommend --weights upstream=8,ev=2 --alloc LIT=40,BATT=30 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := FromCommand(cmd)
			if err != nil {
				return err
			}

			req, err := buildRequest(cmd, opts, c.Advisor.Catalog())
			if err != nil {
				return err
			}

			advice, err := c.Advisor.Advise(req, advisor.OriginCLI)
			if err != nil {
				return err
			}

			if c.JSON {
				return printJSON(cmd.OutOrStdout(), advice)
			}
			return printAdvice(cmd.OutOrStdout(), advice)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.scenario, "scenario", "", "start from a preset scenario (see `etfadvisor scenarios`)")
	f.StringSliceVar(&opts.stages, "stages", nil, "supply-chain stages to target (exploration, mining, processing, components, end_products)")
	f.BoolVar(&opts.ev, "ev", false, "only consider ETFs with an EV/battery theme")
	f.StringVar(&opts.china, "china", "", "China comfort (neutral, prefer_low, prefer_high, medium, low)")
	f.StringVar(&opts.risk, "risk", "", "risk tolerance (low, medium, high)")
	f.StringToStringVar(&opts.weights, "weights", nil, "factor weights 0-10, e.g. upstream=8,ev=2")
	f.StringToStringVar(&opts.allocations, "alloc", nil, "allocation percentages, e.g. LIT=40,BATT=30")
	f.StringVar(&opts.level, "level", "", "knowledge level (low, medium, high)")
	f.StringVar(&opts.policy, "policy", "", "basket overlap policy (unfiltered, soft_cap)")
	f.Float64Var(&opts.portfolioValue, "portfolio-value", domain.DefaultPortfolioValue, "portfolio value used for dollar amounts")

	return cmd
}

// buildRequest starts from the defaults (or a scenario) and applies every flag the user set
func buildRequest(cmd *cobra.Command, opts *recommendOptions, cat *catalog.Catalog) (advisor.Request, error) {
	req := advisor.DefaultRequest()
	flags := cmd.Flags()

	if opts.scenario != "" {
		prefs, err := scenarios.Preset(opts.scenario)
		if err != nil {
			return req, err
		}
		req.Preferences = prefs
	}

	if flags.Changed("stages") {
		stages, err := domain.ParseStages(opts.stages)
		if err != nil {
			return req, err
		}
		req.Preferences.SelectedStages = stages
	}
	if flags.Changed("ev") {
		req.Preferences.EVPreference = opts.ev
	}
	if flags.Changed("china") {
		comfort, err := domain.ParseChinaComfort(opts.china)
		if err != nil {
			return req, err
		}
		req.Preferences.ChinaComfort = comfort
	}
	if flags.Changed("risk") {
		risk, err := domain.ParseRiskLevel(opts.risk)
		if err != nil {
			return req, err
		}
		req.Preferences.RiskTolerance = risk
	}

	for raw, value := range opts.weights {
		key, err := domain.ParseWeightKey(raw)
		if err != nil {
			return req, err
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return req, fmt.Errorf("weight %s: %w", raw, err)
		}
		if req.Weights, err = req.Weights.With(key, v); err != nil {
			return req, err
		}
	}

	for raw, value := range opts.allocations {
		ticker := strings.ToUpper(strings.TrimSpace(raw))
		if !cat.Contains(ticker) {
			return req, fmt.Errorf("%w: %s", catalog.ErrNotFound, ticker)
		}
		pct, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return req, fmt.Errorf("allocation %s: %w", ticker, err)
		}
		req.Allocations[ticker] = domain.ClampAllocation(pct)
	}

	if opts.level != "" {
		level, err := display.ParseLevel(opts.level)
		if err != nil {
			return req, err
		}
		req.Level = level
	}
	if opts.policy != "" {
		policy, err := baskets.ParsePolicy(opts.policy)
		if err != nil {
			return req, err
		}
		req.Policy = policy
	}
	if opts.portfolioValue <= 0 {
		return req, fmt.Errorf("portfolio value must be positive, got %v", opts.portfolioValue)
	}
	req.PortfolioValue = opts.portfolioValue

	return req, nil
}

func printAdvice(out io.Writer, a *advisor.Advice) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Knowledge level: %s    Overlap policy: %s    Candidates: %d\n\n", a.Mode.Level, a.Policy, a.CandidateCount)

	if len(a.ETFs) == 0 {
		fmt.Fprintln(w, a.RecommendationSummary)
		return w.Flush()
	}

	if a.Mode.ShowBreakdowns {
		fmt.Fprintln(w, "RANK\tTICKER\tSCORE\tMAX\tUP\tMID\tDOWN\tEV\tCHINA\tRISK\tAMOUNT")
	} else {
		fmt.Fprintln(w, "RANK\tTICKER\tSCORE\tMAX\tAMOUNT")
	}
	for i, s := range a.ETFs {
		bd := s.Breakdown
		alloc := a.DollarAmounts[s.Ticker]
		if a.Mode.ShowBreakdowns {
			fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t$%.2f\n",
				i+1, s.Ticker, bd.Total, bd.MaxPossible,
				bd.Upstream, bd.Midstream, bd.Downstream, bd.EV, bd.China, bd.Risk, alloc)
		} else {
			fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f\t$%.2f\n", i+1, s.Ticker, bd.Total, bd.MaxPossible, alloc)
		}
	}
	fmt.Fprintln(w)

	printBaskets(w, "Best 2-ETF baskets", a.TwoBaskets)
	printBaskets(w, "Best 3-ETF baskets", a.ThreeBaskets)

	if a.Mode.ShowOverlap && len(a.OverlapPairs) > 0 {
		fmt.Fprintln(w, "Pairwise stage overlap")
		pairs := make([]string, 0, len(a.OverlapPairs))
		for k := range a.OverlapPairs {
			pairs = append(pairs, k)
		}
		sort.Strings(pairs)
		for _, k := range pairs {
			fmt.Fprintf(w, "  %s\t%d\n", k, a.OverlapPairs[k])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Allocated: %.1f%%    Remaining: %.1f%%\n", a.Totals.Total, a.Totals.Remaining)
	if a.Totals.Over {
		fmt.Fprintln(w, "Warning: allocations exceed 100%")
	}
	fmt.Fprintln(w, a.AllocationSummary)
	for _, insight := range a.Insights {
		fmt.Fprintf(w, "  - %s\n", insight)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, a.RecommendationSummary)

	return w.Flush()
}

func printBaskets(w io.Writer, title string, results []advisor.BasketResult) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, "  BASKET\tFINAL\tBASE\tOVERLAP\tDIVERSIFICATION\tSTAGES")
	for _, b := range results {
		bd := b.Breakdown
		fmt.Fprintf(w, "  %s\t%.2f\t%.1f\t%d\t%.3f\t%d\n",
			b.Label, bd.FinalScore, bd.BaseScore, bd.TotalOverlap, bd.Diversification, bd.StageCoverage)
	}
	fmt.Fprintln(w)
}
