package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/spf13/cobra"
)

// NewCatalogCmd lists the ETF universe
func NewCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List every ETF in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := FromCommand(cmd)
			if err != nil {
				return err
			}

			etfs := c.Advisor.Catalog().All()
			if c.JSON {
				return printJSON(cmd.OutOrStdout(), etfs)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TICKER\tSTAGES\tEV\tCHINA\tRISK\tNAME")
			for _, etf := range etfs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					etf.Ticker, stageLabels(etf.Stages), yesNo(etf.EVBatteryTheme),
					etf.ChinaExposure, etf.RiskLevel, etf.Name)
			}
			fmt.Fprintf(w, "\n%d ETFs\n", len(etfs))
			return w.Flush()
		},
	}
}

func stageLabels(stages []domain.Stage) string {
	labels := make([]string, len(stages))
	for i, s := range stages {
		labels[i] = s.Label()
	}
	return strings.Join(labels, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
