package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/aristath/etfadvisor/internal/modules/scenarios"
	"github.com/spf13/cobra"
)

// NewScenariosCmd lists the preference presets
func NewScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the preset scenarios usable with recommend --scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := FromCommand(cmd)
			if err != nil {
				return err
			}

			all := scenarios.All()
			if c.JSON {
				return printJSON(cmd.OutOrStdout(), all)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTAGES\tEV\tCHINA\tRISK\tDESCRIPTION")
			for _, s := range all {
				p := s.Preferences
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					s.Name, stageLabels(p.SelectedStages), yesNo(p.EVPreference),
					p.ChinaComfort, p.RiskTolerance, s.Description)
			}
			return w.Flush()
		},
	}
}
