package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/udaytamma/ProfessorGemini/internal/knowledge"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-source document counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.store.GetStats(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SOURCE\tDOCUMENTS")
			for _, source := range knowledge.KnownSources {
				if count, ok := stats.BySource[source]; ok {
					fmt.Fprintf(tw, "%s\t%d\n", source, count)
				}
			}
			fmt.Fprintf(tw, "total\t%d\n", stats.Total)
			return tw.Flush()
		},
	}
}
