package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the index is current with the source corpus",
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
			latest, err := a.store.LatestIndexedAt(cmd.Context())
			if err != nil {
				return err
			}
			stale, err := a.syncer.Stale(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "documents indexed: %d\n", stats.Total)
			if latest.IsZero() {
				fmt.Fprintln(out, "last indexed:      never")
			} else {
				fmt.Fprintf(out, "last indexed:      %s\n", latest.Format("2006-01-02 15:04:05 MST"))
			}
			if stale {
				fmt.Fprintln(out, "status:            stale (run `professor-gemini sync`)")
			} else {
				fmt.Fprintln(out, "status:            up to date")
			}
			return nil
		},
	}
}
