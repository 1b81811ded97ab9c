package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udaytamma/ProfessorGemini/internal/knowledge"
)

func newPurgeCmd() *cobra.Command {
	var source string

	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove every document belonging to one source",
		Long: `Purge deletes a whole source from the index. The next sync rebuilds
it from the source files, so purge followed by sync is a full re-index
of that source.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" {
				return errors.New("--source is required")
			}
			if !validSource(source) {
				return fmt.Errorf("unknown source %q (want one of %v)", source, knowledge.KnownSources)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			deleted, err := a.store.DeleteBySource(cmd.Context(), source)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d documents from source %q\n", deleted, source)
			return nil
		},
	}

	purgeCmd.Flags().StringVar(&source, "source", "", "source to purge (kb, scratch, questions, blindspots, wiki)")

	return purgeCmd
}
