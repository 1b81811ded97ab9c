package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	var docID string

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove a single document from the index",
		Long: `Delete removes one document by doc_id. The next sync will re-index
the document if its source file still exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if docID == "" {
				return errors.New("--doc-id is required")
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Delete(cmd.Context(), docID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", docID)
			return nil
		},
	}

	deleteCmd.Flags().StringVar(&docID, "doc-id", "", "document identifier, e.g. kb:load-balancing")

	return deleteCmd
}
