package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/udaytamma/ProfessorGemini/internal/knowledge"
)

func newListCmd() *cobra.Command {
	var source string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			if source != "" && !validSource(source) {
				return fmt.Errorf("unknown source %q (want one of %v)", source, knowledge.KnownSources)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			sources := knowledge.KnownSources
			if source != "" {
				sources = []string{source}
			}

			var docs []knowledge.Document
			for _, src := range sources {
				listed, err := a.store.ListBySource(cmd.Context(), src)
				if err != nil {
					return err
				}
				docs = append(docs, listed...)
			}

			printDocuments(cmd.OutOrStdout(), docs)
			return nil
		},
	}

	listCmd.Flags().StringVar(&source, "source", "", "restrict to one source (kb, scratch, questions, blindspots, wiki)")

	return listCmd
}

func validSource(source string) bool {
	for _, known := range knowledge.KnownSources {
		if source == known {
			return true
		}
	}
	return false
}

func printDocuments(w io.Writer, docs []knowledge.Document) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "no documents indexed")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DOC_ID\tSOURCE\tCHARS\tINDEXED_AT\tTITLE")
	for _, doc := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			doc.DocID, doc.Source, doc.CharCount,
			doc.IndexedAt.Format("2006-01-02 15:04"), doc.Title)
	}
	_ = tw.Flush()
}
