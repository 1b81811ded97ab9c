package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/udaytamma/ProfessorGemini/internal/files"
	"github.com/udaytamma/ProfessorGemini/internal/pipeline"
	"github.com/udaytamma/ProfessorGemini/internal/retrieve"
)

func newGenerateCmd() *cobra.Command {
	var (
		workers int
		dryRun  bool
	)

	generateCmd := &cobra.Command{
		Use:   "generate <topic> [topic...]",
		Short: "Generate deep-dive guides for one or more topics",
		Long: `Generate runs the staged pipeline for each topic: base knowledge,
topic split, parallel quality-gated deep dives, then synthesis. Finished
guides are written to the knowledge-base directory and the index is
re-synced so they become retrievable immediately.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			retriever := retrieve.New(a.store, a.cfg, a.logger)
			gate := pipeline.NewGate(a.client.Reviewer(), a.logger)
			pipe := pipeline.New(a.client, gate, retriever, a.cfg, a.logger)
			manager := files.NewManager(a.cfg.KBPath, a.logger)
			batch := pipeline.NewBatchRunner(pipe, manager, a.syncer, a.cfg, a.logger)

			report := batch.Run(cmd.Context(), args, workers, dryRun)
			printBatchReport(cmd.OutOrStdout(), report)

			if !report.DryRun && report.Succeeded == 0 {
				return errors.New("no topics succeeded")
			}
			return nil
		},
	}

	generateCmd.Flags().IntVar(&workers, "workers", 0, "max topics in flight (0 uses the configured default)")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the planned topics without calling the model")

	return generateCmd
}

func printBatchReport(w io.Writer, report *pipeline.BatchReport) {
	if report.DryRun {
		fmt.Fprintf(w, "dry run: %d topic(s) planned\n", len(report.Planned))
		for _, topic := range report.Planned {
			fmt.Fprintf(w, "  - %s\n", topic)
		}
		return
	}

	for _, outcome := range report.Outcomes {
		if outcome.Succeeded {
			fmt.Fprintf(w, "ok   %s -> %s (%s)\n",
				outcome.Topic, outcome.GuidePath, outcome.Duration.Round(time.Second))
			if outcome.FailedSections > 0 {
				fmt.Fprintf(w, "     %d section(s) below confidence threshold, review recommended\n",
					outcome.FailedSections)
			}
			continue
		}
		fmt.Fprintf(w, "FAIL %s at %s: %s (%s)\n",
			outcome.Topic, outcome.Stage, outcome.Error, outcome.Duration.Round(time.Second))
		for _, issue := range outcome.Issues {
			fmt.Fprintf(w, "     - %s\n", issue)
		}
	}
	fmt.Fprintf(w, "%d succeeded, %d failed in %s\n",
		report.Succeeded, report.Failed, report.Duration.Round(time.Second))
}
