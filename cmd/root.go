// Package cmd implements the professor-gemini command line interface: thin
// cobra wrappers around the syncer, the knowledge index and the generation
// pipeline.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var logLevel string

// NewRootCmd creates the root command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "professor-gemini",
		Short: "Knowledge-base article generation and retrieval engine",
		Long: `professor-gemini keeps a pgvector index in sync with the knowledge
corpus and generates deep-dive guides through a staged, quality-gated
Gemini pipeline.

Typical loop:

  professor-gemini sync            # index the corpus
  professor-gemini generate "Kafka rebalancing"
  professor-gemini status          # is the index current?`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log verbosity (debug, info, warn, error)")

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newPurgeCmd())
	rootCmd.AddCommand(newGenerateCmd())

	return rootCmd
}

// Execute runs the CLI. SIGINT/SIGTERM cancel the command context so
// in-flight batches stop between dispatches.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
