package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/udaytamma/ProfessorGemini/internal/syncer"
)

// debounce window for filesystem events; editors fire several events per
// save and a re-sync per event would thrash the embedder.
const watchDebounce = 2 * time.Second

func newSyncCmd() *cobra.Command {
	var (
		force bool
		watch bool
	)

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize the knowledge index with the source corpus",
		Long: `Sync walks every configured source (markdown directories and
TypeScript data files), diffs content hashes against the index, and
upserts changed documents and removes orphans. Unchanged documents are
never re-embedded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.syncer.Sync(cmd.Context(), force)
			if err != nil {
				return err
			}
			printSyncReport(cmd.OutOrStdout(), report)

			if !watch {
				return nil
			}
			return watchSources(cmd.Context(), cmd.OutOrStdout(), a)
		},
	}

	syncCmd.Flags().BoolVar(&force, "force", false, "re-index every document, ignoring hashes and mtimes")
	syncCmd.Flags().BoolVar(&watch, "watch", false, "keep running and re-sync when source files change")

	return syncCmd
}

// watchSources blocks until ctx is cancelled, re-running an incremental sync
// whenever a source path changes. Events are debounced; the sync itself is
// incremental, so a burst of edits costs one pass.
func watchSources(ctx context.Context, out io.Writer, a *app) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range watchDirs(a) {
		if err := watcher.Add(dir); err != nil {
			a.logger.Warn("cannot watch path", "path", dir, "error", err)
		}
	}

	fmt.Fprintln(out, "watching for changes (ctrl-c to stop)")

	// The timer starts drained; events re-arm it.
	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			a.logger.Debug("source changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watch error", "error", err)
		case <-timer.C:
			report, err := a.syncer.Sync(ctx, false)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				a.logger.Error("re-sync failed", "error", err)
				continue
			}
			printSyncReport(out, report)
		}
	}
}

// watchDirs returns the directories to watch. Data files are watched via
// their parent directory because editors replace files by rename, which
// drops a direct file watch.
func watchDirs(a *app) []string {
	candidates := []string{a.cfg.KBPath, a.cfg.ScratchPath}
	for _, file := range []string{a.cfg.QuestionsFile, a.cfg.BlindspotsFile, a.cfg.WikiFile} {
		if file != "" {
			candidates = append(candidates, filepath.Dir(file))
		}
	}

	seen := make(map[string]bool)
	var dirs []string
	for _, dir := range candidates {
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

func printSyncReport(w io.Writer, report *syncer.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tTOTAL\tUPSERTED\tUNCHANGED\tDELETED\tSKIPPED\tERRORS\tDURATION")
	for _, src := range report.Sources {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			src.Source, src.Total, src.Upserted, src.Unchanged,
			src.Deleted, src.Skipped, src.Errors, src.Duration.Round(time.Millisecond))
	}
	totals := report.Totals()
	fmt.Fprintf(tw, "total\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
		totals.Total, totals.Upserted, totals.Unchanged,
		totals.Deleted, totals.Skipped, totals.Errors, totals.Duration.Round(time.Millisecond))
	_ = tw.Flush()
}
