package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udaytamma/ProfessorGemini/internal/config"
	"github.com/udaytamma/ProfessorGemini/internal/log"
	"github.com/udaytamma/ProfessorGemini/internal/syncer"
)

// Runner executes one pipeline run. Satisfied by *Pipeline.
type Runner interface {
	Execute(ctx context.Context, topic string) *Result
}

// GuideSaver persists a finished guide. Satisfied by *files.Manager.
type GuideSaver interface {
	SaveGuide(content, title string, lowConfidence int) (string, error)
}

// Reindexer brings the embedding index up to date after new guides land on
// disk. Satisfied by *syncer.Syncer.
type Reindexer interface {
	Sync(ctx context.Context, force bool) (*syncer.Report, error)
}

// TopicOutcome is one topic's result in a batch report.
type TopicOutcome struct {
	Topic          string        `json:"topic"`
	Succeeded      bool          `json:"succeeded"`
	Stage          Stage         `json:"stage"` // terminal stage, or failing stage
	GuidePath      string        `json:"guide_path,omitempty"`
	FailedSections int           `json:"failed_sections,omitempty"`
	Issues         []string      `json:"issues,omitempty"`
	Error          string        `json:"error,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// BatchReport aggregates a whole batch run. Every dispatched topic appears
// exactly once; partial success is never silent.
type BatchReport struct {
	DryRun    bool           `json:"dry_run"`
	Planned   []string       `json:"planned"`
	Outcomes  []TopicOutcome `json:"outcomes,omitempty"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Duration  time.Duration  `json:"duration"`
}

// BatchRunner dispatches pipeline runs across a bounded worker pool and
// persists the results.
type BatchRunner struct {
	runner  Runner
	saver   GuideSaver
	indexer Reindexer // nil disables the post-batch re-sync
	cfg     *config.Config
	logger  log.Logger
}

// NewBatchRunner creates a BatchRunner. indexer may be nil when the caller
// handles re-indexing itself.
func NewBatchRunner(runner Runner, saver GuideSaver, indexer Reindexer, cfg *config.Config, logger log.Logger) *BatchRunner {
	return &BatchRunner{
		runner:  runner,
		saver:   saver,
		indexer: indexer,
		cfg:     cfg,
		logger:  logger.With("component", "batch"),
	}
}

// Run executes one pipeline per topic with at most maxWorkers in flight.
// maxWorkers <= 0 uses the configured default. dryRun reports the planned
// topics and returns before any capability call. Cancellation is honored
// between dispatches; topics never started are reported as failed with the
// cancellation reason.
func (b *BatchRunner) Run(ctx context.Context, topics []string, maxWorkers int, dryRun bool) *BatchReport {
	start := time.Now()
	if maxWorkers <= 0 {
		maxWorkers = b.cfg.BatchWorkers
	}

	report := &BatchReport{DryRun: dryRun, Planned: topics}
	if dryRun {
		b.logger.Info("dry run, no guides generated", "topics", len(topics))
		report.Duration = time.Since(start)
		return report
	}

	b.logger.Info("batch started", "topics", len(topics), "workers", maxWorkers)
	outcomes := make([]TopicOutcome, len(topics))

	var g errgroup.Group
	g.SetLimit(maxWorkers)
	for i, topic := range topics {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = TopicOutcome{Topic: topic, Stage: StageFailed, Error: err.Error()}
				return nil
			}
			outcomes[i] = b.runTopic(ctx, topic)
			return nil
		})
	}
	g.Wait()

	report.Outcomes = outcomes
	for _, o := range outcomes {
		if o.Succeeded {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	if b.indexer != nil && report.Succeeded > 0 && ctx.Err() == nil {
		if _, err := b.indexer.Sync(ctx, false); err != nil {
			b.logger.Warn("post-batch reindex failed", "error", err)
		}
	}

	report.Duration = time.Since(start)
	b.logger.Info("batch finished",
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"duration", report.Duration)
	return report
}

func (b *BatchRunner) runTopic(ctx context.Context, topic string) TopicOutcome {
	res := b.runner.Execute(ctx, topic)

	outcome := TopicOutcome{
		Topic:          topic,
		Stage:          res.Stage,
		FailedSections: res.FailedSections,
		Duration:       res.Duration,
	}
	for _, sec := range res.Sections {
		if sec.Failed {
			outcome.Issues = append(outcome.Issues, sec.Error)
		}
	}

	if !res.Succeeded() {
		outcome.Stage = res.FailedStage()
		outcome.Error = res.Error
		return outcome
	}

	path, err := b.saver.SaveGuide(res.MasterGuide, topic, res.FailedSections)
	if err != nil {
		outcome.Error = "save guide: " + err.Error()
		return outcome
	}
	outcome.Succeeded = true
	outcome.GuidePath = path
	return outcome
}
