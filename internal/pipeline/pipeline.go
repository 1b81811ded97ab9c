// Package pipeline orchestrates knowledge-base guide generation. A run moves
// through four stages: a broad base-knowledge overview, a split into
// subsection topics, parallel deep dives each reviewed by a quality gate,
// and a final synthesis of the surviving sections.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/udaytamma/ProfessorGemini/internal/config"
	"github.com/udaytamma/ProfessorGemini/internal/log"
	"github.com/udaytamma/ProfessorGemini/internal/retrieve"
)

// Generator is a text generation capability.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ContextProvider assembles retrieval context for a query.
type ContextProvider interface {
	Retrieve(ctx context.Context, query string, topK int) (*retrieve.Bundle, error)
}

// Stage names a pipeline phase. Transitions are one-directional except the
// deep-dive retry loop; Failed is terminal and reachable from any stage.
type Stage string

const (
	StageBaseKnowledge Stage = "base_knowledge"
	StageTopicSplit    Stage = "topic_split"
	StageDeepDive      Stage = "deep_dive"
	StageSynthesis     Stage = "synthesis"
	StageDone          Stage = "done"
	StageFailed        Stage = "failed"
)

// StepRecord captures one stage's execution for the run report.
type StepRecord struct {
	Name      Stage         `json:"name"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// SectionResult is one deep-dive subsection's outcome.
type SectionResult struct {
	Topic         string        `json:"topic"`
	Content       string        `json:"content,omitempty"`
	Confidence    float64       `json:"confidence"`
	Attempts      int           `json:"attempts"`
	Issues        []string      `json:"issues,omitempty"`
	ContextMode   retrieve.Mode `json:"context_mode,omitempty"`
	Failed        bool          `json:"failed"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// Result is the full record of one pipeline run.
type Result struct {
	RunID          string          `json:"run_id"`
	Topic          string          `json:"topic"`
	Stage          Stage           `json:"stage"` // terminal: done or failed
	MasterGuide    string          `json:"-"`
	Sections       []SectionResult `json:"sections,omitempty"`
	FailedSections int             `json:"failed_sections"`
	Steps          []StepRecord    `json:"steps"`
	Duration       time.Duration   `json:"duration"`
	Error          string          `json:"error,omitempty"`
}

// Succeeded reports whether the run reached Done.
func (r *Result) Succeeded() bool {
	return r.Stage == StageDone
}

// FailedStage returns the stage the run died in, or empty when it succeeded.
func (r *Result) FailedStage() Stage {
	if r.Succeeded() {
		return ""
	}
	for i := len(r.Steps) - 1; i >= 0; i-- {
		if !r.Steps[i].Success {
			return r.Steps[i].Name
		}
	}
	return StageFailed
}

// Pipeline executes guide generation runs.
type Pipeline struct {
	generator Generator
	gate      *Gate
	retriever ContextProvider
	cfg       *config.Config
	logger    log.Logger
}

// New creates a Pipeline. The gate typically wraps a cheaper reviewer model
// than the generator.
func New(generator Generator, gate *Gate, retriever ContextProvider, cfg *config.Config, logger log.Logger) *Pipeline {
	return &Pipeline{
		generator: generator,
		gate:      gate,
		retriever: retriever,
		cfg:       cfg,
		logger:    logger.With("component", "pipeline"),
	}
}

// Execute runs the full pipeline for one topic. The result is always
// populated; a run that could not produce a guide terminates in StageFailed
// with Error set.
func (p *Pipeline) Execute(ctx context.Context, topic string) *Result {
	res := &Result{
		RunID: uuid.NewString(),
		Topic: topic,
		Stage: StageFailed,
	}
	start := time.Now()
	logger := p.logger.With("run_id", res.RunID, "topic", topic)
	logger.Info("pipeline started")

	overview, ok := p.baseKnowledge(ctx, topic, res, logger)
	if !ok {
		res.Duration = time.Since(start)
		return res
	}

	topics, ok := p.topicSplit(ctx, overview, res, logger)
	if !ok {
		res.Duration = time.Since(start)
		return res
	}

	sections := p.deepDive(ctx, topics, res, logger)
	res.Sections = sections
	for _, sec := range sections {
		if sec.Failed {
			res.FailedSections++
		}
	}

	p.synthesize(ctx, topic, sections, res, logger)
	res.Duration = time.Since(start)
	logger.Info("pipeline finished",
		"stage", res.Stage,
		"sections", len(sections),
		"failed_sections", res.FailedSections,
		"duration", res.Duration)
	return res
}

func (p *Pipeline) baseKnowledge(ctx context.Context, topic string, res *Result, logger log.Logger) (string, bool) {
	step := StepRecord{Name: StageBaseKnowledge, StartedAt: time.Now()}

	bundle, err := p.retriever.Retrieve(ctx, topic, 0)
	if err != nil {
		return "", p.failStep(res, step, fmt.Errorf("retrieve base context: %w", err), logger)
	}
	overview, err := p.generator.Generate(ctx, baseKnowledgePrompt(topic, bundle.Content))
	if err != nil {
		return "", p.failStep(res, step, fmt.Errorf("generate base knowledge: %w", err), logger)
	}

	step.Duration = time.Since(step.StartedAt)
	step.Success = true
	res.Steps = append(res.Steps, step)
	logger.Info("base knowledge generated", "chars", len(overview), "context_mode", bundle.Mode)
	return overview, true
}

func (p *Pipeline) topicSplit(ctx context.Context, overview string, res *Result, logger log.Logger) ([]string, bool) {
	step := StepRecord{Name: StageTopicSplit, StartedAt: time.Now()}

	raw, err := p.generator.Generate(ctx, splitTopicsPrompt(overview))
	if err != nil {
		return nil, p.failStep(res, step, fmt.Errorf("split topics: %w", err), logger)
	}
	topics := parseTopicList(raw)
	if len(topics) == 0 {
		return nil, p.failStep(res, step, fmt.Errorf("no topics extracted from split response"), logger)
	}

	step.Duration = time.Since(step.StartedAt)
	step.Success = true
	res.Steps = append(res.Steps, step)
	logger.Info("topics split", "count", len(topics))
	return topics, true
}

// deepDive fans subsection generation out across a bounded pool. Section
// order in the returned slice matches the topic sequence regardless of
// completion order, and one section's failure never cancels its siblings.
func (p *Pipeline) deepDive(ctx context.Context, topics []string, res *Result, logger log.Logger) []SectionResult {
	step := StepRecord{Name: StageDeepDive, StartedAt: time.Now()}

	sections := make([]SectionResult, len(topics))
	var g errgroup.Group
	g.SetLimit(p.cfg.DeepDiveWorkers)
	for i, topic := range topics {
		g.Go(func() error {
			sections[i] = p.deepDiveSection(ctx, topic, logger)
			return nil
		})
	}
	g.Wait()

	succeeded := 0
	for _, sec := range sections {
		if !sec.Failed {
			succeeded++
		}
	}
	step.Duration = time.Since(step.StartedAt)
	step.Success = succeeded > 0
	if !step.Success {
		step.Error = "all sections failed"
	}
	res.Steps = append(res.Steps, step)
	logger.Info("deep dive finished", "sections", len(topics), "succeeded", succeeded)
	return sections
}

// deepDiveSection runs the draft-review loop for one subsection. Attempts
// one and two are reviewed at high strictness, later ones at medium. Gate
// issues feed back into the rewrite prompt as corrective guidance.
func (p *Pipeline) deepDiveSection(ctx context.Context, topic string, logger log.Logger) SectionResult {
	sec := SectionResult{Topic: topic}
	start := time.Now()
	defer func() { sec.Duration = time.Since(start) }()

	bundle, err := p.retriever.Retrieve(ctx, topic, 0)
	if err != nil {
		sec.Failed = true
		sec.Error = fmt.Sprintf("retrieve section context: %v", err)
		return sec
	}
	sec.ContextMode = bundle.Mode

	maxAttempts := p.cfg.MaxRetries + 1
	var draft, feedback string
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			sec.Failed = true
			sec.Error = err.Error()
			return sec
		}

		strictness := StrictnessHigh
		if attempt > 2 {
			strictness = StrictnessMedium
		}

		prompt := sectionDraftPrompt(topic, bundle.Content)
		if attempt > 1 {
			prompt = sectionRewritePrompt(topic, string(strictness), draft, feedback)
		}

		next, err := p.generator.Generate(ctx, prompt)
		if err != nil {
			logger.Warn("section draft failed", "section", topic, "attempt", attempt, "error", err)
			lastErr = err
			continue
		}
		draft = next

		assessment, err := p.gate.Evaluate(ctx, draft, bundle.Content, topic, strictness)
		if err != nil {
			logger.Warn("section review failed", "section", topic, "attempt", attempt, "error", err)
			lastErr = err
			continue
		}

		sec.Attempts = attempt
		sec.Confidence = assessment.Confidence
		sec.Issues = assessment.Issues

		if assessment.Confidence >= p.cfg.ConfidenceThreshold {
			sec.Content = draft
			logger.Info("section approved", "section", topic, "attempt", attempt, "confidence", assessment.Confidence)
			return sec
		}
		feedback = strings.Join(assessment.Issues, "\n")
		logger.Info("section rejected", "section", topic, "attempt", attempt, "confidence", assessment.Confidence)
	}

	sec.Failed = true
	if sec.Attempts == 0 && lastErr != nil {
		sec.Error = lastErr.Error()
	} else {
		sec.Error = (&QualityError{
			Topic:      topic,
			Confidence: sec.Confidence,
			Attempts:   sec.Attempts,
			Issues:     sec.Issues,
		}).Error()
	}
	return sec
}

// synthesize combines the surviving sections into the master guide. In
// concat mode the combination is a deterministic local join in topic order;
// in generate mode a final model call unifies the sections.
func (p *Pipeline) synthesize(ctx context.Context, topic string, sections []SectionResult, res *Result, logger log.Logger) {
	step := StepRecord{Name: StageSynthesis, StartedAt: time.Now()}

	var kept []SectionResult
	for _, sec := range sections {
		if !sec.Failed && sec.Content != "" {
			kept = append(kept, sec)
		}
	}
	if len(kept) == 0 {
		p.failStep(res, step, fmt.Errorf("no sections to synthesize"), logger)
		return
	}

	var guide string
	if p.cfg.SynthesisMode == config.SynthesisConcat {
		guide = concatGuide(topic, kept)
	} else {
		var err error
		guide, err = p.generator.Generate(ctx, synthesisPrompt(kept))
		if err != nil {
			p.failStep(res, step, fmt.Errorf("synthesize guide: %w", err), logger)
			return
		}
	}

	step.Duration = time.Since(step.StartedAt)
	step.Success = true
	res.Steps = append(res.Steps, step)
	res.MasterGuide = guide
	res.Stage = StageDone
}

func concatGuide(topic string, sections []SectionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", topic)
	for _, sec := range sections {
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", sec.Topic, strings.TrimSpace(sec.Content))
	}
	return b.String()
}

func (p *Pipeline) failStep(res *Result, step StepRecord, err error, logger log.Logger) bool {
	step.Duration = time.Since(step.StartedAt)
	step.Success = false
	step.Error = err.Error()
	res.Steps = append(res.Steps, step)
	res.Stage = StageFailed
	res.Error = err.Error()
	logger.Error("pipeline stage failed", "stage", step.Name, "error", err)
	return false
}
