package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/udaytamma/ProfessorGemini/internal/log"
)

// Strictness selects the review rubric. Early attempts are reviewed at the
// highest bar; later attempts relax to medium so a solid draft is not
// rejected forever over polish.
type Strictness string

const (
	StrictnessHigh   Strictness = "high"
	StrictnessMedium Strictness = "medium"
)

// Assessment is the gate's verdict on one draft.
type Assessment struct {
	Confidence float64  // in [0, 1]
	Issues     []string // specific problems, in the order reported
	Raw        string   // full reviewer response, kept for step records
}

const critiqueHighTemplate = `You are a Mag7 Bar Raiser and VP of Engineering conducting a rigorous review of technical documentation before publication.

TOPIC: %s

DRAFT TO REVIEW:
%s

CONTEXT THE DRAFT WAS GROUNDED ON:
%s

EVALUATION CRITERIA (all weigh into your confidence score):
1. COVERAGE: the draft addresses the supplied context, with no obvious gaps that would leave a Principal TPM unprepared
2. CONSISTENCY: internally coherent, no contradictions between sections
3. GROUNDING: every claim is supported by the context or well-established engineering practice; no fabricated numbers or invented case studies
4. SPECIFICITY: concrete examples, numbers, or trade-offs rather than generic statements
5. DEPTH: goes beyond textbook definitions to strategic, actionable insight

Respond in exactly this format:
CONFIDENCE: <number between 0.0 and 1.0>
ISSUES:
- <specific, actionable issue>
- <specific, actionable issue>

A publishable draft scores 0.8 or above with an empty ISSUES list. Be ruthlessly specific; vague feedback is not helpful.`

const critiqueMediumTemplate = `You are a senior technical reviewer evaluating documentation quality.

TOPIC: %s

DRAFT TO REVIEW:
%s

CONTEXT THE DRAFT WAS GROUNDED ON:
%s

CHECK:
1. Covers the core concepts from the context accurately and completely
2. No claims that contradict the context or invent unsupported facts
3. Provides at least one meaningful trade-off or practical consideration
4. Would be useful to a senior engineer learning this topic

Respond in exactly this format:
CONFIDENCE: <number between 0.0 and 1.0>
ISSUES:
- <major gap>

List major gaps only. Do not nitpick minor issues.`

// Gate scores drafts against a fixed rubric using a reviewer model.
type Gate struct {
	reviewer Generator
	logger   log.Logger
}

// NewGate creates a quality gate backed by the given reviewer.
func NewGate(reviewer Generator, logger log.Logger) *Gate {
	return &Gate{
		reviewer: reviewer,
		logger:   logger.With("component", "quality_gate"),
	}
}

// Evaluate asks the reviewer to score draft for topic against the retrieved
// context. A response the gate cannot parse yields confidence 0 and an
// "unparsable assessment" issue rather than a silent pass. The returned
// error covers capability failures only.
func (g *Gate) Evaluate(ctx context.Context, draft, contextText, topic string, strictness Strictness) (Assessment, error) {
	template := critiqueHighTemplate
	if strictness == StrictnessMedium {
		template = critiqueMediumTemplate
	}
	prompt := fmt.Sprintf(template, topic, draft, contextText)

	raw, err := g.reviewer.Generate(ctx, prompt)
	if err != nil {
		return Assessment{}, fmt.Errorf("evaluate draft: %w", err)
	}

	assessment := parseAssessment(raw)
	g.logger.Info("draft evaluated",
		"topic", topic,
		"strictness", strictness,
		"confidence", assessment.Confidence,
		"issues", len(assessment.Issues))
	return assessment, nil
}

// parseAssessment extracts the CONFIDENCE line and the ISSUES list. Missing
// or malformed confidence is treated as 0.0, never skipped.
func parseAssessment(raw string) Assessment {
	assessment := Assessment{Raw: raw}

	confidence, ok := parseConfidenceLine(raw)
	if !ok {
		assessment.Issues = []string{"unparsable assessment"}
		return assessment
	}
	assessment.Confidence = confidence
	assessment.Issues = parseIssues(raw)
	return assessment
}

func parseConfidenceLine(raw string) (float64, bool) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		rest, found := strings.CutPrefix(strings.ToUpper(line), "CONFIDENCE:")
		if !found {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil {
			return 0, false
		}
		// Clamp rather than reject: a reviewer reporting 1.2 or -0.1
		// still expressed a clear verdict.
		return min(max(v, 0), 1), true
	}
	return 0, false
}

func parseIssues(raw string) []string {
	var issues []string
	inIssues := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToUpper(line), "ISSUES:") {
			inIssues = true
			continue
		}
		if !inIssues {
			continue
		}
		if item, ok := strings.CutPrefix(line, "- "); ok {
			issues = append(issues, strings.TrimSpace(item))
		} else if item, ok := strings.CutPrefix(line, "* "); ok {
			issues = append(issues, strings.TrimSpace(item))
		} else if line != "" {
			break
		}
	}
	return issues
}
