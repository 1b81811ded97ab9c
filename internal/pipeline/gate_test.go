package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udaytamma/ProfessorGemini/internal/log"
)

type fakeGenerator struct {
	mu    sync.Mutex
	calls []string
	fn    func(prompt string) (string, error)
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, prompt)
	f.mu.Unlock()
	return f.fn(prompt)
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestParseAssessment(t *testing.T) {
	tests := []struct {
		name           string
		raw            string
		wantConfidence float64
		wantIssues     []string
	}{
		{
			name:           "clean verdict with issues",
			raw:            "CONFIDENCE: 0.85\nISSUES:\n- missing failure modes\n- no cost numbers",
			wantConfidence: 0.85,
			wantIssues:     []string{"missing failure modes", "no cost numbers"},
		},
		{
			name:           "publishable draft",
			raw:            "CONFIDENCE: 0.95\nISSUES:\n",
			wantConfidence: 0.95,
			wantIssues:     nil,
		},
		{
			name:           "lowercase header and star bullets",
			raw:            "confidence: 0.4\nissues:\n* too generic",
			wantConfidence: 0.4,
			wantIssues:     []string{"too generic"},
		},
		{
			name:           "preamble before verdict",
			raw:            "Here is my review.\n\nCONFIDENCE: 0.6\nISSUES:\n- shallow trade-offs",
			wantConfidence: 0.6,
			wantIssues:     []string{"shallow trade-offs"},
		},
		{
			name:           "out of range is clamped",
			raw:            "CONFIDENCE: 1.4\nISSUES:\n",
			wantConfidence: 1.0,
			wantIssues:     nil,
		},
		{
			name:           "missing confidence line",
			raw:            "This draft looks fine to me.",
			wantConfidence: 0,
			wantIssues:     []string{"unparsable assessment"},
		},
		{
			name:           "non-numeric confidence",
			raw:            "CONFIDENCE: high\nISSUES:\n- whatever",
			wantConfidence: 0,
			wantIssues:     []string{"unparsable assessment"},
		},
		{
			name:           "empty response",
			raw:            "",
			wantConfidence: 0,
			wantIssues:     []string{"unparsable assessment"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAssessment(tt.raw)
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantIssues, got.Issues)
			assert.Equal(t, tt.raw, got.Raw)
		})
	}
}

func TestGateEvaluate(t *testing.T) {
	reviewer := &fakeGenerator{fn: func(prompt string) (string, error) {
		assert.Contains(t, prompt, "TOPIC: Consistent Hashing")
		assert.Contains(t, prompt, "the draft body")
		assert.Contains(t, prompt, "the retrieved context")
		return "CONFIDENCE: 0.9\nISSUES:\n", nil
	}}

	gate := NewGate(reviewer, log.NewNop())
	assessment, err := gate.Evaluate(context.Background(), "the draft body", "the retrieved context", "Consistent Hashing", StrictnessHigh)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, assessment.Confidence, 1e-9)
	assert.Empty(t, assessment.Issues)
}

func TestGateEvaluateStrictnessSelectsRubric(t *testing.T) {
	reviewer := &fakeGenerator{fn: func(string) (string, error) {
		return "CONFIDENCE: 0.5\nISSUES:\n- thin", nil
	}}
	gate := NewGate(reviewer, log.NewNop())

	_, err := gate.Evaluate(context.Background(), "d", "c", "t", StrictnessHigh)
	require.NoError(t, err)
	assert.Contains(t, reviewer.calls[0], "Bar Raiser")

	_, err = gate.Evaluate(context.Background(), "d", "c", "t", StrictnessMedium)
	require.NoError(t, err)
	assert.Contains(t, reviewer.calls[1], "senior technical reviewer")
}

func TestGateEvaluateCapabilityError(t *testing.T) {
	reviewer := &fakeGenerator{fn: func(string) (string, error) {
		return "", errors.New("rate limit exceeded")
	}}
	gate := NewGate(reviewer, log.NewNop())

	_, err := gate.Evaluate(context.Background(), "d", "c", "t", StrictnessHigh)
	assert.ErrorContains(t, err, "rate limit exceeded")
}
