package cmd

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/udaytamma/ProfessorGemini/internal/knowledge"
	"github.com/udaytamma/ProfessorGemini/internal/pipeline"
	"github.com/udaytamma/ProfessorGemini/internal/syncer"
)

func TestPrintSyncReport(t *testing.T) {
	report := &syncer.Report{
		Sources: []syncer.SourceReport{
			{Source: "kb", Total: 12, Upserted: 3, Unchanged: 9, Duration: 120 * time.Millisecond},
			{Source: "questions", Total: 40, Unchanged: 38, Skipped: 2, Duration: 40 * time.Millisecond},
		},
	}

	var buf bytes.Buffer
	printSyncReport(&buf, report)

	out := buf.String()
	assert.Contains(t, out, "SOURCE")
	assert.Contains(t, out, "kb")
	assert.Contains(t, out, "questions")
	assert.Contains(t, out, "total")
	assert.Contains(t, out, "52") // total documents across sources
}

func TestPrintBatchReportDryRun(t *testing.T) {
	report := &pipeline.BatchReport{
		DryRun:  true,
		Planned: []string{"Kafka rebalancing", "Load shedding"},
	}

	var buf bytes.Buffer
	printBatchReport(&buf, report)

	out := buf.String()
	assert.Contains(t, out, "dry run: 2 topic(s) planned")
	assert.Contains(t, out, "- Kafka rebalancing")
	assert.Contains(t, out, "- Load shedding")
}

func TestPrintBatchReportOutcomes(t *testing.T) {
	report := &pipeline.BatchReport{
		Outcomes: []pipeline.TopicOutcome{
			{
				Topic:          "Kafka rebalancing",
				Succeeded:      true,
				GuidePath:      "/kb/kafka-rebalancing-20260830-1200.md",
				FailedSections: 1,
				Duration:       90 * time.Second,
			},
			{
				Topic:    "Load shedding",
				Stage:    pipeline.StageTopicSplit,
				Error:    "no topics parsed from response",
				Issues:   []string{"empty topic list"},
				Duration: 5 * time.Second,
			},
		},
		Succeeded: 1,
		Failed:    1,
		Duration:  95 * time.Second,
	}

	var buf bytes.Buffer
	printBatchReport(&buf, report)

	out := buf.String()
	assert.Contains(t, out, "ok   Kafka rebalancing -> /kb/kafka-rebalancing-20260830-1200.md")
	assert.Contains(t, out, "1 section(s) below confidence threshold")
	assert.Contains(t, out, "FAIL Load shedding at topic_split: no topics parsed from response")
	assert.Contains(t, out, "- empty topic list")
	assert.Contains(t, out, "1 succeeded, 1 failed")
}

func TestPrintDocumentsEmpty(t *testing.T) {
	var buf bytes.Buffer
	printDocuments(&buf, nil)
	assert.Equal(t, "no documents indexed\n", buf.String())
}

func TestPrintDocuments(t *testing.T) {
	docs := []knowledge.Document{
		{
			DocID:     "kb:kafka",
			Source:    "kb",
			Title:     "Kafka Basics",
			CharCount: 4096,
			IndexedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	printDocuments(&buf, docs)

	out := buf.String()
	assert.Contains(t, out, "kb:kafka")
	assert.Contains(t, out, "Kafka Basics")
	assert.Contains(t, out, "2026-08-30 12:00")
}

func TestValidSource(t *testing.T) {
	for _, source := range knowledge.KnownSources {
		assert.True(t, validSource(source), source)
	}
	assert.False(t, validSource("bogus"))
	assert.False(t, validSource(""))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}
