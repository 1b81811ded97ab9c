package syncer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeScriptArray(t *testing.T) {
	ts := "// question bank\n" +
		"import { Question } from './types';\n\n" +
		"export const questions: Question[] = [\n" +
		"  {\n" +
		"    id: 'q1', // inline note\n" +
		"    question: \"What's a goroutine?\",\n" +
		"    answer: `A goroutine is a lightweight thread.\nIt uses \\`go\\` to start.`,\n" +
		"    level: 'senior',\n" +
		"    topics: ['concurrency', 'runtime'],\n" +
		"  },\n" +
		"  /* retired\n     entry removed 2024 */\n" +
		"  {\n" +
		"    id: 2,\n" +
		"    question: 'Why prefer channels?',\n" +
		"    answer: 'See https://go.dev/doc for the official take.',\n" +
		"    level: 'mid',\n" +
		"    topics: [],\n" +
		"  },\n" +
		"];\n\n" +
		"export const other = [];\n"

	items, err := parseTypeScriptArray(ts, "questions", "questions.ts")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "q1", items[0]["id"])
	assert.Equal(t, "What's a goroutine?", items[0]["question"])
	assert.Equal(t, "A goroutine is a lightweight thread.\nIt uses `go` to start.", items[0]["answer"])
	assert.Equal(t, []any{"concurrency", "runtime"}, items[0]["topics"])

	assert.Equal(t, float64(2), items[1]["id"])
	assert.Equal(t, "See https://go.dev/doc for the official take.", items[1]["answer"])
}

func TestParseTypeScriptArrayMissingArray(t *testing.T) {
	_, err := parseTypeScriptArray("export const other = [];", "questions", "questions.ts")

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "questions.ts", perr.Path)
}

func TestParseTypeScriptArrayUnbalanced(t *testing.T) {
	_, err := parseTypeScriptArray("export const questions = [\n  { id: 'q1' },\n", "questions", "questions.ts")

	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestParseTypeScriptArrayNested(t *testing.T) {
	ts := "export const knowledgeBaseWikiSections = [\n" +
		"  {\n" +
		"    provider: 'AWS',\n" +
		"    groups: [\n" +
		"      {\n" +
		"        name: 'Compute',\n" +
		"        entries: [\n" +
		"          { tool: 'Lambda', summary: `Serverless functions.`, adoption: 'High', mag7: 'Widely used.' },\n" +
		"          { tool: 'EC2', summary: 'Virtual machines.', adoption: 'High', mag7: 'Baseline.', costTier: '$$' },\n" +
		"        ],\n" +
		"      },\n" +
		"    ],\n" +
		"  },\n" +
		"];\n"

	sections, err := parseTypeScriptArray(ts, "knowledgeBaseWikiSections", "wiki.ts")
	require.NoError(t, err)

	docs, failed := flattenWiki(sections, "wiki", "wiki.ts")
	require.Empty(t, failed)
	require.Len(t, docs, 2)

	assert.Equal(t, "wiki:aws-lambda", docs[0].DocID)
	assert.Equal(t, "AWS Lambda", docs[0].Title)
	assert.Contains(t, docs[0].Content, "## Summary\n\nServerless functions.")
	assert.Contains(t, docs[0].Content, "**Cost Tier:** N/A")
	assert.Contains(t, docs[1].Content, "**Cost Tier:** $$")
	assert.Equal(t, "AWS", docs[1].Metadata["provider"])
}

func TestFlattenWikiSkipsMalformedEntries(t *testing.T) {
	sections := []map[string]any{
		{
			"provider": "GCP",
			"groups": []any{
				map[string]any{
					"name": "Storage",
					"entries": []any{
						map[string]any{"tool": "GCS", "summary": "Object storage."},
						map[string]any{"summary": "no tool name"},
					},
				},
			},
		},
	}

	docs, failed := flattenWiki(sections, "wiki", "wiki.ts")
	require.Len(t, docs, 1)
	require.Len(t, failed, 1)
	assert.Equal(t, "wiki:gcp-gcs", docs[0].DocID)

	var perr *ParseError
	assert.True(t, errors.As(failed[0], &perr))
}
