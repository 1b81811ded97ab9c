package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udaytamma/ProfessorGemini/internal/log"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Load Balancing", "load-balancing"},
		{"CAP Theorem: Consistency & Availability", "cap-theorem-consistency-availability"},
		{"  Rate   Limiting  ", "rate-limiting"},
		{"snake_case_title", "snake-case-title"},
		{strings.Repeat("very long title ", 10), "very-long-title-very-long-title-very-long-title-very-long-title-very-long-title"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.title), "title %q", tt.title)
	}
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "Consistent Hashing",
		ExtractTitle("intro text\n\n# The Principal TPM's Guide to Consistent Hashing\n\nbody"))
	assert.Equal(t, "Plain Heading", ExtractTitle("# Plain Heading\nbody"))
	assert.Equal(t, "first line fallback", ExtractTitle("first line fallback\nsecond"))
	assert.Equal(t, "Untitled Guide", ExtractTitle("   "))
}

func TestSaveGuide(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, log.NewNop())

	path, err := m.SaveGuide("# Sharding\n\nSplit data across nodes.\n", "Sharding", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "sharding-"))
	assert.True(t, strings.HasSuffix(path, ".md"))

	content, err := m.ReadGuide(filepath.Base(path))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content, "---\n"))
	assert.Contains(t, content, `title: "Sharding"`)
	assert.Contains(t, content, "source: Professor Gemini")
	assert.Contains(t, content, "low_confidence_sections: 0")
	assert.NotContains(t, content, "review_recommended")
	assert.Contains(t, content, "# Sharding\n\nSplit data across nodes.")

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestSaveGuideFlagsLowConfidence(t *testing.T) {
	m := NewManager(t.TempDir(), log.NewNop())

	path, err := m.SaveGuide("# Topic\n\nbody", "Topic", 2)
	require.NoError(t, err)

	content, err := m.ReadGuide(filepath.Base(path))
	require.NoError(t, err)
	assert.Contains(t, content, "low_confidence_sections: 2")
	assert.Contains(t, content, "review_recommended: true")
}

func TestSaveGuideDerivesTitleFromContent(t *testing.T) {
	m := NewManager(t.TempDir(), log.NewNop())

	path, err := m.SaveGuide("# Event Sourcing\n\nbody", "", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "event-sourcing-"))
}

func TestListAndDeleteGuides(t *testing.T) {
	m := NewManager(t.TempDir(), log.NewNop())

	_, err := m.SaveGuide("# A\n", "Alpha Topic", 0)
	require.NoError(t, err)
	_, err = m.SaveGuide("# B\n", "Beta Topic", 0)
	require.NoError(t, err)

	guides, err := m.ListGuides()
	require.NoError(t, err)
	require.Len(t, guides, 2)

	require.NoError(t, m.DeleteGuide(guides[0].Filename))
	guides, err = m.ListGuides()
	require.NoError(t, err)
	require.Len(t, guides, 1)

	assert.Error(t, m.DeleteGuide("missing.md"))
}

func TestListGuidesMissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "nope"), log.NewNop())
	guides, err := m.ListGuides()
	require.NoError(t, err)
	assert.Empty(t, guides)
}
