package knowledge_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udaytamma/ProfessorGemini/internal/knowledge"
	"github.com/udaytamma/ProfessorGemini/internal/log"
	"github.com/udaytamma/ProfessorGemini/internal/testutil"
)

// keywordEmbedder maps keywords to fixed dimensions so similarity ordering
// is fully deterministic: a text containing "kafka" lands on the kafka axis,
// and a query containing the same keyword scores cosine similarity 1 against
// it. Texts with no known keyword fall on a shared catch-all axis.
type keywordEmbedder struct{}

var keywordDims = map[string]int{
	"kafka":   0,
	"load":    1,
	"latency": 2,
}

func (keywordEmbedder) embed(text string) []float32 {
	vec := make([]float32, 768)
	lower := strings.ToLower(text)
	matched := false
	for kw, dim := range keywordDims {
		if strings.Contains(lower, kw) {
			vec[dim] = 1
			matched = true
		}
	}
	if !matched {
		vec[767] = 1
	}
	return vec
}

func (e keywordEmbedder) EmbedDocument(_ context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e keywordEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("requires Docker")
	}

	pool := testutil.StartPostgres(t)
	store := knowledge.New(pool, keywordEmbedder{}, log.NewNop())
	ctx := context.Background()

	reset := func(t *testing.T) {
		t.Helper()
		_, err := pool.Exec(ctx, "DELETE FROM documents")
		require.NoError(t, err)
	}

	doc := func(id, source, title, content string) knowledge.Document {
		return knowledge.Document{
			DocID:       id,
			Source:      source,
			Title:       title,
			Content:     content,
			ContentHash: "hash-" + id,
			CharCount:   len(content),
			Metadata:    map[string]string{"origin": "test"},
		}
	}

	t.Run("upsert and search rank by similarity", func(t *testing.T) {
		reset(t)
		require.NoError(t, store.Upsert(ctx, doc("kb:kafka", "kb", "Kafka Basics", "kafka partitions and consumer groups")))
		require.NoError(t, store.Upsert(ctx, doc("kb:lb", "kb", "Load Balancing", "load balancing strategies")))
		require.NoError(t, store.Upsert(ctx, doc("kb:misc", "kb", "Misc", "unrelated prose")))

		results, err := store.Search(ctx, "kafka consumer groups", knowledge.WithTopK(2))
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "kb:kafka", results[0].Document.DocID)
		assert.InDelta(t, 1.0, results[0].Similarity, 0.001)
		assert.Greater(t, results[0].Similarity, results[1].Similarity)
		assert.Equal(t, map[string]string{"origin": "test"}, results[0].Document.Metadata)
	})

	t.Run("upsert replaces by doc_id", func(t *testing.T) {
		reset(t)
		require.NoError(t, store.Upsert(ctx, doc("kb:kafka", "kb", "Kafka v1", "kafka first draft")))
		require.NoError(t, store.Upsert(ctx, doc("kb:kafka", "kb", "Kafka v2", "kafka revised draft")))

		var count int
		require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents").Scan(&count))
		assert.Equal(t, 1, count)

		results, err := store.Search(ctx, "kafka")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Kafka v2", results[0].Document.Title)
		assert.Equal(t, "kafka revised draft", results[0].Document.Content)
	})

	t.Run("identical scores tie-break by insertion order", func(t *testing.T) {
		reset(t)
		require.NoError(t, store.Upsert(ctx, doc("kb:kafka-a", "kb", "Kafka A", "kafka notes a")))
		require.NoError(t, store.Upsert(ctx, doc("kb:kafka-b", "kb", "Kafka B", "kafka notes b")))

		for range 3 {
			results, err := store.Search(ctx, "kafka")
			require.NoError(t, err)
			require.Len(t, results, 2)
			assert.Equal(t, "kb:kafka-a", results[0].Document.DocID)
			assert.Equal(t, "kb:kafka-b", results[1].Document.DocID)
		}
	})

	t.Run("search filters by source", func(t *testing.T) {
		reset(t)
		require.NoError(t, store.Upsert(ctx, doc("kb:kafka", "kb", "Kafka", "kafka guide")))
		require.NoError(t, store.Upsert(ctx, doc("questions:1", "questions", "Kafka Q", "kafka interview question")))

		results, err := store.Search(ctx, "kafka", knowledge.WithSource("questions"))
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "questions:1", results[0].Document.DocID)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		reset(t)
		require.NoError(t, store.Upsert(ctx, doc("kb:kafka", "kb", "Kafka", "kafka guide")))
		require.NoError(t, store.Delete(ctx, "kb:kafka"))
		require.NoError(t, store.Delete(ctx, "kb:kafka"))

		var count int
		require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents").Scan(&count))
		assert.Zero(t, count)
	})

	t.Run("list by source returns summaries without content", func(t *testing.T) {
		reset(t)
		require.NoError(t, store.Upsert(ctx, doc("kb:b", "kb", "B", "latency budget notes")))
		require.NoError(t, store.Upsert(ctx, doc("kb:a", "kb", "A", "load shedding notes")))
		require.NoError(t, store.Upsert(ctx, doc("scratch:x", "scratch", "X", "scratch pad")))

		docs, err := store.ListBySource(ctx, "kb")
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "kb:a", docs[0].DocID)
		assert.Equal(t, "kb:b", docs[1].DocID)
		assert.Equal(t, "hash-kb:a", docs[0].ContentHash)
		assert.Empty(t, docs[0].Content)
		assert.False(t, docs[0].IndexedAt.IsZero())
	})

	t.Run("latest indexed_at tracks newest write", func(t *testing.T) {
		reset(t)
		latest, err := store.LatestIndexedAt(ctx)
		require.NoError(t, err)
		assert.True(t, latest.IsZero())

		old := doc("kb:old", "kb", "Old", "kafka old")
		old.IndexedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.Upsert(ctx, old))

		recent := doc("kb:new", "kb", "New", "kafka new")
		recent.IndexedAt = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.Upsert(ctx, recent))

		latest, err = store.LatestIndexedAt(ctx)
		require.NoError(t, err)
		assert.True(t, latest.Equal(recent.IndexedAt), "got %v", latest)
	})

	t.Run("stats count per source", func(t *testing.T) {
		reset(t)
		require.NoError(t, store.Upsert(ctx, doc("kb:a", "kb", "A", "kafka a")))
		require.NoError(t, store.Upsert(ctx, doc("kb:b", "kb", "B", "kafka b")))
		require.NoError(t, store.Upsert(ctx, doc("wiki:aws-s3", "wiki", "S3", "object storage")))

		stats, err := store.GetStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.Total)
		assert.Equal(t, int64(2), stats.BySource["kb"])
		assert.Equal(t, int64(1), stats.BySource["wiki"])
	})
}
