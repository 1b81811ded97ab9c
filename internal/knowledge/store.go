package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// embedSlice caps how much document text is embedded. The title plus the
// leading slice captures the key content; the full text is still stored and
// returned by search.
const embedSlice = 2000

// Embedder generates fixed-dimensionality vectors. Queries and documents are
// embedded with different task hints, so the interface keeps them apart.
// Defined here by the consumer; internal/gemini provides the production
// implementation.
type Embedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store manages knowledge documents with vector search over
// PostgreSQL + pgvector. Upserts are keyed by doc_id, so at most one live
// record exists per document.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	pool     *pgxpool.Pool
	embedder Embedder
	logger   *slog.Logger
}

// New creates a new Store instance. A nil logger falls back to slog.Default.
func New(pool *pgxpool.Pool, embedder Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		pool:     pool,
		embedder: embedder,
		logger:   logger,
	}
}

// Upsert adds or replaces a document in the index. The embedding is computed
// from the title plus the leading content slice.
func (s *Store) Upsert(ctx context.Context, doc Document) error {
	embedText := doc.Title + "\n\n" + doc.Content
	if len(embedText) > embedSlice {
		embedText = embedText[:embedSlice]
	}

	vec, err := s.embedder.EmbedDocument(ctx, embedText)
	if err != nil {
		return fmt.Errorf("embedding document %q: %w", doc.DocID, err)
	}
	if len(vec) == 0 {
		return fmt.Errorf("empty embedding returned for document %q", doc.DocID)
	}

	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling metadata for %q: %w", doc.DocID, err)
	}

	indexedAt := doc.IndexedAt
	if indexedAt.IsZero() {
		indexedAt = time.Now().UTC()
	}

	embedding := pgvector.NewVector(vec)
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (doc_id, source, title, content, content_hash, indexed_at, char_count, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (doc_id) DO UPDATE SET
			source = EXCLUDED.source,
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			content_hash = EXCLUDED.content_hash,
			indexed_at = EXCLUDED.indexed_at,
			char_count = EXCLUDED.char_count,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding`,
		doc.DocID, doc.Source, doc.Title, doc.Content, doc.ContentHash,
		indexedAt, doc.CharCount, metadataJSON, embedding)
	if err != nil {
		return fmt.Errorf("upserting document %q: %w", doc.DocID, err)
	}

	s.logger.Debug("upserted document", "doc_id", doc.DocID, "chars", doc.CharCount)
	return nil
}

// Search performs semantic search and returns the most similar documents,
// highest similarity first. Ties are broken by index insertion order (the
// seq column), which keeps result ordering stable across identical scores.
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(opts)

	queryCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	vec, err := s.embedder.EmbedQuery(queryCtx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("query embedding timeout: %w", err)
		}
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vec) == 0 {
		return nil, errors.New("empty embedding returned for query")
	}
	embedding := pgvector.NewVector(vec)

	var rows pgx.Rows
	if cfg.source != "" {
		rows, err = s.pool.Query(queryCtx, `
			SELECT doc_id, source, title, content, content_hash, indexed_at, char_count, metadata,
			       1 - (embedding <=> $1) AS similarity
			FROM documents
			WHERE source = $2
			ORDER BY embedding <=> $1, seq
			LIMIT $3`,
			embedding, cfg.source, cfg.topK)
	} else {
		rows, err = s.pool.Query(queryCtx, `
			SELECT doc_id, source, title, content, content_hash, indexed_at, char_count, metadata,
			       1 - (embedding <=> $1) AS similarity
			FROM documents
			ORDER BY embedding <=> $1, seq
			LIMIT $2`,
			embedding, cfg.topK)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search query timeout: %w", err)
		}
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			doc          Document
			metadataJSON []byte
			similarity   float64
		)
		if err := rows.Scan(&doc.DocID, &doc.Source, &doc.Title, &doc.Content,
			&doc.ContentHash, &doc.IndexedAt, &doc.CharCount, &metadataJSON, &similarity); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		doc.Metadata = s.parseMetadata(doc.DocID, metadataJSON)
		results = append(results, Result{Document: doc, Similarity: float32(similarity)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search rows: %w", err)
	}
	return results, nil
}

// Delete removes a document from the index. Deleting an absent doc_id is a
// no-op, which keeps the operation idempotent.
func (s *Store) Delete(ctx context.Context, docID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE doc_id = $1`, docID); err != nil {
		return fmt.Errorf("deleting document %q: %w", docID, err)
	}
	s.logger.Debug("deleted document", "doc_id", docID)
	return nil
}

// DeleteBySource removes every document belonging to one source and returns
// the number of rows removed.
func (s *Store) DeleteBySource(ctx context.Context, source string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE source = $1`, source)
	if err != nil {
		return 0, fmt.Errorf("purging source %q: %w", source, err)
	}
	s.logger.Info("purged source", "source", source, "deleted", tag.RowsAffected())
	return tag.RowsAffected(), nil
}

// Count returns the number of documents for one source.
func (s *Store) Count(ctx context.Context, source string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE source = $1`, source).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting source %q: %w", source, err)
	}
	return count, nil
}

// ListBySource returns document summaries (no content, no embedding) for one
// source, ordered by doc_id. The syncer diffs these hashes against the
// filesystem.
func (s *Store) ListBySource(ctx context.Context, source string) ([]Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT doc_id, source, title, content_hash, indexed_at, char_count
		FROM documents
		WHERE source = $1
		ORDER BY doc_id`, source)
	if err != nil {
		return nil, fmt.Errorf("listing documents for source %q: %w", source, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.DocID, &doc.Source, &doc.Title,
			&doc.ContentHash, &doc.IndexedAt, &doc.CharCount); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading document rows: %w", err)
	}
	return docs, nil
}

// LatestIndexedAt returns the most recent indexed_at across all documents.
// Zero time means the index is empty. The syncer's staleness probe compares
// this against source file modification times.
func (s *Store) LatestIndexedAt(ctx context.Context) (time.Time, error) {
	var latest *time.Time
	err := s.pool.QueryRow(ctx, `SELECT MAX(indexed_at) FROM documents`).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("querying latest indexed_at: %w", err)
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return *latest, nil
}

// GetStats returns per-source document counts.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	rows, err := s.pool.Query(ctx, `SELECT source, COUNT(*) FROM documents GROUP BY source`)
	if err != nil {
		return Stats{}, fmt.Errorf("querying stats: %w", err)
	}
	defer rows.Close()

	stats := Stats{BySource: make(map[string]int64)}
	for rows.Next() {
		var (
			source string
			count  int64
		)
		if err := rows.Scan(&source, &count); err != nil {
			return Stats{}, fmt.Errorf("scanning stats row: %w", err)
		}
		stats.BySource[source] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("reading stats rows: %w", err)
	}
	return stats, nil
}

func (s *Store) parseMetadata(docID string, raw []byte) map[string]string {
	if len(raw) == 0 {
		return map[string]string{}
	}
	var metadata map[string]string
	if err := json.Unmarshal(raw, &metadata); err != nil {
		s.logger.Warn("failed to parse metadata", "doc_id", docID, "error", err)
		return map[string]string{}
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	return metadata
}
