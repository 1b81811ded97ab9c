// Package retrieve builds prompt context from the embedding index. Semantic
// search results are formatted and concatenated under a character budget,
// with a transparent fallback to the full on-disk corpus when the index
// cannot supply enough usable context.
package retrieve

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/udaytamma/ProfessorGemini/internal/config"
	"github.com/udaytamma/ProfessorGemini/internal/knowledge"
	"github.com/udaytamma/ProfessorGemini/internal/log"
)

// Mode tags how a Bundle was assembled.
type Mode string

const (
	// ModeRAG means the content came from semantic search hits.
	ModeRAG Mode = "rag"

	// ModeFallbackFull means the index was empty, unreachable or returned
	// too little, and the whole corpus was loaded instead.
	ModeFallbackFull Mode = "fallback_full"
)

// DocRef identifies one document that contributed to a Bundle.
type DocRef struct {
	DocID      string
	Title      string
	Source     string
	Similarity float32
	CharCount  int
}

// Bundle is assembled context ready to inline into a prompt. Callers treat
// both modes identically; Mode exists for logging and reports only.
type Bundle struct {
	Query      string
	Mode       Mode
	Content    string
	TotalChars int
	Docs       []DocRef
	Duration   time.Duration
}

// Searcher is the slice of the embedding index the retriever needs.
type Searcher interface {
	Search(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Result, error)
}

// Retriever assembles context bundles for generation prompts.
type Retriever struct {
	index  Searcher
	cfg    *config.Config
	logger log.Logger
}

// New creates a Retriever over the given index.
func New(index Searcher, cfg *config.Config, logger log.Logger) *Retriever {
	return &Retriever{
		index:  index,
		cfg:    cfg,
		logger: logger.With("component", "retriever"),
	}
}

var frontmatterRe = regexp.MustCompile(`(?s)^---\s*\n.*?\n---\s*\n`)

func stripFrontmatter(content string) string {
	return strings.TrimSpace(frontmatterRe.ReplaceAllString(content, ""))
}

func docSection(docID, content string) string {
	return fmt.Sprintf("--- Document: %s.md ---\n%s", docID, stripFrontmatter(content))
}

// Retrieve searches the index for the topK documents nearest the query and
// concatenates them in rank order up to the configured character budget.
// topK <= 0 uses the configured default. Degraded modes never surface as
// errors; an error is returned only when the fallback corpus is unusable too.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) (*Bundle, error) {
	start := time.Now()
	if topK <= 0 {
		topK = r.cfg.RAGTopK
	}

	results, err := r.index.Search(ctx, query, knowledge.WithTopK(topK))
	if err != nil {
		r.logger.Warn("semantic search failed, falling back to full corpus", "error", err)
		return r.fallback(ctx, query, start)
	}

	bundle := r.assemble(query, results)
	if bundle.TotalChars < r.cfg.MinContextChars {
		r.logger.Warn("retrieved context below minimum, falling back to full corpus",
			"chars", bundle.TotalChars, "min_chars", r.cfg.MinContextChars)
		return r.fallback(ctx, query, start)
	}

	bundle.Duration = time.Since(start)
	r.logger.Info("context retrieved",
		"mode", bundle.Mode,
		"docs", len(bundle.Docs),
		"chars", bundle.TotalChars,
		"duration", bundle.Duration)
	return bundle, nil
}

// assemble formats hits in rank order, stopping at the budget boundary. When
// even the top hit exceeds the budget it is truncated rather than dropped so
// the bundle is never empty on a non-empty result set.
func (r *Retriever) assemble(query string, results []knowledge.Result) *Bundle {
	bundle := &Bundle{Query: query, Mode: ModeRAG}
	budget := r.cfg.ContextBudget

	var parts []string
	total := 0
	for _, res := range results {
		section := docSection(res.Document.DocID, res.Document.Content)
		cost := len(section)
		if len(parts) > 0 {
			cost += len("\n\n")
		}
		if total+cost > budget {
			if len(parts) == 0 {
				section = section[:budget]
				parts = append(parts, section)
				total = len(section)
				bundle.Docs = append(bundle.Docs, docRef(res))
			}
			break
		}
		parts = append(parts, section)
		total += cost
		bundle.Docs = append(bundle.Docs, docRef(res))
	}

	bundle.Content = strings.Join(parts, "\n\n")
	bundle.TotalChars = len(bundle.Content)
	return bundle
}

func docRef(res knowledge.Result) DocRef {
	return DocRef{
		DocID:      res.Document.DocID,
		Title:      res.Document.Title,
		Source:     res.Document.Source,
		Similarity: res.Similarity,
		CharCount:  res.Document.CharCount,
	}
}

func (r *Retriever) fallback(ctx context.Context, query string, start time.Time) (*Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, count, err := loadCorpus(r.cfg.KBPath)
	if err != nil {
		return nil, fmt.Errorf("fallback corpus load: %w", err)
	}

	bundle := &Bundle{
		Query:      query,
		Mode:       ModeFallbackFull,
		Content:    content,
		TotalChars: len(content),
		Duration:   time.Since(start),
	}
	r.logger.Info("context retrieved",
		"mode", bundle.Mode,
		"docs", count,
		"chars", bundle.TotalChars,
		"duration", bundle.Duration)
	return bundle, nil
}
