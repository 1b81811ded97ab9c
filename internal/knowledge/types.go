package knowledge

import "time"

// Source identifiers for indexed documents. The doc_id prefix always matches
// the source (e.g. "kb:load-balancing").
const (
	// SourceKB is the generated knowledge-base guides (markdown files).
	SourceKB = "kb"

	// SourceScratch is the optional scratch-pad markdown directory.
	SourceScratch = "scratch"

	// SourceQuestions is the interview questions TypeScript data file.
	SourceQuestions = "questions"

	// SourceBlindspots is the blindspot questions TypeScript data file.
	SourceBlindspots = "blindspots"

	// SourceWiki is the cloud-services wiki TypeScript data file.
	SourceWiki = "wiki"
)

// KnownSources lists every valid source identifier.
var KnownSources = []string{SourceKB, SourceScratch, SourceQuestions, SourceBlindspots, SourceWiki}

// Document is a knowledge document as stored in the index.
// DocID is globally unique and stable across syncs; it is the join key
// between the authoring corpus and the index.
type Document struct {
	DocID       string            // source-prefixed, e.g. "kb:<slug>"
	Source      string            // one of the Source* constants
	Title       string            // extracted from content or data entry
	Content     string            // full text (empty in list results)
	ContentHash string            // sha256 digest of Content
	IndexedAt   time.Time         // when the record was written
	CharCount   int               // len(Content) at index time
	Metadata    map[string]string // source-specific extras
}

// Result is a single search hit with its cosine similarity score.
type Result struct {
	Document   Document
	Similarity float32
}

// Stats summarizes the index contents.
type Stats struct {
	Total    int64
	BySource map[string]int64
}

// SearchOption configures search behavior using the functional options
// pattern.
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK    int
	source  string
	timeout time.Duration
}

const defaultSearchTimeout = 10 * time.Second

// WithTopK sets the maximum number of results to return. Default is 5.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithSource restricts results to a single source.
func WithSource(source string) SearchOption {
	return func(c *searchConfig) {
		c.source = source
	}
}

// WithTimeout overrides the per-search timeout. Default is 10s.
func WithTimeout(d time.Duration) SearchOption {
	return func(c *searchConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{
		topK:    5,
		timeout: defaultSearchTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
