// Package syncer keeps the embedding index consistent with the on-disk
// knowledge sources. It enumerates every configured source, hashes the
// extracted documents, and issues the minimal upsert/delete set against the
// index. Orphaned records are removed before new content is written.
package syncer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/udaytamma/ProfessorGemini/internal/config"
	"github.com/udaytamma/ProfessorGemini/internal/knowledge"
	"github.com/udaytamma/ProfessorGemini/internal/log"
)

// Index is the slice of the embedding index the syncer needs.
type Index interface {
	Upsert(ctx context.Context, doc knowledge.Document) error
	Delete(ctx context.Context, docID string) error
	ListBySource(ctx context.Context, source string) ([]knowledge.Document, error)
	LatestIndexedAt(ctx context.Context) (time.Time, error)
}

// SourceReport holds per-source sync statistics.
type SourceReport struct {
	Source    string        `json:"source"`
	Total     int           `json:"total"`
	Upserted  int           `json:"upserted"`
	Unchanged int           `json:"unchanged"`
	Deleted   int           `json:"deleted"`
	Skipped   int           `json:"skipped"` // entries dropped by parse failures
	Errors    int           `json:"errors"`
	Duration  time.Duration `json:"duration"`
}

// Report aggregates the per-source results of one sync run.
type Report struct {
	Sources []SourceReport `json:"sources"`
}

// Totals sums all source reports into a single one.
func (r *Report) Totals() SourceReport {
	var t SourceReport
	t.Source = "all"
	for _, s := range r.Sources {
		t.Total += s.Total
		t.Upserted += s.Upserted
		t.Unchanged += s.Unchanged
		t.Deleted += s.Deleted
		t.Skipped += s.Skipped
		t.Errors += s.Errors
		t.Duration += s.Duration
	}
	return t
}

// Syncer diffs knowledge sources against the index.
type Syncer struct {
	index  Index
	cfg    *config.Config
	logger log.Logger
}

// New creates a Syncer around the given index.
func New(index Index, cfg *config.Config, logger log.Logger) *Syncer {
	return &Syncer{
		index:  index,
		cfg:    cfg,
		logger: logger.With("component", "syncer"),
	}
}

type docSource struct {
	name      string
	path      string
	arrayName string // empty for markdown directories
}

func (s *Syncer) sources() []docSource {
	return []docSource{
		{name: knowledge.SourceKB, path: s.cfg.KBPath},
		{name: knowledge.SourceScratch, path: s.cfg.ScratchPath},
		{name: knowledge.SourceQuestions, path: s.cfg.QuestionsFile, arrayName: "questions"},
		{name: knowledge.SourceBlindspots, path: s.cfg.BlindspotsFile, arrayName: "blindspotQuestions"},
		{name: knowledge.SourceWiki, path: s.cfg.WikiFile, arrayName: "knowledgeBaseWikiSections"},
	}
}

// Sync runs an incremental sync of every configured source. When force is
// set the mtime and hash shortcuts are bypassed and every document is
// re-embedded and rewritten.
func (s *Syncer) Sync(ctx context.Context, force bool) (*Report, error) {
	report := &Report{}
	for _, src := range s.sources() {
		if src.path == "" {
			continue
		}
		if _, err := os.Stat(src.path); err != nil {
			s.logger.Warn("source path missing, skipping", "source", src.name, "path", src.path)
			continue
		}

		var rep SourceReport
		if src.arrayName == "" {
			rep = s.syncMarkdown(ctx, src, force)
		} else {
			rep = s.syncData(ctx, src, force)
		}
		report.Sources = append(report.Sources, rep)

		s.logger.Info("source synced",
			"source", rep.Source,
			"total", rep.Total,
			"upserted", rep.Upserted,
			"unchanged", rep.Unchanged,
			"deleted", rep.Deleted,
			"skipped", rep.Skipped,
			"errors", rep.Errors,
			"duration", rep.Duration)

		if err := ctx.Err(); err != nil {
			return report, err
		}
	}
	return report, nil
}

// syncMarkdown syncs one directory of markdown files. The doc_id is derived
// from the file name, so a rename shows up as a delete plus an upsert.
func (s *Syncer) syncMarkdown(ctx context.Context, src docSource, force bool) SourceReport {
	start := time.Now()
	rep := SourceReport{Source: src.name}

	known, ok := s.listKnown(ctx, src.name, &rep)
	if !ok {
		rep.Duration = time.Since(start)
		return rep
	}

	entries, err := os.ReadDir(src.path)
	if err != nil {
		s.logger.Error("read source directory failed", "source", src.name, "error", err)
		rep.Errors++
		rep.Duration = time.Since(start)
		return rep
	}

	seen := make(map[string]bool)
	var upserts []knowledge.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		rep.Total++
		slug := strings.TrimSuffix(entry.Name(), ".md")
		docID := src.name + ":" + slug
		seen[docID] = true

		// Cheap pre-filter: a file older than its index record cannot
		// have changed content.
		prev, indexed := known[docID]
		if !force && indexed {
			if info, err := entry.Info(); err == nil && info.ModTime().Before(prev.IndexedAt) {
				rep.Unchanged++
				continue
			}
		}

		raw, err := os.ReadFile(filepath.Join(src.path, entry.Name()))
		if err != nil {
			s.logger.Warn("read file failed", "source", src.name, "file", entry.Name(), "error", err)
			rep.Errors++
			continue
		}
		content := string(raw)
		hash := contentHash(content)
		if !force && indexed && prev.ContentHash == hash {
			rep.Unchanged++
			continue
		}

		upserts = append(upserts, knowledge.Document{
			DocID:       docID,
			Source:      src.name,
			Title:       extractTitle(content, entry.Name()),
			Content:     content,
			ContentHash: hash,
			CharCount:   len(content),
			Metadata:    extractMetadata(content),
		})
	}

	s.apply(ctx, known, seen, upserts, &rep)
	rep.Duration = time.Since(start)
	return rep
}

// syncData syncs one TypeScript data file. The whole file shares a single
// mtime, so an unchanged file short-circuits before any parsing.
func (s *Syncer) syncData(ctx context.Context, src docSource, force bool) SourceReport {
	start := time.Now()
	rep := SourceReport{Source: src.name}

	known, ok := s.listKnown(ctx, src.name, &rep)
	if !ok {
		rep.Duration = time.Since(start)
		return rep
	}

	if !force && len(known) > 0 {
		if info, err := os.Stat(src.path); err == nil && info.ModTime().Before(oldestIndexedAt(known)) {
			rep.Total = len(known)
			rep.Unchanged = len(known)
			rep.Duration = time.Since(start)
			return rep
		}
	}

	raw, err := os.ReadFile(src.path)
	if err != nil {
		s.logger.Error("read data file failed", "source", src.name, "error", err)
		rep.Errors++
		rep.Duration = time.Since(start)
		return rep
	}

	items, err := parseTypeScriptArray(string(raw), src.arrayName, src.path)
	if err != nil {
		// A file-level parse failure leaves the index untouched for
		// this source rather than deleting everything as orphaned.
		s.logger.Error("parse data file failed", "source", src.name, "error", err)
		rep.Errors++
		rep.Duration = time.Since(start)
		return rep
	}

	var docs []candidate
	var failed []*ParseError
	if src.name == knowledge.SourceWiki {
		docs, failed = flattenWiki(items, src.name, src.path)
	} else {
		for _, item := range items {
			var doc candidate
			var derr error
			if src.name == knowledge.SourceQuestions {
				doc, derr = questionDoc(item, src.name)
			} else {
				doc, derr = blindspotDoc(item, src.name)
			}
			if derr != nil {
				failed = append(failed, &ParseError{Path: src.path, Entry: entryID(item), Err: derr})
				continue
			}
			docs = append(docs, doc)
		}
	}
	for _, perr := range failed {
		s.logger.Warn("skipping malformed entry", "source", src.name, "error", perr)
	}
	rep.Skipped = len(failed)
	rep.Total = len(docs) + len(failed)

	seen := make(map[string]bool)
	var upserts []knowledge.Document
	for _, doc := range docs {
		seen[doc.DocID] = true
		hash := contentHash(doc.Content)
		if prev, indexed := known[doc.DocID]; !force && indexed && prev.ContentHash == hash {
			rep.Unchanged++
			continue
		}
		upserts = append(upserts, knowledge.Document{
			DocID:       doc.DocID,
			Source:      src.name,
			Title:       doc.Title,
			Content:     doc.Content,
			ContentHash: hash,
			CharCount:   len(doc.Content),
			Metadata:    doc.Metadata,
		})
	}

	s.apply(ctx, known, seen, upserts, &rep)
	rep.Duration = time.Since(start)
	return rep
}

func (s *Syncer) listKnown(ctx context.Context, source string, rep *SourceReport) (map[string]knowledge.Document, bool) {
	listed, err := s.index.ListBySource(ctx, source)
	if err != nil {
		s.logger.Error("list indexed documents failed", "source", source, "error", err)
		rep.Errors++
		return nil, false
	}
	known := make(map[string]knowledge.Document, len(listed))
	for _, d := range listed {
		known[d.DocID] = d
	}
	return known, true
}

// apply removes orphans first, then writes the queued upserts. Deleting
// before upserting avoids a window with two records claiming one doc_id. An
// embedding failure on one document is logged and retried on the next sync.
func (s *Syncer) apply(ctx context.Context, known map[string]knowledge.Document, seen map[string]bool, upserts []knowledge.Document, rep *SourceReport) {
	for docID := range known {
		if seen[docID] {
			continue
		}
		if err := s.index.Delete(ctx, docID); err != nil {
			s.logger.Error("delete orphan failed", "doc_id", docID, "error", err)
			rep.Errors++
			continue
		}
		s.logger.Info("deleted orphan", "doc_id", docID)
		rep.Deleted++
	}

	for _, doc := range upserts {
		if err := s.index.Upsert(ctx, doc); err != nil {
			s.logger.Warn("upsert failed, will retry next sync", "doc_id", doc.DocID, "error", err)
			rep.Errors++
			continue
		}
		s.logger.Info("indexed document", "doc_id", doc.DocID, "chars", doc.CharCount)
		rep.Upserted++
	}
}

// Stale reports whether any source file has been modified since the most
// recent index write. It is a fast mtime probe used at startup to decide
// whether a sync is worth running.
func (s *Syncer) Stale(ctx context.Context) (bool, error) {
	last, err := s.index.LatestIndexedAt(ctx)
	if err != nil {
		return true, fmt.Errorf("read last indexed time: %w", err)
	}
	if last.IsZero() {
		return true, nil
	}

	for _, src := range s.sources() {
		if src.path == "" {
			continue
		}
		info, err := os.Stat(src.path)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			if info.ModTime().After(last) {
				return true, nil
			}
			continue
		}
		entries, err := os.ReadDir(src.path)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			fi, err := entry.Info()
			if err != nil {
				continue
			}
			if fi.ModTime().After(last) {
				return true, nil
			}
		}
	}
	return false, nil
}

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func oldestIndexedAt(known map[string]knowledge.Document) time.Time {
	var oldest time.Time
	for _, d := range known {
		if oldest.IsZero() || d.IndexedAt.Before(oldest) {
			oldest = d.IndexedAt
		}
	}
	return oldest
}
