// Package knowledge implements the embedding index: a pgvector-backed store
// of knowledge documents with cosine similarity search.
//
// The index is the single shared store between the document syncer (writer)
// and the context retrievers (readers). All access goes through an injected
// *Store; nothing in this package is global.
//
// Records are keyed by doc_id ("<source>:<slug>"), and upserts replace the
// whole record, so concurrent writers to different ids never conflict and a
// reader sees either the old or the new version of a document, never a mix.
//
// Usage:
//
//	store := knowledge.New(pool, embedder, logger)
//	err := store.Upsert(ctx, doc)
//	results, err := store.Search(ctx, "consistent hashing",
//	    knowledge.WithTopK(5), knowledge.WithSource(knowledge.SourceKB))
package knowledge
