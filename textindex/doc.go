// Package textindex implements the fuzzy location index: an
// embedding-backed nearest-neighbor store mapping text to previously
// registered conversation locations.
//
// EmbeddingIndex is the raw vector store; TextToLocationIndex layers
// the parallel location sequence, batch insertion with
// truncate-to-completed-prefix semantics, subset-constrained lookup and
// snapshot serialization on top of it. The related-terms index in the
// index package reuses EmbeddingIndex for term synonyms.
package textindex
