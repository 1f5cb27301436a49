// Package search implements hybrid retrieval over the movie corpus.
//
// A parsed query's structured filters resolve through the attribute index
// (union within a kind, intersection across kinds) while its semantic text
// is embedded and matched against precomputed movie vectors. When a query
// carries both, the structured candidate set is re-ranked by vector
// similarity; an empty candidate set falls back to full-corpus semantic
// search rather than returning nothing.
//
// Retrieval is read-only and deterministic for a fixed corpus: every mode
// has a total rank order with ID as the final tie-break.
package search
