// Package reembed regenerates movie embeddings in place.
//
// Semantic retrieval only works when corpus vectors and query vectors come
// from the same embedding model, so switching models means rebuilding every
// stored vector. The reembedder walks the corpus in batches, re-renders
// each movie's embedding text, and rewrites the records with fresh
// normalized vectors, reporting progress as it goes.
package reembed
