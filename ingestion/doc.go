// Package ingestion loads extraction dumps into the corpus store.
//
// A dump is a JSON array of movie entries as produced by TMDB-style
// extractors, with all their type sloppiness ("N/A" placeholders, numbers
// as strings). The loader normalizes entries into canonical records,
// embeds them in parallel batches, and writes records and attribute-index
// entries in one pass. Loading is the only write path in the system.
package ingestion
