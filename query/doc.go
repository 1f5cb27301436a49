// Package query interprets free-form movie queries.
//
// The parser recognizes a fixed list of cue phrases (starring, directed by,
// genre is, year and rating forms) and resolves their values against the
// attribute index vocabulary. Everything the cue scanner does not consume
// remains as semantic text for the vector side of retrieval.
//
// Parsing never fails on malformed input. The only parse error is an
// empty query; unknown cue values are consumed and logged so a typo in a
// name yields an empty result set rather than a misleading semantic hit.
package query
