// Package recommend narrates retrieval results.
//
// The composer hands the user's request and the retrieved candidates to an
// LLM and parses its JSON picks back into recommendations, resolving each
// narrated title to its result record by loose matching. Composition is
// best-effort by contract: any failure here should degrade to the plain
// result list, never to an error the user sees.
package recommend
