package query

import (
	"context"
	"strings"
	"sync"

	"github.com/cinefind/cinefind/core"
	"github.com/cinefind/cinefind/storage"
)

// Vocabulary resolves user-supplied attribute values against the values the
// index actually knows, so "tom cruise" lands on "Tom Cruise" and a value
// the index has never seen resolves to nothing.
type Vocabulary interface {
	// Match returns the canonical (display-cased) known values that a
	// candidate refers to, case-insensitively. Exact matches win over
	// substring matches; an unknown candidate yields an empty slice,
	// never an error.
	Match(ctx context.Context, kind core.FilterKind, candidate string) ([]string, error)
}

// IndexVocabulary implements Vocabulary over a storage.AttributeIndex.
// Known values are cached per kind; the index is read-only during serving,
// so the cache never invalidates.
type IndexVocabulary struct {
	index storage.AttributeIndex

	mu    sync.RWMutex
	cache map[core.FilterKind][]string
}

var _ Vocabulary = (*IndexVocabulary)(nil)

// NewIndexVocabulary creates a vocabulary backed by an attribute index.
func NewIndexVocabulary(index storage.AttributeIndex) *IndexVocabulary {
	return &IndexVocabulary{
		index: index,
		cache: make(map[core.FilterKind][]string),
	}
}

// Match resolves a candidate against the known values of a kind.
//
// Resolution order:
//  1. case-insensitive exact matches
//  2. known values containing the candidate ("cruise" -> "Tom Cruise")
//  3. known values contained in the candidate ("dark thriller" -> "Thriller")
//
// The first non-empty tier wins; every value in that tier is returned,
// which gives the filter its OR semantics when a candidate is ambiguous.
func (v *IndexVocabulary) Match(ctx context.Context, kind core.FilterKind, candidate string) ([]string, error) {
	cand := normalizeTerm(candidate)
	if cand == "" {
		return nil, nil
	}

	known, err := v.known(ctx, kind)
	if err != nil {
		return nil, err
	}

	var exact, contains, contained []string
	for _, value := range known {
		norm := normalizeTerm(value)
		switch {
		case norm == cand:
			exact = append(exact, value)
		case strings.Contains(norm, cand):
			contains = append(contains, value)
		case strings.Contains(cand, norm):
			contained = append(contained, value)
		}
	}

	if len(exact) > 0 {
		return exact, nil
	}
	if len(contains) > 0 {
		return contains, nil
	}
	return contained, nil
}

func (v *IndexVocabulary) known(ctx context.Context, kind core.FilterKind) ([]string, error) {
	v.mu.RLock()
	values, ok := v.cache[kind]
	v.mu.RUnlock()
	if ok {
		return values, nil
	}

	values, err := v.index.KnownValues(ctx, kind)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.cache[kind] = values
	v.mu.Unlock()
	return values, nil
}

// normalizeTerm canonicalizes a term for comparison: lowercased, edge
// punctuation trimmed, whitespace collapsed.
func normalizeTerm(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	for i, f := range fields {
		fields[i] = strings.Trim(f, ".,!?;:'\"-()[]{}")
	}
	return strings.TrimSpace(strings.Join(fields, " "))
}
