package core

import (
	"encoding/binary"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Movies imported from an extraction dump keep their upstream identifier;
// records without one get a content-derived ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// MovieRecord is the canonical record for a single movie.
// It is immutable once loaded into the corpus store; the serving path
// only ever reads it.
type MovieRecord struct {
	Id         ID
	Title      string
	Overview   string
	Year       int
	Genres     []string
	Cast       []string
	Directors  []string
	Companies  []string
	Rating     float64
	Popularity float64
	Runtime    int
	Vector     []float32 // Embedding for semantic search (populated by the loader)
}

// FilterKind identifies a structured constraint extracted from a query.
type FilterKind int

const (
	// FilterPerson matches against cast members and directors.
	FilterPerson FilterKind = iota + 1
	// FilterGenre matches genre tags.
	FilterGenre
	// FilterCompany matches production companies.
	FilterCompany
	// FilterYear matches an exact release year.
	FilterYear
	// FilterYearRange matches a release-year interval.
	FilterYearRange
	// FilterRatingMin matches movies rated at or above a threshold.
	FilterRatingMin
)

// String returns the index name of the filter kind.
func (k FilterKind) String() string {
	switch k {
	case FilterPerson:
		return "person"
	case FilterGenre:
		return "genre"
	case FilterCompany:
		return "company"
	case FilterYear:
		return "year"
	case FilterYearRange:
		return "year_range"
	case FilterRatingMin:
		return "rating_min"
	default:
		return fmt.Sprintf("filterkind(%d)", int(k))
	}
}

// FilterSet maps filter kinds to their required values.
// Semantics: AND across kinds, OR within a kind's value list.
// An empty FilterSet means "no structured constraint", not "match nothing".
type FilterSet map[FilterKind][]string

// Empty reports whether the set carries no constraints.
func (fs FilterSet) Empty() bool {
	return len(fs) == 0
}

// Add appends a value to a kind, skipping duplicates.
func (fs FilterSet) Add(kind FilterKind, value string) {
	for _, v := range fs[kind] {
		if v == value {
			return
		}
	}
	fs[kind] = append(fs[kind], value)
}

// ParsedQuery is the immutable outcome of query interpretation:
// the structured filters plus the residual semantic text.
type ParsedQuery struct {
	Raw      string
	Filters  FilterSet
	Semantic string
}

// PureStructured reports whether the query carries only structured filters.
func (q ParsedQuery) PureStructured() bool {
	return q.Semantic == "" && !q.Filters.Empty()
}

// PureSemantic reports whether the query carries no structured filters.
func (q ParsedQuery) PureSemantic() bool {
	return q.Semantic != "" && q.Filters.Empty()
}

// Empty reports whether interpretation produced neither filters nor
// semantic text.
func (q ParsedQuery) Empty() bool {
	return q.Semantic == "" && q.Filters.Empty()
}

// ScoredCandidate is a ranked movie reference produced during retrieval.
// It lives for a single request and is never persisted.
type ScoredCandidate struct {
	Id              ID
	StructuredMatch bool
	Similarity      float32 // Valid only when HasSimilarity is true
	HasSimilarity   bool
	Score           float32 // The rank key within the candidate's retrieval mode
}

// SimilarityMatch represents a movie match from vector similarity search.
type SimilarityMatch struct {
	Record *MovieRecord
	Score  float32
}

// SearchResult is a fully resolved retrieval hit.
// Similarity is meaningful only when HasSimilarity is true; structured-only
// hits carry no similarity at all rather than a zero one.
type SearchResult struct {
	Record          *MovieRecord
	StructuredMatch bool
	HasSimilarity   bool
	Similarity      float32
	Score           float32
}
