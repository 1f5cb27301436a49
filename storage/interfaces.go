package storage

import (
	"context"

	"github.com/cinefind/cinefind/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// MovieRepository provides operations for the movie corpus store and its
// precomputed embeddings. The serving path only reads; AddMovies exists for
// the loader and for tests.
type MovieRepository interface {
	Repository

	// AddMovies adds one or more movie records to storage together with
	// their attribute-index entries. Records with Id=0 get a
	// content-derived ID from title and year. Marks the indexes built.
	// Returns the records with generated IDs populated.
	AddMovies(ctx context.Context, records ...*core.MovieRecord) ([]*core.MovieRecord, error)

	// GetMovie retrieves a single movie record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetMovie(ctx context.Context, id core.ID) (*core.MovieRecord, error)

	// GetMovies retrieves multiple movie records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetMovies(ctx context.Context, ids ...core.ID) ([]*core.MovieRecord, error)

	// AllIDs returns the identifiers of every movie in the corpus,
	// in ascending order.
	AllIDs(ctx context.Context) ([]core.ID, error)

	// EmbeddingOf returns the precomputed embedding for a movie.
	// Returns ErrNotFound if the record doesn't exist and ErrNoEmbedding
	// if the record exists but has not been embedded.
	EmbeddingOf(ctx context.Context, id core.ID) ([]float32, error)

	// FindSimilar finds movies whose embeddings are similar to the given
	// vector. Returns records with similarity >= minSimilarity, up to
	// limit results, ordered by similarity score descending with ID
	// ascending as the tie-break. Records without embeddings are skipped.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error)
}

// AttributeIndex provides exact lookup of movies by structured attribute.
// It is populated by the loader and read-only during serving.
type AttributeIndex interface {
	// Lookup returns the identifiers of movies matching a single
	// (kind, value) constraint. Values for person, genre, and company
	// kinds are matched case-insensitively against the normalized index.
	// Year-range values use the "start-end" form with either bound
	// optional; rating_min values are decimal thresholds.
	// An unknown value yields an empty set, not an error.
	Lookup(ctx context.Context, kind core.FilterKind, value string) ([]core.ID, error)

	// KnownValues returns the distinct indexed values for a kind, in the
	// original casing recorded at build time. Used by the query
	// interpreter for vocabulary matching.
	KnownValues(ctx context.Context, kind core.FilterKind) ([]string, error)

	// Ready reports whether the index has been built. An index that was
	// built from an empty corpus is still ready; only a store that never
	// saw a load is not.
	Ready(ctx context.Context) (bool, error)
}
