package ingestion

import "errors"

var (
	// ErrMovieRepositoryRequired is returned when a movie repository is not provided.
	ErrMovieRepositoryRequired = errors.New("movie repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidDump is returned when a dump file cannot be parsed.
	ErrInvalidDump = errors.New("invalid movie dump")
)
