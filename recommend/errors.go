package recommend

import "errors"

var (
	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrMalformedResponse is returned when the narrator's output cannot be
	// parsed as a recommendation list after retries.
	ErrMalformedResponse = errors.New("malformed narrator response")
)
