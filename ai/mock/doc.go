// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Narrator,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run
// without external AI service dependencies and enable controlled,
// deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embedding, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockNarrator := mock.NewMockNarrator()
//	mockNarrator.NarrateFunc = func(ctx context.Context, prompt string) (string, error) {
//	    return "", errors.New("narrator unavailable")
//	}
//
//	// Check call counts
//	count := mockNarrator.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockNarrator: Returns a minimal well-formed recommendations document
//   - MockProvider: Aggregates mock embedder and narrator
package mock
