package mock

import (
	"context"
	"fmt"
)

// MockNarrator is a test double for ai.Narrator.
// It allows custom behavior injection via function fields.
type MockNarrator struct {
	// NarrateFunc is called by Narrate if set.
	// If nil, uses default deterministic behavior.
	NarrateFunc func(ctx context.Context, prompt string) (string, error)

	callCount int
}

// NewMockNarrator creates a mock narrator with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockNarrator().
func NewMockNarrator() *MockNarrator {
	return &MockNarrator{}
}

// Narrate returns a minimal well-formed recommendations document so the
// composer's parse path is exercised by default.
func (m *MockNarrator) Narrate(ctx context.Context, prompt string) (string, error) {
	m.callCount++

	if m.NarrateFunc != nil {
		return m.NarrateFunc(ctx, prompt)
	}

	return fmt.Sprintf(
		`{"recommendations":[{"title":"Mock Pick","reason":"deterministic mock narration for a %d byte prompt"}]}`,
		len(prompt)), nil
}

// CallCount returns the number of times Narrate was called.
func (m *MockNarrator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockNarrator) Reset() {
	m.callCount = 0
	m.NarrateFunc = nil
}
