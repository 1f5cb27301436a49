// Copyright 2025 Cinefind Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package recommend

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/cinefind/cinefind/ai"
	"github.com/cinefind/cinefind/core"
)

// defaultTimeout bounds a single composition, retries included.
const defaultTimeout = 30 * time.Second

// maxParseAttempts is how many times the narrator is re-asked when its
// output is not parseable JSON.
const maxParseAttempts = 3

// Recommendation is one narrated pick. Movie points into the retrieval
// results when the narrated title could be matched back; otherwise it is
// nil and only the narrator's wording is available.
type Recommendation struct {
	Title  string            `json:"title"`
	Reason string            `json:"reason"`
	Movie  *core.MovieRecord `json:"-"`
}

// recommendationList is the wrapper structure for the narrator's JSON response.
type recommendationList struct {
	Recommendations []*Recommendation `json:"recommendations"`
}

// Composer turns a retrieval result list into narrated recommendations
// using an LLM. It is strictly an embellishment stage: callers are expected
// to fall back to the plain result list when composition fails.
type Composer struct {
	narrator ai.Narrator
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures a Composer.
type Option func(*Composer) error

// WithTimeout sets the overall deadline for one composition.
// Default is 30 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Composer) error {
		if timeout > 0 {
			c.timeout = timeout
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewComposer creates a new recommendation composer.
func NewComposer(provider ai.AIProvider, opts ...Option) (*Composer, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	c := &Composer{
		narrator: provider.Narrator(),
		timeout:  defaultTimeout,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Compose asks the narrator to pick and justify recommendations from the
// given results. Narrated titles are resolved back to result records by
// loose title matching; unmatched picks keep a nil Movie.
//
// An empty result list composes to nothing without calling the narrator.
func (c *Composer) Compose(ctx context.Context, query string, results []*core.SearchResult) ([]*Recommendation, error) {
	if len(results) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := buildPrompt(query, results)

	var parsed recommendationList
	var lastErr error
	for attempt := 0; attempt < maxParseAttempts; attempt++ {
		response, err := c.narrator.Narrate(ctx, prompt)
		if err != nil {
			c.logger.Error("narration failed", "attempt", attempt+1, "err", err)
			return nil, err
		}

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(response)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
			lastErr = err
			c.logger.Warn("error parsing narrator response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		c.logger.Error("failed to parse narrator response after retries", "err", lastErr)
		return nil, ErrMalformedResponse
	}

	recommendations := make([]*Recommendation, 0, len(parsed.Recommendations))
	for _, rec := range parsed.Recommendations {
		if rec == nil || strings.TrimSpace(rec.Title) == "" {
			continue
		}
		rec.Movie = matchTitle(rec.Title, results)
		if rec.Movie == nil {
			c.logger.Debug("narrated title not found in results", "title", rec.Title)
		}
		recommendations = append(recommendations, rec)
	}

	return recommendations, nil
}

// matchTitle resolves a narrated title against the result records.
// Exact normalized equality wins; containment in either direction is
// accepted so "Top Gun (1986)" still finds "Top Gun".
func matchTitle(title string, results []*core.SearchResult) *core.MovieRecord {
	want := normalizeTitle(title)
	if want == "" {
		return nil
	}

	var loose *core.MovieRecord
	for _, result := range results {
		if result == nil || result.Record == nil {
			continue
		}
		have := normalizeTitle(result.Record.Title)
		if have == want {
			return result.Record
		}
		if loose == nil && have != "" &&
			(strings.Contains(want, have) || strings.Contains(have, want)) {
			loose = result.Record
		}
	}
	return loose
}

// normalizeTitle lowercases a title and strips edge punctuation from each word.
func normalizeTitle(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	for i, f := range fields {
		fields[i] = strings.Trim(f, ".,!?;:'\"-()[]{}")
	}
	return strings.TrimSpace(strings.Join(fields, " "))
}
