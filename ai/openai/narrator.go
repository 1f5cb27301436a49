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


package openai

import (
	"context"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/cinefind/cinefind/ai"
)

// Narrator implements ai.Narrator using OpenAI-compatible chat APIs.
type Narrator struct {
	client      llms.Model
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// newNarrator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newNarrator(config *ai.Config) (*Narrator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/generation
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.NarratorHost),
		openai.WithToken("none"),
		openai.WithModel(config.NarratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Narrator{
		client:      client,
		maxTokens:   config.NarrationMaxTokens,
		temperature: config.NarrationTemperature,
		logger:      slog.Default().With("component", "openai-narrator"),
	}, nil
}

// NewNarrator creates a new narrator using the provided configuration.
//
// Returns ai.Narrator interface to enforce abstraction.
func NewNarrator(config *ai.Config) (ai.Narrator, error) {
	return newNarrator(config)
}

// Narrate generates text for the given prompt. JSON mode is requested so
// callers that expect structured output get well-formed responses where the
// backing model supports it; the raw content is returned either way.
func (n *Narrator) Narrate(ctx context.Context, prompt string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	response, err := n.client.GenerateContent(ctx, content,
		llms.WithTemperature(n.temperature),
		llms.WithMaxTokens(n.maxTokens),
		llms.WithJSONMode(),
	)
	if err != nil {
		n.logger.Error("failed to generate narration", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		n.logger.Debug("no choices returned from model")
		return "", ErrNoChoices
	}

	return response.Choices[0].Content, nil
}
