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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// NarratorHost is the base URL for the text-generation service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	NarratorHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// NarratorModel is the model identifier to use for generating
	// recommendation narration.
	// Example: "mistral", "gpt-4o-mini"
	NarratorModel string

	// NarrationMaxTokens bounds the length of generated narration.
	// Default: 1024
	NarrationMaxTokens int

	// NarrationTemperature controls sampling for narration.
	// Default: 0.7
	NarrationTemperature float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithNarratorHost sets the narration service host URL.
func WithNarratorHost(host string) ConfigOption {
	return func(c *Config) {
		c.NarratorHost = host
	}
}

// WithHost sets both embedding and narrator hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.NarratorHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithNarratorModel sets the narration model identifier.
func WithNarratorModel(model string) ConfigOption {
	return func(c *Config) {
		c.NarratorModel = model
	}
}

// WithNarrationMaxTokens sets the narration token budget.
func WithNarrationMaxTokens(max int) ConfigOption {
	return func(c *Config) {
		c.NarrationMaxTokens = max
	}
}

// WithNarrationTemperature sets the narration sampling temperature.
func WithNarrationTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.NarrationTemperature = temperature
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and narration use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:        defaultHost,
		NarratorHost:         defaultHost,
		EmbeddingModel:       "embeddinggemma",
		NarratorModel:        "mistral",
		NarrationMaxTokens:   1024,
		NarrationTemperature: 0.7,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("text-embedding-3-small"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
	}
	if c.NarratorHost != "" && !strings.HasSuffix(c.NarratorHost, "/v1") {
		c.NarratorHost = strings.TrimSuffix(c.NarratorHost, "/") + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.NarratorHost == "" {
		return errors.New("ai config: NarratorHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.NarratorModel == "" {
		return errors.New("ai config: NarratorModel is required")
	}
	if c.NarrationMaxTokens < 1 {
		return errors.New("ai config: NarrationMaxTokens must be positive")
	}
	if c.NarrationTemperature < 0 || c.NarrationTemperature > 2 {
		return errors.New("ai config: NarrationTemperature must be between 0 and 2")
	}
	return nil
}
