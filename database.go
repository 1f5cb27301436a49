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

package cinefind

import (
	"log/slog"

	"github.com/cinefind/cinefind/ai"
	"github.com/cinefind/cinefind/ai/openai"
	"github.com/cinefind/cinefind/ingestion"
	"github.com/cinefind/cinefind/storage"
	"github.com/cinefind/cinefind/storage/badger"
)

// Database bundles the corpus store, the attribute indexes, and the AI
// provider behind one handle. It is the composition root: loaders and
// engines are created from it so they share the same backend.
type Database struct {
	backend   *badger.Backend
	movieRepo storage.MovieRepository
	attrIndex storage.AttributeIndex
	provider  ai.AIProvider
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	aiProvider ai.AIProvider
	inMemory   bool
}

// WithAIConfig sets the AI provider configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithAIProvider supplies a ready-made AI provider instead of building one
// from configuration. Used by tests to inject mock services.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiProvider = provider
	}
}

// WithInMemory opens the store in memory, ignoring filePath.
// Nothing survives Close; intended for tests and experiments.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens (or creates) a database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	movieRepo, err := badger.NewMovieRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	attrIndex, err := badger.NewAttributeIndex(backend)
	if err != nil {
		movieRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.aiProvider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			movieRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:   backend,
		movieRepo: movieRepo,
		attrIndex: attrIndex,
		provider:  provider,
		logger:    slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.movieRepo.Close(); err != nil {
		db.logger.Error("error closing movie repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) MovieRepository() storage.MovieRepository {
	return db.movieRepo
}

func (db *Database) AttributeIndex() storage.AttributeIndex {
	return db.attrIndex
}

func (db *Database) NewLoader(opts ...ingestion.Option) (*ingestion.Loader, error) {
	return ingestion.NewLoader(db.movieRepo, db.provider, opts...)
}
