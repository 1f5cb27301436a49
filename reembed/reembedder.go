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

package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cinefind/cinefind/ai"
	"github.com/cinefind/cinefind/core"
	"github.com/cinefind/cinefind/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of movies to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of movies)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates the embeddings of every movie in a database.
// Run it after switching embedding models: stored vectors and query
// vectors must come from the same model to be comparable.
type Reembedder struct {
	repo      storage.MovieRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *MovieIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.MovieRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewMovieIterator(repo, config.BatchSize)

	return &Reembedder{
		repo:      repo,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: processor,
		iterator:  iterator,
	}
}

// Run executes the reembedding operation.
// Every movie in the database is reembedded with the configured embedder.
// Progress is reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	ids, err := r.repo.AllIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list movies: %w", err)
	}

	totalMovies := len(ids)
	if totalMovies == 0 {
		fmt.Fprintf(r.progress, "No movies found in database (0 movies)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d movies (batch size: %d)\n",
		totalMovies, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, totalMovies, r.config.ReportInterval)
	tracker.Start()

	processed := 0

	err = r.iterator.ForEach(ctx, func(records []*core.MovieRecord) error {
		if err := r.processor.Process(ctx, records); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(records)
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d movies in %v (%.1f movies/sec)\n",
		totalMovies, elapsed.Round(time.Second), float64(totalMovies)/elapsed.Seconds())

	return nil
}
