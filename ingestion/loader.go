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

package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/cinefind/cinefind/ai"
	"github.com/cinefind/cinefind/core"
	"github.com/cinefind/cinefind/storage"
)

// defaultBatchSize is how many movies are embedded per worker task.
const defaultBatchSize = 20

// Loader builds the corpus store and attribute indexes from an extraction
// dump. It embeds movies in parallel batches; a movie whose embedding fails
// is still stored, it just never surfaces through the semantic side.
type Loader struct {
	movieRepository storage.MovieRepository
	embedder        ai.Embedder
	embeddingPool   *ants.Pool
	batchSize       int
	logger          *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			size = 1
		}

		if l.embeddingPool != nil {
			l.embeddingPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		l.embeddingPool = pool
		return nil
	}
}

// WithBatchSize sets how many movies go into one embedding request.
// Default is 20.
func WithBatchSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			size = 1
		}
		l.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a new corpus loader.
func NewLoader(
	movieRepository storage.MovieRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Loader, error) {
	if movieRepository == nil {
		return nil, ErrMovieRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	l := &Loader{
		movieRepository: movieRepository,
		embedder:        provider.Embedder(),
		embeddingPool:   pool,
		batchSize:       defaultBatchSize,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			l.Release()
			return nil, err
		}
	}

	return l, nil
}

// Release releases the embedding pool.
// The loader should not be used after calling Release.
func (l *Loader) Release() {
	if l.embeddingPool != nil {
		l.embeddingPool.Release()
	}
}

// LoadFile reads an extraction dump and loads it into the store.
// Returns the number of movies loaded.
func (l *Loader) LoadFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var dump []*dumpMovie
	if err := json.Unmarshal(data, &dump); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDump, err)
	}

	records := make([]*core.MovieRecord, 0, len(dump))
	for i, entry := range dump {
		record := entry.toRecord()
		if err := core.ValidateMovieRecord(record); err != nil {
			l.logger.Warn("skipping invalid dump entry", "index", i, "title", entry.Title, "err", err)
			continue
		}
		records = append(records, record)
	}

	return l.LoadMovies(ctx, records)
}

// LoadMovies embeds the given records and stores them with their attribute
// entries. Embedding failures are logged per batch and leave those records
// without vectors; storage failures fail the load.
func (l *Loader) LoadMovies(ctx context.Context, records []*core.MovieRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var wg sync.WaitGroup
	for start := 0; start < len(records); start += l.batchSize {
		end := start + l.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		wg.Add(1)
		task := func() {
			defer wg.Done()
			l.embedBatch(ctx, batch)
		}
		if err := l.embeddingPool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	added, err := l.movieRepository.AddMovies(ctx, records...)
	if err != nil {
		return 0, err
	}

	embedded := 0
	for _, record := range added {
		if len(record.Vector) > 0 {
			embedded++
		}
	}
	l.logger.Info("corpus loaded", "movies", len(added), "embedded", embedded)
	return len(added), nil
}

func (l *Loader) embedBatch(ctx context.Context, batch []*core.MovieRecord) {
	texts := make([]string, len(batch))
	for i, record := range batch {
		texts[i] = EmbeddingText(record)
	}

	vectors, err := l.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		l.logger.Warn("embedding batch failed, storing without vectors",
			"batchSize", len(batch), "err", err)
		return
	}
	if len(vectors) != len(batch) {
		l.logger.Warn("embedding count mismatch, storing without vectors",
			"want", len(batch), "got", len(vectors))
		return
	}

	for i, record := range batch {
		record.Vector = vectors[i]
	}
}

// EmbeddingText renders the labeled text block a movie is embedded from.
// Retrieval-side query embeddings are matched against vectors produced from
// exactly this layout, so changing it means reloading the corpus.
func EmbeddingText(record *core.MovieRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Title: %s\n", record.Title)
	fmt.Fprintf(&sb, "Overview: %s\n", record.Overview)
	fmt.Fprintf(&sb, "Genres: %s\n", strings.Join(record.Genres, ", "))
	if record.Year > 0 {
		fmt.Fprintf(&sb, "Release Year: %d\n", record.Year)
	}
	if record.Rating > 0 {
		fmt.Fprintf(&sb, "Rating: %.1f\n", record.Rating)
	}
	if record.Popularity > 0 {
		fmt.Fprintf(&sb, "Popularity: %.1f\n", record.Popularity)
	}
	fmt.Fprintf(&sb, "Director: %s\n", strings.Join(record.Directors, ", "))
	fmt.Fprintf(&sb, "Actors: %s\n", strings.Join(record.Cast, ", "))
	fmt.Fprintf(&sb, "Production Companies: %s\n", strings.Join(record.Companies, ", "))
	if record.Runtime > 0 {
		fmt.Fprintf(&sb, "Runtime: %d\n", record.Runtime)
	}

	return strings.TrimSpace(sb.String())
}
