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

	"github.com/cinefind/cinefind/core"
	"github.com/cinefind/cinefind/storage"
)

const (
	// DefaultBatchSize is the default number of movies to fetch in each batch
	DefaultBatchSize = 100
)

// MovieIterator iterates over the whole corpus in batches.
type MovieIterator struct {
	repo      storage.MovieRepository
	batchSize int
}

// NewMovieIterator creates a new movie iterator.
// batchSize: number of movies to fetch in each batch (must be > 0)
func NewMovieIterator(repo storage.MovieRepository, batchSize int) *MovieIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &MovieIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach iterates over all movies, calling fn for each batch.
// Iteration stops on first error from fn or when all movies are processed.
// Context cancellation is checked between batches.
func (it *MovieIterator) ForEach(ctx context.Context, fn func([]*core.MovieRecord) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	ids, err := it.repo.AllIDs(ctx)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		return nil
	}

	for i := 0; i < len(ids); i += it.batchSize {
		end := i + it.batchSize
		if end > len(ids) {
			end = len(ids)
		}

		batch, err := it.repo.GetMovies(ctx, ids[i:end]...)
		if err != nil {
			return err
		}

		if err := fn(batch); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
