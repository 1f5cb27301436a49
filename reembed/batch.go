package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/cinefind/cinefind/ai"
	"github.com/cinefind/cinefind/core"
	"github.com/cinefind/cinefind/ingestion"
	"github.com/cinefind/cinefind/storage"
)

// BatchProcessor regenerates embeddings for batches of movies.
type BatchProcessor struct {
	repo           storage.MovieRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.MovieRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process regenerates embeddings for a batch of movies and rewrites them.
// Vectors are normalized after embedding so cosine comparisons stay exact.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.MovieRecord) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = ingestion.EmbeddingText(record)
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(records) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(records), len(embeddings))
	}

	for i := range records {
		records[i].Vector = NormalizeVector(embeddings[i])
	}

	// Rewriting through AddMovies is idempotent: IDs are already set and
	// the attribute entries resolve to the same keys.
	_, err = bp.repo.AddMovies(ctx, records...)
	if err != nil {
		return fmt.Errorf("failed to update movies: %w", err)
	}

	return nil
}
