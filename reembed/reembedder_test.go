package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinefind/cinefind/ai/mock"
)

func testConfig() *Config {
	return &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}
}

func TestReembedder_Run(t *testing.T) {
	repo := newSeededRepo(t, 3)
	ctx := context.Background()

	// Seeded without vectors: everything needs embedding.
	ids, err := repo.AllIDs(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	var progress bytes.Buffer
	reembedder := NewReembedder(repo, mock.NewMockEmbedder(), testConfig(), &progress)
	require.NoError(t, reembedder.Run(ctx))

	for _, id := range ids {
		vector, err := repo.EmbeddingOf(ctx, id)
		require.NoError(t, err)
		assert.NotEmpty(t, vector)
	}
	assert.Contains(t, progress.String(), "Reembedding complete")
}

func TestReembedder_ReplacesExistingVectors(t *testing.T) {
	repo := newSeededRepo(t, 1)
	ctx := context.Background()

	ids, err := repo.AllIDs(ctx)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{0, 1, 0}
		}
		return vectors, nil
	}

	var progress bytes.Buffer
	reembedder := NewReembedder(repo, embedder, testConfig(), &progress)
	require.NoError(t, reembedder.Run(ctx))

	vector, err := repo.EmbeddingOf(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, vector)
}

func TestReembedder_EmptyDatabase(t *testing.T) {
	repo := newSeededRepo(t, 0)

	var progress bytes.Buffer
	reembedder := NewReembedder(repo, mock.NewMockEmbedder(), testConfig(), &progress)
	require.NoError(t, reembedder.Run(context.Background()))
	assert.Contains(t, progress.String(), "No movies found")
}

func TestReembedder_EmbeddingFailureAfterRetries(t *testing.T) {
	repo := newSeededRepo(t, 2)

	embedder := mock.NewMockEmbedder()
	wantErr := errors.New("embedding service down")
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, wantErr
	}

	var progress bytes.Buffer
	reembedder := NewReembedder(repo, embedder, testConfig(), &progress)
	err := reembedder.Run(context.Background())
	assert.ErrorIs(t, err, wantErr)
	// One call per attempt; the first batch exhausts its retries and aborts.
	assert.Equal(t, testConfig().MaxRetries, embedder.CallCount())
}
