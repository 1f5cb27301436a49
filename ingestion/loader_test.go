package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinefind/cinefind/ai/mock"
	"github.com/cinefind/cinefind/core"
	"github.com/cinefind/cinefind/storage"
	badgerstore "github.com/cinefind/cinefind/storage/badger"
)

const testDump = `[
  {
    "title": "Edge of Tomorrow",
    "genres": ["Action", "Science Fiction"],
    "release_date": "2014-05-27",
    "rating": 7.9,
    "overview": "A soldier relives the same battle against alien invaders.",
    "actors": ["Tom Cruise", "Emily Blunt"],
    "director": "Doug Liman",
    "runtime": 113,
    "production_companies": ["Warner Bros. Pictures"],
    "popularity": 60.5
  },
  {
    "title": "Top Gun",
    "genres": ["Action"],
    "release_date": "1986-05-16",
    "rating": "6.9",
    "overview": "No description available.",
    "actors": ["Tom Cruise", "Val Kilmer"],
    "director": null,
    "runtime": "N/A",
    "production_companies": ["Paramount Pictures"],
    "popularity": "N/A"
  },
  {
    "title": "N/A",
    "genres": [],
    "release_date": "N/A",
    "rating": "N/A",
    "overview": "An entry the extractor failed to resolve.",
    "actors": [],
    "director": "N/A",
    "runtime": "N/A",
    "production_companies": [],
    "popularity": "N/A"
  }
]`

func newTestLoader(t *testing.T, embedder *mock.MockEmbedder) (*Loader, storage.MovieRepository, storage.AttributeIndex) {
	t.Helper()

	repo, index, backend, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockNarrator())
	loader, err := NewLoader(repo, provider, WithPoolSize(2), WithBatchSize(2))
	require.NoError(t, err)
	t.Cleanup(loader.Release)

	return loader, repo, index
}

func writeDump(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movies.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestNewLoader_Validation(t *testing.T) {
	repo, _, backend, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	provider := mock.NewMockProvider()

	_, err = NewLoader(nil, provider)
	assert.ErrorIs(t, err, ErrMovieRepositoryRequired)

	_, err = NewLoader(repo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestLoadFile(t *testing.T) {
	loader, repo, index := newTestLoader(t, mock.NewMockEmbedder())
	ctx := context.Background()

	count, err := loader.LoadFile(ctx, writeDump(t, testDump))
	require.NoError(t, err)
	// The "N/A" titled entry is invalid and skipped.
	assert.Equal(t, 2, count)

	ready, err := index.Ready(ctx)
	require.NoError(t, err)
	assert.True(t, ready)

	ids, err := index.Lookup(ctx, core.FilterPerson, "Tom Cruise")
	require.NoError(t, err)
	require.Len(t, ids, 2)

	records, err := repo.GetMovies(ctx, ids...)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, record := range records {
		assert.NotEmpty(t, record.Vector, "movie %q should be embedded", record.Title)
	}
}

func TestLoadFile_ToleratesSloppyTypes(t *testing.T) {
	loader, repo, index := newTestLoader(t, mock.NewMockEmbedder())
	ctx := context.Background()

	_, err := loader.LoadFile(ctx, writeDump(t, testDump))
	require.NoError(t, err)

	ids, err := index.Lookup(ctx, core.FilterYear, "1986")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	record, err := repo.GetMovie(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Top Gun", record.Title)
	assert.Equal(t, 1986, record.Year)
	assert.InDelta(t, 6.9, record.Rating, 0.001) // string-typed rating in the dump
	assert.Zero(t, record.Runtime)               // "N/A"
	assert.Empty(t, record.Directors)            // null
	assert.Empty(t, record.Overview)             // extractor placeholder text
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	loader, _, _ := newTestLoader(t, mock.NewMockEmbedder())

	_, err := loader.LoadFile(context.Background(), writeDump(t, "{not json"))
	assert.ErrorIs(t, err, ErrInvalidDump)
}

func TestLoadFile_MissingFile(t *testing.T) {
	loader, _, _ := newTestLoader(t, mock.NewMockEmbedder())

	_, err := loader.LoadFile(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadMovies_EmbeddingFailureStoresWithoutVectors(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}
	loader, repo, index := newTestLoader(t, embedder)
	ctx := context.Background()

	count, err := loader.LoadMovies(ctx, []*core.MovieRecord{
		{Title: "Top Gun", Year: 1986, Genres: []string{"Action"}, Rating: 6.9},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Still reachable through the structured side.
	ids, err := index.Lookup(ctx, core.FilterGenre, "Action")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	_, err = repo.EmbeddingOf(ctx, ids[0])
	assert.ErrorIs(t, err, storage.ErrNoEmbedding)
}

func TestEmbeddingText(t *testing.T) {
	record := &core.MovieRecord{
		Title:      "Edge of Tomorrow",
		Overview:   "A soldier relives the same battle.",
		Year:       2014,
		Genres:     []string{"Action", "Science Fiction"},
		Cast:       []string{"Tom Cruise", "Emily Blunt"},
		Directors:  []string{"Doug Liman"},
		Companies:  []string{"Warner Bros. Pictures"},
		Rating:     7.9,
		Popularity: 60.5,
		Runtime:    113,
	}

	text := EmbeddingText(record)
	assert.Contains(t, text, "Title: Edge of Tomorrow")
	assert.Contains(t, text, "Genres: Action, Science Fiction")
	assert.Contains(t, text, "Release Year: 2014")
	assert.Contains(t, text, "Rating: 7.9")
	assert.Contains(t, text, "Director: Doug Liman")
	assert.Contains(t, text, "Actors: Tom Cruise, Emily Blunt")
	assert.Contains(t, text, "Production Companies: Warner Bros. Pictures")
	assert.Contains(t, text, "Runtime: 113")
}
