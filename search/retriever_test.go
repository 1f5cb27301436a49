package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinefind/cinefind/ai/mock"
	"github.com/cinefind/cinefind/core"
	"github.com/cinefind/cinefind/storage"
	badgerstore "github.com/cinefind/cinefind/storage/badger"
)

// testCorpus seeds a small corpus with hand-picked embeddings so similarity
// ordering is predictable.
func testCorpus() []*core.MovieRecord {
	return []*core.MovieRecord{
		{
			Id:        1,
			Title:     "Edge of Tomorrow",
			Overview:  "A soldier relives the same battle against alien invaders.",
			Year:      2014,
			Genres:    []string{"Action", "Science Fiction"},
			Cast:      []string{"Tom Cruise", "Emily Blunt"},
			Directors: []string{"Doug Liman"},
			Companies: []string{"Warner Bros. Pictures"},
			Rating:    7.9,
			Vector:    []float32{1, 0, 0},
		},
		{
			Id:        2,
			Title:     "Top Gun",
			Overview:  "A hotshot pilot competes at an elite flight school.",
			Year:      1986,
			Genres:    []string{"Action"},
			Cast:      []string{"Tom Cruise", "Val Kilmer"},
			Directors: []string{"Tony Scott"},
			Companies: []string{"Paramount Pictures"},
			Rating:    6.9,
			Vector:    []float32{0.6, 0.8, 0},
		},
		{
			Id:        3,
			Title:     "Oppenheimer",
			Overview:  "The story of the physicist behind the atomic bomb.",
			Year:      2023,
			Genres:    []string{"Drama", "History"},
			Cast:      []string{"Cillian Murphy"},
			Directors: []string{"Christopher Nolan"},
			Companies: []string{"Universal Pictures"},
			Rating:    8.1,
			Vector:    []float32{0, 1, 0},
		},
		{
			Id:        4,
			Title:     "Inception",
			Overview:  "A thief steals secrets through dream infiltration.",
			Year:      2010,
			Genres:    []string{"Action", "Science Fiction"},
			Cast:      []string{"Leonardo DiCaprio"},
			Directors: []string{"Christopher Nolan"},
			Companies: []string{"Warner Bros. Pictures"},
			Rating:    8.4,
			Vector:    []float32{0.8, 0.6, 0},
		},
		{
			// No embedding: only reachable through the structured side.
			Id:        5,
			Title:     "Days of Thunder",
			Overview:  "A stock car driver chases a championship.",
			Year:      1990,
			Genres:    []string{"Action"},
			Cast:      []string{"Tom Cruise", "Nicole Kidman"},
			Directors: []string{"Tony Scott"},
			Companies: []string{"Paramount Pictures"},
			Rating:    6.1,
		},
	}
}

func newTestRetriever(t *testing.T, seed bool) (*Retriever, *mock.MockEmbedder) {
	t.Helper()

	repo, index, backend, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	if seed {
		_, err = repo.AddMovies(context.Background(), testCorpus()...)
		require.NoError(t, err)
	}

	embedder := mock.NewMockEmbedder()
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockNarrator())

	retriever, err := NewRetriever(repo, index, provider, WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(retriever.Release)

	return retriever, embedder
}

func fixedVector(v []float32) func(context.Context, string) ([]float32, error) {
	return func(context.Context, string) ([]float32, error) {
		return v, nil
	}
}

func titles(results []*core.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Record.Title
	}
	return out
}

func TestNewRetriever_Validation(t *testing.T) {
	repo, index, backend, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	provider := mock.NewMockProvider()

	_, err = NewRetriever(nil, index, provider)
	assert.ErrorIs(t, err, ErrMovieRepositoryRequired)

	_, err = NewRetriever(repo, nil, provider)
	assert.ErrorIs(t, err, ErrAttributeIndexRequired)

	_, err = NewRetriever(repo, index, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestRetrieve_IndexNotReady(t *testing.T) {
	retriever, _ := newTestRetriever(t, false)

	query := core.ParsedQuery{
		Filters: core.FilterSet{core.FilterPerson: {"Tom Cruise"}},
	}
	_, err := retriever.Retrieve(context.Background(), query, 10)
	assert.ErrorIs(t, err, storage.ErrIndexNotReady)
}

func TestRetrieve_EmptyQuery(t *testing.T) {
	retriever, _ := newTestRetriever(t, true)

	results, err := retriever.Retrieve(context.Background(), core.ParsedQuery{}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieve_PureStructured_RankedByRating(t *testing.T) {
	retriever, _ := newTestRetriever(t, true)

	query := core.ParsedQuery{
		Filters: core.FilterSet{core.FilterPerson: {"Tom Cruise"}},
	}
	results, err := retriever.Retrieve(context.Background(), query, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"Edge of Tomorrow", "Top Gun", "Days of Thunder"}, titles(results))
	for _, r := range results {
		assert.True(t, r.StructuredMatch)
		assert.False(t, r.HasSimilarity)
	}
}

func TestRetrieve_IntersectionAcrossKinds(t *testing.T) {
	retriever, _ := newTestRetriever(t, true)

	query := core.ParsedQuery{
		Filters: core.FilterSet{
			core.FilterPerson: {"Tom Cruise"},
			core.FilterGenre:  {"Science Fiction"},
		},
	}
	results, err := retriever.Retrieve(context.Background(), query, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"Edge of Tomorrow"}, titles(results))
}

func TestRetrieve_UnionWithinKind(t *testing.T) {
	retriever, _ := newTestRetriever(t, true)

	query := core.ParsedQuery{
		Filters: core.FilterSet{
			core.FilterPerson: {"Tom Cruise", "Christopher Nolan"},
		},
	}
	results, err := retriever.Retrieve(context.Background(), query, 10)
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"Edge of Tomorrow", "Top Gun", "Days of Thunder", "Oppenheimer", "Inception"},
		titles(results))
}

func TestRetrieve_YearRange(t *testing.T) {
	retriever, _ := newTestRetriever(t, true)

	query := core.ParsedQuery{
		Filters: core.FilterSet{core.FilterYearRange: {"2010-2020"}},
	}
	results, err := retriever.Retrieve(context.Background(), query, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"Inception", "Edge of Tomorrow"}, titles(results))
}

func TestRetrieve_RatingMin(t *testing.T) {
	retriever, _ := newTestRetriever(t, true)

	query := core.ParsedQuery{
		Filters: core.FilterSet{core.FilterRatingMin: {"8"}},
	}
	results, err := retriever.Retrieve(context.Background(), query, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"Inception", "Oppenheimer"}, titles(results))
}

func TestRetrieve_PureSemantic(t *testing.T) {
	retriever, embedder := newTestRetriever(t, true)
	embedder.EmbedTextFunc = fixedVector([]float32{1, 0, 0})

	query := core.ParsedQuery{Semantic: "soldiers fighting aliens"}
	results, err := retriever.Retrieve(context.Background(), query, 10)
	require.NoError(t, err)

	// Days of Thunder has no embedding and never surfaces semantically;
	// Oppenheimer is orthogonal to the query vector but still a neighbor.
	assert.Equal(t, []string{"Edge of Tomorrow", "Inception", "Top Gun", "Oppenheimer"}, titles(results))
	for _, r := range results {
		assert.False(t, r.StructuredMatch)
		assert.True(t, r.HasSimilarity)
	}
	assert.InDelta(t, 1.0, float64(results[0].Similarity), 0.001)
	assert.InDelta(t, 0.8, float64(results[1].Similarity), 0.001)
	assert.InDelta(t, 0.6, float64(results[2].Similarity), 0.001)
	assert.InDelta(t, 0.0, float64(results[3].Similarity), 0.001)
}

func TestRetrieve_PureSemantic_ReturnsNearestWithoutFloor(t *testing.T) {
	retriever, embedder := newTestRetriever(t, true)
	// Orthogonal to every stored vector: nothing scores above zero.
	embedder.EmbedTextFunc = fixedVector([]float32{0, 0, 1})

	query := core.ParsedQuery{Semantic: "something the corpus knows nothing about"}
	results, err := retriever.Retrieve(context.Background(), query, 3)
	require.NoError(t, err)

	// The K nearest neighbors come back even when every similarity is
	// zero; ties break by ID.
	require.Len(t, results, 3)
	assert.Equal(t, []string{"Edge of Tomorrow", "Top Gun", "Oppenheimer"}, titles(results))
	for _, r := range results {
		assert.InDelta(t, 0.0, float64(r.Similarity), 0.001)
	}
}

func TestRetrieve_MinSimilarityOptIn(t *testing.T) {
	repo, index, backend, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	_, err = repo.AddMovies(context.Background(), testCorpus()...)
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = fixedVector([]float32{1, 0, 0})
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockNarrator())

	retriever, err := NewRetriever(repo, index, provider, WithMinSimilarity(0.7))
	require.NoError(t, err)
	t.Cleanup(retriever.Release)

	query := core.ParsedQuery{Semantic: "soldiers fighting aliens"}
	results, err := retriever.Retrieve(context.Background(), query, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"Edge of Tomorrow", "Inception"}, titles(results))
}

func TestRetrieve_Hybrid_ExcludesUnembeddedCandidates(t *testing.T) {
	retriever, embedder := newTestRetriever(t, true)
	embedder.EmbedTextFunc = fixedVector([]float32{0, 1, 0})

	query := core.ParsedQuery{
		Filters:  core.FilterSet{core.FilterPerson: {"Tom Cruise"}},
		Semantic: "rivalry at flight school",
	}
	results, err := retriever.Retrieve(context.Background(), query, 10)
	require.NoError(t, err)

	// Edge of Tomorrow scores zero against the query vector but remains a
	// hit: it passed the filters. Days of Thunder matched the filters too
	// but has no embedding, so it cannot be ranked and is excluded.
	require.Equal(t, []string{"Top Gun", "Edge of Tomorrow"}, titles(results))

	assert.InDelta(t, 0.8, float64(results[0].Similarity), 0.001)
	assert.InDelta(t, 0.0, float64(results[1].Similarity), 0.001)
	for _, r := range results {
		assert.True(t, r.StructuredMatch)
		assert.True(t, r.HasSimilarity)
	}
}

func TestRetrieve_Hybrid_FallbackOnEmptyStructuredSet(t *testing.T) {
	retriever, embedder := newTestRetriever(t, true)
	embedder.EmbedTextFunc = fixedVector([]float32{1, 0, 0})

	query := core.ParsedQuery{
		Filters:  core.FilterSet{core.FilterPerson: {"Nobody Famous"}},
		Semantic: "soldiers fighting aliens",
	}
	results, err := retriever.Retrieve(context.Background(), query, 10)
	require.NoError(t, err)

	require.NotEmpty(t, results)
	assert.Equal(t, "Edge of Tomorrow", results[0].Record.Title)
	for _, r := range results {
		assert.False(t, r.StructuredMatch)
	}
}

func TestRetrieve_MaxHits(t *testing.T) {
	retriever, _ := newTestRetriever(t, true)

	query := core.ParsedQuery{
		Filters: core.FilterSet{core.FilterPerson: {"Tom Cruise"}},
	}
	results, err := retriever.Retrieve(context.Background(), query, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"Edge of Tomorrow"}, titles(results))
}

func TestRetrieve_DefaultLimit(t *testing.T) {
	repo, index, backend, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	records := make([]*core.MovieRecord, 25)
	for i := range records {
		records[i] = &core.MovieRecord{
			Id:     core.ID(i + 1),
			Title:  fmt.Sprintf("Mission Entry %d", i+1),
			Year:   1996 + i,
			Genres: []string{"Action"},
			Cast:   []string{"Tom Cruise"},
		}
	}
	_, err = repo.AddMovies(context.Background(), records...)
	require.NoError(t, err)

	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), mock.NewMockNarrator())
	retriever, err := NewRetriever(repo, index, provider)
	require.NoError(t, err)
	t.Cleanup(retriever.Release)

	query := core.ParsedQuery{
		Filters: core.FilterSet{core.FilterPerson: {"Tom Cruise"}},
	}
	results, err := retriever.Retrieve(context.Background(), query, 0)
	require.NoError(t, err)

	assert.Len(t, results, 20)
}

func TestRetrieve_Deterministic(t *testing.T) {
	retriever, embedder := newTestRetriever(t, true)
	embedder.EmbedTextFunc = fixedVector([]float32{0.6, 0.8, 0})

	query := core.ParsedQuery{
		Filters:  core.FilterSet{core.FilterPerson: {"Tom Cruise"}},
		Semantic: "fast planes",
	}

	first, err := retriever.Retrieve(context.Background(), query, 10)
	require.NoError(t, err)
	second, err := retriever.Retrieve(context.Background(), query, 10)
	require.NoError(t, err)

	assert.Equal(t, titles(first), titles(second))
}

func TestRetrieve_EmbedderErrorPropagates(t *testing.T) {
	retriever, embedder := newTestRetriever(t, true)
	wantErr := errors.New("embedding service down")
	embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return nil, wantErr
	}

	query := core.ParsedQuery{Semantic: "anything"}
	_, err := retriever.Retrieve(context.Background(), query, 10)
	assert.ErrorIs(t, err, wantErr)
}

func TestRetrieve_MonitorCallbacks(t *testing.T) {
	retriever, embedder := newTestRetriever(t, true)
	embedder.EmbedTextFunc = fixedVector([]float32{1, 0, 0})

	monitor := &recordingMonitor{}
	query := core.ParsedQuery{
		Filters:  core.FilterSet{core.FilterPerson: {"Tom Cruise"}},
		Semantic: "soldiers fighting aliens",
	}
	results, err := retriever.RetrieveWithMonitor(context.Background(), query, 10, monitor)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.NotEmpty(t, monitor.intersection)
	assert.Equal(t, len(results), monitor.hybridHits)
	assert.Len(t, monitor.finished, len(results))
}

// recordingMonitor captures callback activity for assertions.
type recordingMonitor struct {
	noopMonitor
	started      bool
	intersection []core.ID
	hybridHits   int
	finished     []*core.SearchResult
}

func (m *recordingMonitor) Start(_ core.ParsedQuery) { m.started = true }
func (m *recordingMonitor) AfterStructuredIntersection(ids []core.ID) {
	m.intersection = ids
}
func (m *recordingMonitor) HybridHit(_ *core.SearchResult) { m.hybridHits++ }
func (m *recordingMonitor) Finish(results []*core.SearchResult) {
	m.finished = results
}
