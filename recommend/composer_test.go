package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinefind/cinefind/ai/mock"
	"github.com/cinefind/cinefind/core"
)

func testResults() []*core.SearchResult {
	return []*core.SearchResult{
		{
			Record: &core.MovieRecord{
				Id:     1,
				Title:  "Top Gun",
				Year:   1986,
				Genres: []string{"Action"},
				Rating: 6.9,
			},
			Score: 0.9,
		},
		{
			Record: &core.MovieRecord{
				Id:     2,
				Title:  "Edge of Tomorrow",
				Year:   2014,
				Genres: []string{"Action", "Science Fiction"},
				Rating: 7.9,
			},
			Score: 0.8,
		},
	}
}

func newTestComposer(t *testing.T, narrator *mock.MockNarrator, opts ...Option) *Composer {
	t.Helper()
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), narrator)
	composer, err := NewComposer(provider, opts...)
	require.NoError(t, err)
	return composer
}

func TestNewComposer_RequiresProvider(t *testing.T) {
	_, err := NewComposer(nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestCompose_EmptyResultsSkipsNarrator(t *testing.T) {
	narrator := mock.NewMockNarrator()
	composer := newTestComposer(t, narrator)

	recs, err := composer.Compose(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Nil(t, recs)
	assert.Equal(t, 0, narrator.CallCount())
}

func TestCompose_ResolvesNarratedTitles(t *testing.T) {
	narrator := mock.NewMockNarrator()
	narrator.NarrateFunc = func(ctx context.Context, prompt string) (string, error) {
		return `{"recommendations": [{"title": "Top Gun", "reason": "a classic aerial action film"}]}`, nil
	}
	composer := newTestComposer(t, narrator)

	recs, err := composer.Compose(context.Background(), "fighter jet movies", testResults())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Top Gun", recs[0].Title)
	assert.Equal(t, "a classic aerial action film", recs[0].Reason)
	require.NotNil(t, recs[0].Movie)
	assert.Equal(t, core.ID(1), recs[0].Movie.Id)
}

func TestCompose_StripsCodeFences(t *testing.T) {
	narrator := mock.NewMockNarrator()
	narrator.NarrateFunc = func(ctx context.Context, prompt string) (string, error) {
		return "```json\n{\"recommendations\": [{\"title\": \"Edge of Tomorrow\", \"reason\": \"fits\"}]}\n```", nil
	}
	composer := newTestComposer(t, narrator)

	recs, err := composer.Compose(context.Background(), "alien war", testResults())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].Movie)
	assert.Equal(t, core.ID(2), recs[0].Movie.Id)
}

func TestCompose_LooseTitleMatch(t *testing.T) {
	narrator := mock.NewMockNarrator()
	narrator.NarrateFunc = func(ctx context.Context, prompt string) (string, error) {
		return `{"recommendations": [{"title": "Top Gun (1986)", "reason": "decorated title"}]}`, nil
	}
	composer := newTestComposer(t, narrator)

	recs, err := composer.Compose(context.Background(), "jets", testResults())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].Movie)
	assert.Equal(t, "Top Gun", recs[0].Movie.Title)
}

func TestCompose_UnknownTitleKeptWithoutMovie(t *testing.T) {
	narrator := mock.NewMockNarrator()
	narrator.NarrateFunc = func(ctx context.Context, prompt string) (string, error) {
		return `{"recommendations": [{"title": "Hallucinated Film", "reason": "made up"}]}`, nil
	}
	composer := newTestComposer(t, narrator)

	recs, err := composer.Compose(context.Background(), "jets", testResults())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].Movie)
}

func TestCompose_RepairsUnquotedKeys(t *testing.T) {
	narrator := mock.NewMockNarrator()
	narrator.NarrateFunc = func(ctx context.Context, prompt string) (string, error) {
		return `{"recommendations": [{title": "Top Gun", reason": "broken quoting"}]}`, nil
	}
	composer := newTestComposer(t, narrator)

	recs, err := composer.Compose(context.Background(), "jets", testResults())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Top Gun", recs[0].Title)
}

func TestCompose_MalformedResponseAfterRetries(t *testing.T) {
	narrator := mock.NewMockNarrator()
	narrator.NarrateFunc = func(ctx context.Context, prompt string) (string, error) {
		return "this is not json", nil
	}
	composer := newTestComposer(t, narrator)

	_, err := composer.Compose(context.Background(), "jets", testResults())
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Equal(t, maxParseAttempts, narrator.CallCount())
}

func TestCompose_NarratorErrorPropagates(t *testing.T) {
	narrator := mock.NewMockNarrator()
	wantErr := errors.New("model unavailable")
	narrator.NarrateFunc = func(ctx context.Context, prompt string) (string, error) {
		return "", wantErr
	}
	composer := newTestComposer(t, narrator)

	_, err := composer.Compose(context.Background(), "jets", testResults())
	assert.ErrorIs(t, err, wantErr)
}

func TestCompose_TimeoutCancelsNarration(t *testing.T) {
	narrator := mock.NewMockNarrator()
	narrator.NarrateFunc = func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	composer := newTestComposer(t, narrator, WithTimeout(10*time.Millisecond))

	_, err := composer.Compose(context.Background(), "jets", testResults())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCompose_PromptCarriesQueryAndCandidates(t *testing.T) {
	narrator := mock.NewMockNarrator()
	var captured string
	narrator.NarrateFunc = func(ctx context.Context, prompt string) (string, error) {
		captured = prompt
		return `{"recommendations": []}`, nil
	}
	composer := newTestComposer(t, narrator)

	_, err := composer.Compose(context.Background(), "fighter jet movies", testResults())
	require.NoError(t, err)
	assert.Contains(t, captured, `"fighter jet movies"`)
	assert.Contains(t, captured, "Title: Top Gun")
	assert.Contains(t, captured, "Title: Edge of Tomorrow")
	assert.Contains(t, captured, "Genres: Action, Science Fiction")
}
