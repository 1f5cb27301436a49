package cinefind

import (
	"context"
	"log/slog"

	"github.com/cinefind/cinefind/core"
	"github.com/cinefind/cinefind/query"
	"github.com/cinefind/cinefind/recommend"
	"github.com/cinefind/cinefind/search"
)

// Engine is the serving path: parse, retrieve, narrate.
type Engine struct {
	parser    *query.Parser
	retriever *search.Retriever
	composer  *recommend.Composer
	narrate   bool
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine) error

// WithNarration enables or disables the recommendation stage.
// Default is enabled.
func WithNarration(enabled bool) EngineOption {
	return func(e *Engine) error {
		e.narrate = enabled
		return nil
	}
}

// WithEngineLogger sets a custom logger.
// Default is slog.Default().
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates the serving pipeline on top of a database.
func (db *Database) NewEngine(opts ...EngineOption) (*Engine, error) {
	vocab := query.NewIndexVocabulary(db.attrIndex)

	parser, err := query.NewParser(vocab)
	if err != nil {
		return nil, err
	}

	retriever, err := search.NewRetriever(db.movieRepo, db.attrIndex, db.provider)
	if err != nil {
		return nil, err
	}

	composer, err := recommend.NewComposer(db.provider)
	if err != nil {
		retriever.Release()
		return nil, err
	}

	e := &Engine{
		parser:    parser,
		retriever: retriever,
		composer:  composer,
		narrate:   true,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			retriever.Release()
			return nil, err
		}
	}

	return e, nil
}

// Release releases the engine's worker pools.
// The engine should not be used after calling Release.
func (e *Engine) Release() {
	e.retriever.Release()
}

// Response is one answered query.
// Recommendations may be empty even with results: narration is
// best-effort and its failures never fail the search.
type Response struct {
	Query           core.ParsedQuery
	Results         []*core.SearchResult
	Recommendations []*recommend.Recommendation
}

// Search answers a free-form query with up to maxHits ranked results and,
// when narration is enabled, LLM-picked recommendations drawn from them.
func (e *Engine) Search(ctx context.Context, rawQuery string, maxHits int) (*Response, error) {
	parsed, err := e.parser.Parse(ctx, rawQuery)
	if err != nil {
		return nil, err
	}

	results, err := e.retriever.Retrieve(ctx, parsed, maxHits)
	if err != nil {
		return nil, err
	}

	response := &Response{
		Query:   parsed,
		Results: results,
	}

	if e.narrate && len(results) > 0 {
		recommendations, err := e.composer.Compose(ctx, rawQuery, results)
		if err != nil {
			e.logger.Warn("recommendation composition failed, returning plain results", "err", err)
		} else {
			response.Recommendations = recommendations
		}
	}

	return response, nil
}
