package search

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/cinefind/cinefind/ai"
	"github.com/cinefind/cinefind/core"
	"github.com/cinefind/cinefind/storage"
)

// defaultMaxHits caps result lists when the caller passes no limit.
const defaultMaxHits = 20

// defaultMinSimilarity is the cutoff for full-corpus semantic search.
// Zero means plain top-K: every embedded movie is a candidate and the
// limit alone bounds the result.
const defaultMinSimilarity = 0

// Retriever executes parsed queries against the attribute index and the
// vector store, combining both into a single ranked result list.
type Retriever struct {
	movieRepository storage.MovieRepository
	attributeIndex  storage.AttributeIndex
	embedder        ai.Embedder
	scoringPool     *ants.Pool
	minSimilarity   float32
	logger          *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithPoolSize sets the worker pool size for concurrent candidate scoring.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(r *Retriever) error {
		if size < 1 {
			size = 1
		}

		if r.scoringPool != nil {
			r.scoringPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		r.scoringPool = pool
		return nil
	}
}

// WithMinSimilarity sets a similarity floor for full-corpus semantic
// search. Default is 0, so semantic search returns the K nearest
// neighbors regardless of how weak the best match is.
func WithMinSimilarity(min float32) Option {
	return func(r *Retriever) error {
		r.minSimilarity = min
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(
	movieRepository storage.MovieRepository,
	attributeIndex storage.AttributeIndex,
	provider ai.AIProvider,
	opts ...Option,
) (*Retriever, error) {
	if movieRepository == nil {
		return nil, ErrMovieRepositoryRequired
	}
	if attributeIndex == nil {
		return nil, ErrAttributeIndexRequired
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

	r := &Retriever{
		movieRepository: movieRepository,
		attributeIndex:  attributeIndex,
		embedder:        provider.Embedder(),
		scoringPool:     pool,
		minSimilarity:   defaultMinSimilarity,
		logger:          slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.Release()
			return nil, err
		}
	}

	return r, nil
}

// Release releases the scoring pool.
// The retriever should not be used after calling Release.
func (r *Retriever) Release() {
	if r.scoringPool != nil {
		r.scoringPool.Release()
	}
}

// Retrieve executes a parsed query.
// Returns up to maxHits results, ranked by the mode's ordering.
func (r *Retriever) Retrieve(ctx context.Context, query core.ParsedQuery, maxHits int) ([]*core.SearchResult, error) {
	return r.RetrieveWithMonitor(ctx, query, maxHits, nil)
}

// RetrieveWithMonitor executes a parsed query with monitoring.
// The monitor receives callbacks at each stage of retrieval.
//
// The query shape selects the mode:
//   - filters only: attribute-index intersection, ranked by rating then
//     recency
//   - semantic only: full-corpus vector search, ranked by similarity
//   - both: the structured candidate set re-ranked by similarity to the
//     semantic text, falling back to full-corpus vector search when the
//     filters match nothing
//
// Returns storage.ErrIndexNotReady when the indexes were never built; an
// empty result list always means "no movie matched".
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query core.ParsedQuery, maxHits int, monitor RetrievalMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if maxHits <= 0 {
		maxHits = defaultMaxHits
	}

	monitor.Start(query)

	ready, err := r.attributeIndex.Ready(ctx)
	if err != nil {
		r.logger.Error("error checking index readiness", "err", err)
		return nil, err
	}
	if !ready {
		return nil, storage.ErrIndexNotReady
	}

	if query.Empty() {
		results := []*core.SearchResult{}
		monitor.Finish(results)
		return results, nil
	}

	// 1. Structured side: intersect the filter lookups.
	var structuredIds []core.ID
	if !query.Filters.Empty() {
		structuredIds = r.structuredCandidates(ctx, query.Filters, monitor)
		monitor.AfterStructuredIntersection(structuredIds)
	}

	if query.PureStructured() {
		return r.finishStructured(ctx, structuredIds, maxHits, monitor)
	}

	// 2. Semantic side: embed the residual text.
	vector, err := r.embedder.EmbedText(ctx, query.Semantic)
	if err != nil {
		r.logger.Error("error generating embedding for query", "semantic", query.Semantic, "err", err)
		return nil, err
	}

	if query.PureSemantic() || len(structuredIds) == 0 {
		if !query.PureSemantic() {
			// Filters matched nothing; the semantic text still can.
			r.logger.Info("structured candidate set empty, falling back to full-corpus semantic search")
			monitor.SemanticFallback()
		}
		return r.finishSemantic(ctx, vector, maxHits, monitor)
	}

	// 3. Hybrid: score the structured candidates against the query vector.
	return r.finishHybrid(ctx, structuredIds, vector, maxHits, monitor)
}

// structuredCandidates resolves a filter set to movie IDs: union within a
// kind, intersection across kinds. Lookup failures are absorbed so a broken
// index entry narrows the result instead of failing the query.
func (r *Retriever) structuredCandidates(ctx context.Context, filters core.FilterSet, monitor RetrievalMonitor) []core.ID {
	var candidates []core.ID
	first := true

	for kind, values := range filters {
		union := make(map[core.ID]bool)
		for _, value := range values {
			ids, err := r.attributeIndex.Lookup(ctx, kind, value)
			if err != nil {
				r.logger.Warn("attribute lookup failed", "kind", kind, "value", value, "err", err)
				continue
			}
			monitor.AfterStructuredLookup(kind, value, ids)
			for _, id := range ids {
				union[id] = true
			}
		}

		if first {
			candidates = make([]core.ID, 0, len(union))
			for id := range union {
				candidates = append(candidates, id)
			}
			first = false
		} else {
			kept := candidates[:0]
			for _, id := range candidates {
				if union[id] {
					kept = append(kept, id)
				}
			}
			candidates = kept
		}

		if len(candidates) == 0 {
			return nil
		}
	}

	slices.Sort(candidates)
	return candidates
}

// finishStructured ranks a structured-only candidate set by rating, then
// release year, then ID.
func (r *Retriever) finishStructured(ctx context.Context, ids []core.ID, maxHits int, monitor RetrievalMonitor) ([]*core.SearchResult, error) {
	if len(ids) == 0 {
		results := []*core.SearchResult{}
		monitor.Finish(results)
		return results, nil
	}

	records, err := r.movieRepository.GetMovies(ctx, ids...)
	if err != nil {
		r.logger.Error("error retrieving movie records", "recordCount", len(ids), "err", err)
		return nil, err
	}
	monitor.AfterRecordRetrieval(records)

	results := make([]*core.SearchResult, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		result := &core.SearchResult{
			Record:          record,
			StructuredMatch: true,
			Score:           float32(record.Rating),
		}
		monitor.StructuredHit(result)
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return structuredLess(results[i].Record, results[j].Record)
	})
	results = truncate(results, maxHits)
	monitor.Finish(results)
	return results, nil
}

// finishSemantic runs full-corpus vector search.
func (r *Retriever) finishSemantic(ctx context.Context, vector []float32, maxHits int, monitor RetrievalMonitor) ([]*core.SearchResult, error) {
	matches, err := r.movieRepository.FindSimilar(ctx, vector, r.minSimilarity, maxHits)
	if err != nil {
		r.logger.Error("error querying for similar movies", "err", err)
		return nil, err
	}

	ids := make([]core.ID, 0, len(matches))
	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, match.Record.Id)
		result := &core.SearchResult{
			Record:        match.Record,
			HasSimilarity: true,
			Similarity:    match.Score,
			Score:         match.Score,
		}
		monitor.SemanticHit(result)
		results = append(results, result)
	}
	monitor.AfterSemanticSearch(ids)
	monitor.Finish(results)
	return results, nil
}

// finishHybrid scores every structured candidate against the query vector
// on the worker pool. A candidate without a precomputed embedding cannot be
// ranked and is excluded from the result.
func (r *Retriever) finishHybrid(ctx context.Context, ids []core.ID, vector []float32, maxHits int, monitor RetrievalMonitor) ([]*core.SearchResult, error) {
	records, err := r.movieRepository.GetMovies(ctx, ids...)
	if err != nil {
		r.logger.Error("error retrieving movie records", "recordCount", len(ids), "err", err)
		return nil, err
	}
	monitor.AfterRecordRetrieval(records)

	scored := make([]*core.SearchResult, len(records))
	var wg sync.WaitGroup
	for i, record := range records {
		if record == nil {
			continue
		}
		if len(record.Vector) == 0 {
			r.logger.Warn("structured candidate has no embedding, excluding from hybrid results",
				"id", record.Id, "title", record.Title)
			continue
		}
		wg.Add(1)
		task := func() {
			defer wg.Done()
			similarity := core.CosineSimilarity(vector, record.Vector)
			scored[i] = &core.SearchResult{
				Record:          record,
				StructuredMatch: true,
				HasSimilarity:   true,
				Similarity:      similarity,
				Score:           similarity,
			}
		}
		if submitErr := r.scoringPool.Submit(task); submitErr != nil {
			// Pool exhausted or released; score on the caller's goroutine.
			task()
		}
	}
	wg.Wait()

	results := make([]*core.SearchResult, 0, len(scored))
	for _, result := range scored {
		if result == nil {
			continue
		}
		monitor.HybridHit(result)
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		return structuredLess(a.Record, b.Record)
	})
	results = truncate(results, maxHits)
	monitor.Finish(results)
	return results, nil
}

// structuredLess is the rank order for structured hits: rating descending,
// release year descending, ID ascending.
func structuredLess(a, b *core.MovieRecord) bool {
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	if a.Year != b.Year {
		return a.Year > b.Year
	}
	return a.Id < b.Id
}

func truncate(results []*core.SearchResult, maxHits int) []*core.SearchResult {
	if len(results) > maxHits {
		return results[:maxHits]
	}
	return results
}
