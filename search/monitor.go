package search

import "github.com/cinefind/cinefind/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during retrieval.
type RetrievalMonitor interface {
	Start(query core.ParsedQuery)
	AfterStructuredLookup(kind core.FilterKind, value string, ids []core.ID)
	AfterStructuredIntersection(ids []core.ID)
	SemanticFallback()
	AfterSemanticSearch(ids []core.ID)
	AfterRecordRetrieval(records []*core.MovieRecord)
	StructuredHit(result *core.SearchResult)
	SemanticHit(result *core.SearchResult)
	HybridHit(result *core.SearchResult)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.ParsedQuery)                                       {}
func (n *noopMonitor) AfterStructuredLookup(_ core.FilterKind, _ string, _ []core.ID) {}
func (n *noopMonitor) AfterStructuredIntersection(_ []core.ID)                        {}
func (n *noopMonitor) SemanticFallback()                                              {}
func (n *noopMonitor) AfterSemanticSearch(_ []core.ID)                                {}
func (n *noopMonitor) AfterRecordRetrieval(_ []*core.MovieRecord)                     {}
func (n *noopMonitor) StructuredHit(_ *core.SearchResult)                             {}
func (n *noopMonitor) SemanticHit(_ *core.SearchResult)                               {}
func (n *noopMonitor) HybridHit(_ *core.SearchResult)                                 {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)                                  {}
