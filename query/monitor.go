package query

import "github.com/poiesic/recollect/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(group core.SearchTermGroup)
	AfterTermResolution(searchTerms, scopeTerms []*core.SearchTerm)
	AfterMatching(matchedOrdinals []int)
	Finish(results map[core.KnowledgeType]*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.SearchTermGroup)                        {}
func (n *noopMonitor) AfterTermResolution(_, _ []*core.SearchTerm)         {}
func (n *noopMonitor) AfterMatching(_ []int)                               {}
func (n *noopMonitor) Finish(_ map[core.KnowledgeType]*core.SearchResult)  {}
