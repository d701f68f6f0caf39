package search

import (
	"github.com/poiesic/newsvec/ai"
	"github.com/poiesic/newsvec/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(articleText, titleText string)
	AfterEmbedding(article, title ai.Embedding)
	AfterVectorSearch(matches []core.SimilarityMatch)
	AfterHybridSearch(rows []core.SearchResultRow)
	Finish(outcome *Outcome)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)                          {}
func (n *noopMonitor) AfterEmbedding(_, _ ai.Embedding)           {}
func (n *noopMonitor) AfterVectorSearch(_ []core.SimilarityMatch) {}
func (n *noopMonitor) AfterHybridSearch(_ []core.SearchResultRow) {}
func (n *noopMonitor) Finish(_ *Outcome)                          {}
