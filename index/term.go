package index

import (
	"strings"

	"github.com/poiesic/recollect/core"
)

// TermIndex is the in-memory TermToSemanticRefIndex implementation.
type TermIndex struct {
	entries map[string][]core.ScoredSemanticRef
}

var _ TermToSemanticRefIndex = (*TermIndex)(nil)

// NewTermIndex creates an empty term index.
func NewTermIndex() *TermIndex {
	return &TermIndex{
		entries: make(map[string][]core.ScoredSemanticRef),
	}
}

// AddTerm registers a ref under a term.
func (x *TermIndex) AddTerm(text string, ref core.ScoredSemanticRef) {
	key := strings.ToLower(text)
	if key == "" {
		return
	}
	x.entries[key] = append(x.entries[key], ref)
}

// LookupTerm returns the refs registered under the term.
func (x *TermIndex) LookupTerm(text string) []core.ScoredSemanticRef {
	return x.entries[strings.ToLower(text)]
}

// Size returns the number of distinct terms.
func (x *TermIndex) Size() int {
	return len(x.entries)
}

// Terms returns the distinct indexed terms in no particular order.
func (x *TermIndex) Terms() []string {
	terms := make([]string, 0, len(x.entries))
	for term := range x.entries {
		terms = append(terms, term)
	}
	return terms
}
