package index

import (
	"context"
	"time"

	"github.com/poiesic/recollect/core"
)

// TermToSemanticRefIndex is a conversation's primary index: it maps a
// term to the semantic refs whose indexed terms include it. Lookup is
// case-insensitive.
type TermToSemanticRefIndex interface {
	// AddTerm registers a ref under a term.
	AddTerm(text string, ref core.ScoredSemanticRef)

	// LookupTerm returns the refs registered under the term, in
	// registration order. Returns nil for unknown terms.
	LookupTerm(text string) []core.ScoredSemanticRef

	// Size returns the number of distinct terms.
	Size() int
}

// PropertyToSemanticRefIndex maps (property name, value) pairs to the
// refs whose knowledge carries that property. Keys are matched
// case-insensitively.
type PropertyToSemanticRefIndex interface {
	// AddProperty registers a ref under a property name and value.
	AddProperty(name, value string, ref core.ScoredSemanticRef)

	// LookupProperty returns the refs registered under (name, value).
	LookupProperty(name, value string) []core.ScoredSemanticRef

	// Clear removes all entries.
	Clear()
}

// TimestampToTextRangeIndex orders message text ranges by timestamp so
// date-range scopes resolve without scanning the conversation.
type TimestampToTextRangeIndex interface {
	// AddTimestamp registers the message at the ordinal with its timestamp.
	// Messages with a zero timestamp are not indexed.
	AddTimestamp(messageOrdinal int, timestamp time.Time) bool

	// LookupRange returns the text ranges of messages whose timestamp
	// falls inside the date range, in timestamp order.
	LookupRange(dateRange core.DateRange) []core.TextRange
}

// RelatedTermsIndex resolves a term to its synonyms. Implementations
// may consult explicit aliases, an embedding index, or both.
type RelatedTermsIndex interface {
	// LookupTerm returns terms related to the given text, each weighted
	// by its similarity to the query. Returns nil when no synonyms are
	// known.
	LookupTerm(ctx context.Context, text string) ([]core.Term, error)
}

// SecondaryIndexes aggregates the optional conversation-scoped indexes
// consulted during query evaluation. Any field may be nil; the engine
// degrades to the capabilities that are present.
type SecondaryIndexes struct {
	Properties   PropertyToSemanticRefIndex
	Timestamps   TimestampToTextRangeIndex
	RelatedTerms RelatedTermsIndex
}
