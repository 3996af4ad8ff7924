package query

import (
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/index"
)

// Conversation is the queryable view of one conversation: its messages,
// its semantic-ref store, a primary term index and optional secondary
// indexes. The engine never mutates a conversation.
//
// A conversation without a term index is not search-capable; searches
// against it return a nil result mapping.
type Conversation interface {
	// Messages returns the conversation's messages in order.
	Messages() []core.Message

	// SemanticRefs returns the semantic-ref store, indexed by ordinal.
	SemanticRefs() []core.SemanticRef

	// TermIndex returns the primary term index, or nil when the
	// conversation has not been indexed.
	TermIndex() index.TermToSemanticRefIndex

	// SecondaryIndexes returns the optional secondary indexes, or nil.
	SecondaryIndexes() *index.SecondaryIndexes
}

// IsSearchable reports whether the conversation can answer queries.
func IsSearchable(conversation Conversation) bool {
	return conversation != nil && conversation.TermIndex() != nil
}
