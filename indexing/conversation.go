package indexing

import (
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/index"
	"github.com/poiesic/recollect/query"
	"github.com/poiesic/recollect/textindex"
)

// IndexedConversation is a fully indexed conversation: messages,
// semantic refs, the primary term index, secondary indexes and the
// fuzzy location index.
type IndexedConversation struct {
	name      string
	messages  []core.Message
	refs      []core.SemanticRef
	terms     *index.TermIndex
	secondary *index.SecondaryIndexes
	locations *textindex.TextToLocationIndex
}

var _ query.Conversation = (*IndexedConversation)(nil)

// Name returns the conversation name.
func (c *IndexedConversation) Name() string { return c.name }

// Messages returns the conversation's messages in order.
func (c *IndexedConversation) Messages() []core.Message { return c.messages }

// SemanticRefs returns the semantic-ref store, indexed by ordinal.
func (c *IndexedConversation) SemanticRefs() []core.SemanticRef { return c.refs }

// TermIndex returns the primary term index.
func (c *IndexedConversation) TermIndex() index.TermToSemanticRefIndex {
	if c.terms == nil {
		return nil
	}
	return c.terms
}

// SecondaryIndexes returns the secondary indexes.
func (c *IndexedConversation) SecondaryIndexes() *index.SecondaryIndexes {
	return c.secondary
}

// LocationIndex returns the fuzzy text-to-location index.
func (c *IndexedConversation) LocationIndex() *textindex.TextToLocationIndex {
	return c.locations
}

// Aliases returns the conversation's explicit synonym table. Entries
// added here take precedence over fuzzy matches during searches.
func (c *IndexedConversation) Aliases() *index.TermAliases {
	if c.secondary == nil {
		return nil
	}
	if lookup, ok := c.secondary.RelatedTerms.(*index.RelatedTermsLookup); ok {
		return lookup.Aliases
	}
	return nil
}
