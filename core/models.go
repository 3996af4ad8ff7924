package core

import "time"

// KnowledgeType categorizes a piece of extracted knowledge.
type KnowledgeType string

const (
	// KnowledgeEntity is a concrete or abstract entity (person, place, thing).
	KnowledgeEntity KnowledgeType = "entity"
	// KnowledgeAction is a verb phrase connecting entities.
	KnowledgeAction KnowledgeType = "action"
	// KnowledgeTopic is a conversational topic.
	KnowledgeTopic KnowledgeType = "topic"
	// KnowledgeTag is a caller-supplied label on a text range.
	KnowledgeTag KnowledgeType = "tag"
)

// TextLocation identifies a chunk of text within a conversation:
// the ordinal of the message and the ordinal of the chunk inside it.
type TextLocation struct {
	MessageOrdinal int
	ChunkOrdinal   int
}

// Compare orders locations by message ordinal, then chunk ordinal.
// Returns a negative value if l precedes o, zero if equal, positive otherwise.
func (l TextLocation) Compare(o TextLocation) int {
	if l.MessageOrdinal != o.MessageOrdinal {
		return l.MessageOrdinal - o.MessageOrdinal
	}
	return l.ChunkOrdinal - o.ChunkOrdinal
}

// TextRange is a half-open range of text locations.
// A nil End means the range covers only the message of Start.
type TextRange struct {
	Start TextLocation
	End   *TextLocation
}

// Contains reports whether the location falls inside the range.
func (r TextRange) Contains(loc TextLocation) bool {
	if r.Start.Compare(loc) > 0 {
		return false
	}
	if r.End == nil {
		return loc.MessageOrdinal == r.Start.MessageOrdinal
	}
	return loc.Compare(*r.End) < 0
}

// ScoredTextLocation pairs a text location with a similarity score.
type ScoredTextLocation struct {
	Score        float32
	TextLocation TextLocation
}

// ScoredSemanticRef is a reference into a conversation's semantic-ref
// store together with an accumulated match score.
type ScoredSemanticRef struct {
	SemanticRefOrdinal int
	Score              float32
}

// DateRange is a half-open time interval. A zero End leaves the range
// open on the right.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (d DateRange) Contains(t time.Time) bool {
	if t.Before(d.Start) {
		return false
	}
	return d.End.IsZero() || t.Before(d.End)
}

// Message is one turn of a conversation, split into text chunks.
type Message struct {
	Chunks    []string
	Timestamp time.Time
	Tags      []string
}

// Knowledge is extracted knowledge attached to a text range.
// Implementations are Entity, Action, Topic and Tag.
type Knowledge interface {
	KnowledgeType() KnowledgeType
}

// Facet is a named attribute of an entity, e.g. ("color", "red").
type Facet struct {
	Name  string
	Value string
}

// Entity is a named entity with zero or more type labels and facets.
type Entity struct {
	Name   string
	Types  []string
	Facets []Facet
}

// KnowledgeType implements Knowledge.
func (Entity) KnowledgeType() KnowledgeType { return KnowledgeEntity }

// Action connects a subject to an object through one or more verbs.
type Action struct {
	Verbs          []string
	Subject        string
	Object         string
	IndirectObject string
}

// KnowledgeType implements Knowledge.
func (Action) KnowledgeType() KnowledgeType { return KnowledgeAction }

// Topic is a conversational topic.
type Topic struct {
	Text string
}

// KnowledgeType implements Knowledge.
func (Topic) KnowledgeType() KnowledgeType { return KnowledgeTopic }

// Tag is a caller-supplied label.
type Tag struct {
	Text string
}

// KnowledgeType implements Knowledge.
func (Tag) KnowledgeType() KnowledgeType { return KnowledgeTag }

// SemanticRef is an indexed reference to a piece of extracted knowledge
// and the text range it was extracted from.
type SemanticRef struct {
	Ordinal   int
	Range     TextRange
	Knowledge Knowledge
}

// KnowledgeType returns the type of the referenced knowledge.
func (r *SemanticRef) KnowledgeType() KnowledgeType {
	return r.Knowledge.KnowledgeType()
}

// SearchResult holds the matches for one knowledge type: the terms that
// produced matches and the matched refs, highest score first.
type SearchResult struct {
	TermMatches        map[string]bool
	SemanticRefMatches []ScoredSemanticRef
}

// TextToLocationIndexData is the serialized form of a fuzzy location
// index: an ordered list of locations and a parallel list of embedding
// vectors. Both lists must have equal length.
type TextToLocationIndexData struct {
	TextLocations []TextLocation
	Embeddings    [][]float32
}
