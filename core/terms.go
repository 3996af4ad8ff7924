package core

import "strings"

const (
	// DefaultMatchWeight is assigned to terms that carry no weight.
	DefaultMatchWeight float32 = 100

	// RelatedIsExactThreshold is the weight at or above which a related
	// term is considered an exact synonym. Such terms are promoted to
	// DefaultMatchWeight so a near-exact synonym is not down-weighted
	// relative to the primary term.
	RelatedIsExactThreshold float32 = 0.95
)

// Term is a searchable text token with a match-confidence weight.
// A zero Weight means "unset"; PrepareTerm assigns the default.
type Term struct {
	Text   string
	Weight float32
}

// SearchTerm is one searchable concept plus its synonym expansions.
type SearchTerm struct {
	Term         Term
	RelatedTerms []Term
}

// BooleanOp combines the elements of a SearchTermGroup.
type BooleanOp string

const (
	// BooleanAnd requires every element to match.
	BooleanAnd BooleanOp = "and"
	// BooleanOr requires any element to match.
	BooleanOr BooleanOp = "or"
)

// SearchElement is an element of a SearchTermGroup: either a plain
// SearchTerm or a PropertySearchTerm.
type SearchElement interface {
	searchElement()
}

func (SearchTerm) searchElement()         {}
func (PropertySearchTerm) searchElement() {}

// PropertyName is a well-known property of extracted knowledge.
type PropertyName string

const (
	PropertyEntityName     PropertyName = "name"
	PropertyEntityType     PropertyName = "type"
	PropertyFacetName      PropertyName = "facet.name"
	PropertyFacetValue     PropertyName = "facet.value"
	PropertyVerb           PropertyName = "verb"
	PropertySubject        PropertyName = "subject"
	PropertyObject         PropertyName = "object"
	PropertyIndirectObject PropertyName = "indirectObject"
	PropertyTag            PropertyName = "tag"
)

// PropertySearchTerm matches a knowledge property against a value.
// Exactly one of KnownProperty or PropertyName is set: KnownProperty
// names a well-known property directly, while PropertyName is itself a
// search term whose synonyms are candidate property keys (used for
// facet matching, e.g. "color" -> "red").
type PropertySearchTerm struct {
	KnownProperty PropertyName
	PropertyName  *SearchTerm
	PropertyValue SearchTerm
}

// SearchTermGroup is a boolean combination of search elements.
// An empty Terms list matches nothing.
type SearchTermGroup struct {
	BooleanOp BooleanOp
	Terms     []SearchElement
}

// WhenFilter narrows a search before term matching runs. InDateRange is
// the outer scope (time), ScopingTerms the inner scope (property
// predicates over text ranges), KnowledgeType a post-match filter.
type WhenFilter struct {
	KnowledgeType KnowledgeType
	InDateRange   *DateRange
	ScopingTerms  []PropertySearchTerm
}

// SearchOptions tunes query compilation and evaluation.
// A zero MaxMatches means unlimited.
type SearchOptions struct {
	MaxMatches        int
	ExactMatch        bool
	UsePropertyIndex  bool
	UseTimestampIndex bool
}

// PrepareTerm normalizes a term in place: text is lower-cased and an
// unset weight becomes DefaultMatchWeight. Idempotent.
func PrepareTerm(t *Term) {
	t.Text = strings.ToLower(t.Text)
	if t.Weight == 0 {
		t.Weight = DefaultMatchWeight
	}
}

// PrepareSearchTerm normalizes a search term and its related terms.
// Related terms whose weight meets RelatedIsExactThreshold are promoted
// to DefaultMatchWeight. Idempotent.
func PrepareSearchTerm(st *SearchTerm) {
	PrepareTerm(&st.Term)
	for i := range st.RelatedTerms {
		rt := &st.RelatedTerms[i]
		PrepareTerm(rt)
		if rt.Weight >= RelatedIsExactThreshold {
			rt.Weight = DefaultMatchWeight
		}
	}
}

// PrepareSearchTerms normalizes every term in the list.
func PrepareSearchTerms(terms []*SearchTerm) {
	for _, st := range terms {
		PrepareSearchTerm(st)
	}
}
