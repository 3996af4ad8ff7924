package query

import (
	"strings"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/index"
)

// evalContext binds one evaluation to a conversation and the secondary
// indexes the caller enabled. Accumulator state is exclusively owned by
// the call; evaluation is synchronous and holds no locks.
type evalContext struct {
	refs       []core.SemanticRef
	termIndex  index.TermToSemanticRefIndex
	properties index.PropertyToSemanticRefIndex
	timestamps index.TimestampToTextRangeIndex
	combine    ScoreCombiner
	scope      *textRangesInScope
}

// inScope reports whether a ref's text range may contribute matches.
func (ec *evalContext) inScope(r core.TextRange) bool {
	return ec.scope == nil || ec.scope.isInScope(r)
}

// textRangeCollection is one scope component: a set of eligible text
// ranges produced by a single selector.
type textRangeCollection struct {
	ranges []core.TextRange
}

func (c *textRangeCollection) contains(loc core.TextLocation) bool {
	for _, r := range c.ranges {
		if r.Contains(loc) {
			return true
		}
	}
	return false
}

// textRangesInScope intersects the collections produced by all scope
// selectors: a range is in scope only if every collection covers its
// start.
type textRangesInScope struct {
	collections []*textRangeCollection
}

func (s *textRangesInScope) addCollection(c *textRangeCollection) {
	s.collections = append(s.collections, c)
}

func (s *textRangesInScope) isInScope(r core.TextRange) bool {
	for _, c := range s.collections {
		if !c.contains(r.Start) {
			return false
		}
	}
	return true
}

// matchExpr is one node of the compiled query tree. The node kinds form
// a small closed set; each evaluates to an accumulator of scored refs.
type matchExpr interface {
	eval(ec *evalContext) (*refAccumulator, error)
}

// termMatchExpr matches refs whose indexed terms intersect the search
// term and its synonyms.
type termMatchExpr struct {
	term *core.SearchTerm
}

func (e *termMatchExpr) eval(ec *evalContext) (*refAccumulator, error) {
	acc := newRefAccumulator(ec.combine)
	matchTerm(ec, acc, e.term.Term)

	// A ref reachable through several synonyms keeps only its strongest
	// related contribution, so synonym fan-out cannot inflate scores.
	if len(e.term.RelatedTerms) > 0 {
		related := newRefAccumulator(MaxScore)
		for _, rt := range e.term.RelatedTerms {
			matchTerm(ec, related, rt)
		}
		acc.union(related)
	}
	return acc, nil
}

func matchTerm(ec *evalContext, acc *refAccumulator, term core.Term) {
	for _, ref := range ec.termIndex.LookupTerm(term.Text) {
		ordinal := ref.SemanticRefOrdinal
		if ordinal < 0 || ordinal >= len(ec.refs) {
			continue
		}
		if !ec.inScope(ec.refs[ordinal].Range) {
			continue
		}
		acc.add(ordinal, term.Weight*ref.Score)
		acc.addTermMatch(ordinal, term.Text)
	}
}

// propertyMatchExpr matches refs whose named property equals the target
// value. When the property name is itself a search term, its synonyms
// are candidate property keys too.
type propertyMatchExpr struct {
	term *core.PropertySearchTerm
}

func (e *propertyMatchExpr) eval(ec *evalContext) (*refAccumulator, error) {
	acc := newRefAccumulator(ec.combine)

	names := e.propertyNames()
	values := append([]core.Term{e.term.PropertyValue.Term}, e.term.PropertyValue.RelatedTerms...)
	for _, name := range names {
		for _, value := range values {
			e.matchProperty(ec, acc, name, value)
		}
	}
	return acc, nil
}

func (e *propertyMatchExpr) propertyNames() []string {
	if e.term.KnownProperty != "" {
		return []string{string(e.term.KnownProperty)}
	}
	names := []string{e.term.PropertyName.Term.Text}
	for _, rt := range e.term.PropertyName.RelatedTerms {
		names = append(names, rt.Text)
	}
	return names
}

func (e *propertyMatchExpr) matchProperty(ec *evalContext, acc *refAccumulator, name string, value core.Term) {
	if ec.properties != nil {
		for _, ref := range ec.properties.LookupProperty(name, value.Text) {
			ordinal := ref.SemanticRefOrdinal
			if ordinal < 0 || ordinal >= len(ec.refs) {
				continue
			}
			if !ec.inScope(ec.refs[ordinal].Range) {
				continue
			}
			acc.add(ordinal, value.Weight*ref.Score)
			acc.addTermMatch(ordinal, value.Text)
		}
		return
	}

	// No property index configured: scan the semantic refs directly.
	for i := range ec.refs {
		ref := &ec.refs[i]
		if ref.Ordinal < 0 || ref.Ordinal >= len(ec.refs) {
			continue
		}
		if !knowledgeHasProperty(ref.Knowledge, name, value.Text) {
			continue
		}
		if !ec.inScope(ref.Range) {
			continue
		}
		acc.add(ref.Ordinal, value.Weight)
		acc.addTermMatch(ref.Ordinal, value.Text)
	}
}

// knowledgeHasProperty checks a knowledge value for a property without
// an index. Non-well-known names address entity facets by facet name.
func knowledgeHasProperty(k core.Knowledge, name, value string) bool {
	switch knowledge := k.(type) {
	case core.Entity:
		switch core.PropertyName(name) {
		case core.PropertyEntityName:
			return strings.EqualFold(knowledge.Name, value)
		case core.PropertyEntityType:
			return containsFold(knowledge.Types, value)
		case core.PropertyFacetName:
			for _, facet := range knowledge.Facets {
				if strings.EqualFold(facet.Name, value) {
					return true
				}
			}
		case core.PropertyFacetValue:
			for _, facet := range knowledge.Facets {
				if strings.EqualFold(facet.Value, value) {
					return true
				}
			}
		default:
			for _, facet := range knowledge.Facets {
				if strings.EqualFold(facet.Name, name) && strings.EqualFold(facet.Value, value) {
					return true
				}
			}
		}
	case core.Action:
		switch core.PropertyName(name) {
		case core.PropertyVerb:
			return containsFold(knowledge.Verbs, value)
		case core.PropertySubject:
			return strings.EqualFold(knowledge.Subject, value)
		case core.PropertyObject:
			return strings.EqualFold(knowledge.Object, value)
		case core.PropertyIndirectObject:
			return strings.EqualFold(knowledge.IndirectObject, value)
		}
	case core.Tag:
		return core.PropertyName(name) == core.PropertyTag && strings.EqualFold(knowledge.Text, value)
	}
	return false
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

// booleanMatchExpr combines child matches with AND or OR. AND keeps
// only refs matched by every child; OR keeps refs matched by any.
// Scores accumulate across matching children in both cases. No children
// means no matches.
type booleanMatchExpr struct {
	op       core.BooleanOp
	children []matchExpr
}

func (e *booleanMatchExpr) eval(ec *evalContext) (*refAccumulator, error) {
	if len(e.children) == 0 {
		return newRefAccumulator(ec.combine), nil
	}

	results := make([]*refAccumulator, 0, len(e.children))
	for _, child := range e.children {
		acc, err := child.eval(ec)
		if err != nil {
			return nil, err
		}
		results = append(results, acc)
	}

	if e.op == core.BooleanAnd {
		return intersect(results, ec.combine), nil
	}
	merged := results[0]
	for _, acc := range results[1:] {
		merged.union(acc)
	}
	return merged, nil
}

// scopedMatchExpr restricts its inner expression to the text ranges the
// selectors produce, computed before matching runs. A selector that
// yields no collection (capability absent) places no restriction.
type scopedMatchExpr struct {
	inner     matchExpr
	selectors []scopeSelector
}

func (e *scopedMatchExpr) eval(ec *evalContext) (*refAccumulator, error) {
	scope := &textRangesInScope{}
	for _, selector := range e.selectors {
		collection, err := selector.eval(ec)
		if err != nil {
			return nil, err
		}
		if collection != nil {
			scope.addCollection(collection)
		}
	}
	if len(scope.collections) == 0 {
		return e.inner.eval(ec)
	}

	previous := ec.scope
	ec.scope = scope
	defer func() { ec.scope = previous }()
	return e.inner.eval(ec)
}

// scopeSelector computes one set of eligible text ranges. Returning a
// nil collection means the selector cannot run (its capability is
// absent) and places no restriction.
type scopeSelector interface {
	eval(ec *evalContext) (*textRangeCollection, error)
}

// dateRangeSelector scopes evaluation to messages inside a date range,
// via the timestamp index.
type dateRangeSelector struct {
	dateRange core.DateRange
}

func (s *dateRangeSelector) eval(ec *evalContext) (*textRangeCollection, error) {
	if ec.timestamps == nil {
		return nil, nil
	}
	return &textRangeCollection{ranges: ec.timestamps.LookupRange(s.dateRange)}, nil
}

// propertyScopeSelector scopes evaluation to the text ranges of refs
// matching any of the scoping property terms.
type propertyScopeSelector struct {
	terms []*core.PropertySearchTerm
}

func (s *propertyScopeSelector) eval(ec *evalContext) (*textRangeCollection, error) {
	collection := &textRangeCollection{}
	for _, term := range s.terms {
		expr := &propertyMatchExpr{term: term}
		acc, err := expr.eval(ec)
		if err != nil {
			return nil, err
		}
		for _, ordinal := range acc.order {
			collection.ranges = append(collection.ranges, ec.refs[ordinal].Range)
		}
	}
	return collection, nil
}
