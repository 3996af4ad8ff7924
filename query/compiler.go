package query

import (
	"fmt"

	"github.com/poiesic/recollect/core"
)

// CompiledQuery is an executable query: the select expression tree plus
// the staging applied after matching (knowledge-type filter, group by
// knowledge type, top-N). The two term buckets hold the terms awaiting
// synonym resolution; select terms and predicate terms resolve
// independently because they bind differently during evaluation.
type CompiledQuery struct {
	selectExpr    matchExpr
	knowledgeType core.KnowledgeType
	maxMatches    int

	searchTerms []*core.SearchTerm
	scopeTerms  []*core.SearchTerm
}

type compiler struct {
	searchTerms []*core.SearchTerm
	scopeTerms  []*core.SearchTerm
}

// compile translates a search request into a CompiledQuery. Malformed
// input (unknown boolean op, malformed well-known property name) fails
// fast; an empty group compiles successfully and evaluates to nothing.
func compile(group core.SearchTermGroup, filter *core.WhenFilter, options *core.SearchOptions) (*CompiledQuery, error) {
	if err := core.ValidateSearchTermGroup(&group); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	c := &compiler{}
	selectExpr, err := c.compileGroup(&group)
	if err != nil {
		return nil, err
	}

	if filter != nil {
		var selectors []scopeSelector
		if filter.InDateRange != nil {
			selectors = append(selectors, &dateRangeSelector{dateRange: *filter.InDateRange})
		}
		if len(filter.ScopingTerms) > 0 {
			scopeSel, err := c.compileScopingTerms(filter.ScopingTerms)
			if err != nil {
				return nil, err
			}
			selectors = append(selectors, scopeSel)
		}
		if len(selectors) > 0 {
			selectExpr = &scopedMatchExpr{inner: selectExpr, selectors: selectors}
		}
	}

	compiled := &CompiledQuery{
		selectExpr:  selectExpr,
		searchTerms: c.searchTerms,
		scopeTerms:  c.scopeTerms,
	}
	if filter != nil {
		compiled.knowledgeType = filter.KnowledgeType
	}
	if options != nil {
		compiled.maxMatches = options.MaxMatches
	}
	return compiled, nil
}

// compileGroup builds the boolean select expression. The group's
// elements are copied so resolution and normalization never mutate the
// caller's request.
func (c *compiler) compileGroup(group *core.SearchTermGroup) (matchExpr, error) {
	expr := &booleanMatchExpr{op: group.BooleanOp}
	for _, element := range group.Terms {
		switch el := element.(type) {
		case core.SearchTerm:
			term := el
			core.PrepareSearchTerm(&term)
			c.searchTerms = append(c.searchTerms, &term)
			expr.children = append(expr.children, &termMatchExpr{term: &term})
		case core.PropertySearchTerm:
			propertyExpr, err := c.compileProperty(el, &c.searchTerms)
			if err != nil {
				return nil, err
			}
			expr.children = append(expr.children, propertyExpr)
		default:
			return nil, fmt.Errorf("compile: unknown search element type %T", element)
		}
	}
	return expr, nil
}

// compileProperty copies and registers one property term, with its
// terms going into the given resolution bucket.
func (c *compiler) compileProperty(el core.PropertySearchTerm, bucket *[]*core.SearchTerm) (matchExpr, error) {
	term := el
	if err := core.ValidatePropertySearchTerm(&term); err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	if term.PropertyName != nil {
		name := *term.PropertyName
		core.PrepareSearchTerm(&name)
		term.PropertyName = &name
		*bucket = append(*bucket, term.PropertyName)
	}
	core.PrepareSearchTerm(&term.PropertyValue)
	*bucket = append(*bucket, &term.PropertyValue)
	return &propertyMatchExpr{term: &term}, nil
}

// compileScopingTerms builds the inner-scope selector. Scoping terms
// register in the predicate bucket, separate from select terms.
func (c *compiler) compileScopingTerms(terms []core.PropertySearchTerm) (scopeSelector, error) {
	selector := &propertyScopeSelector{}
	for _, scopingTerm := range terms {
		expr, err := c.compileProperty(scopingTerm, &c.scopeTerms)
		if err != nil {
			return nil, err
		}
		selector.terms = append(selector.terms, expr.(*propertyMatchExpr).term)
	}
	return selector, nil
}
