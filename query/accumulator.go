package query

import (
	"sort"

	"github.com/poiesic/recollect/core"
)

// ScoreCombiner folds a new match contribution into a ref's accumulated
// score. The combiner is the scoring policy for AND/OR accumulation;
// SumScores is the default.
type ScoreCombiner func(existing, incoming float32) float32

// SumScores accumulates contributions additively.
func SumScores(existing, incoming float32) float32 {
	return existing + incoming
}

// MaxScore keeps only the strongest contribution.
func MaxScore(existing, incoming float32) float32 {
	if incoming > existing {
		return incoming
	}
	return existing
}

// refAccumulator collects scored semantic-ref matches during
// evaluation. Insertion order is preserved so ties break
// deterministically by first match.
type refAccumulator struct {
	combine ScoreCombiner
	scores  map[int]float32
	order   []int
	// refTerms records, per ref, the term texts that contributed a
	// match. Partitioning by knowledge type reads it so each partition
	// reports only terms that matched its own refs.
	refTerms map[int]map[string]bool
}

func newRefAccumulator(combine ScoreCombiner) *refAccumulator {
	return &refAccumulator{
		combine:  combine,
		scores:   make(map[int]float32),
		refTerms: make(map[int]map[string]bool),
	}
}

// add folds a contribution for the ref into the accumulator.
func (a *refAccumulator) add(ordinal int, score float32) {
	if existing, ok := a.scores[ordinal]; ok {
		a.scores[ordinal] = a.combine(existing, score)
		return
	}
	a.scores[ordinal] = score
	a.order = append(a.order, ordinal)
}

// addTermMatch records that text produced a match for the ref.
func (a *refAccumulator) addTermMatch(ordinal int, text string) {
	terms, ok := a.refTerms[ordinal]
	if !ok {
		terms = make(map[string]bool)
		a.refTerms[ordinal] = terms
	}
	terms[text] = true
}

// mergeRefTerms folds another ref's matched terms into ordinal's set.
func (a *refAccumulator) mergeRefTerms(ordinal int, terms map[string]bool) {
	for text := range terms {
		a.addTermMatch(ordinal, text)
	}
}

// termMatches collects the matched term texts across all refs.
func (a *refAccumulator) termMatches() map[string]bool {
	matches := make(map[string]bool)
	for _, terms := range a.refTerms {
		for text := range terms {
			matches[text] = true
		}
	}
	return matches
}

func (a *refAccumulator) len() int {
	return len(a.order)
}

// union merges other into a: refs from either side survive, overlapping
// scores are combined, and each ref keeps the terms that matched it.
func (a *refAccumulator) union(other *refAccumulator) {
	for _, ordinal := range other.order {
		a.add(ordinal, other.scores[ordinal])
		a.mergeRefTerms(ordinal, other.refTerms[ordinal])
	}
}

// intersect keeps only refs present in every accumulator, combining
// their scores. Order follows the first accumulator. A surviving ref
// keeps the terms that matched it in every child.
func intersect(accumulators []*refAccumulator, combine ScoreCombiner) *refAccumulator {
	result := newRefAccumulator(combine)
	if len(accumulators) == 0 {
		return result
	}

	first := accumulators[0]
	for _, ordinal := range first.order {
		score := first.scores[ordinal]
		inAll := true
		for _, other := range accumulators[1:] {
			otherScore, ok := other.scores[ordinal]
			if !ok {
				inAll = false
				break
			}
			score = combine(score, otherScore)
		}
		if inAll {
			result.add(ordinal, score)
			for _, acc := range accumulators {
				result.mergeRefTerms(ordinal, acc.refTerms[ordinal])
			}
		}
	}
	return result
}

// filter returns a new accumulator keeping only refs the predicate
// accepts, preserving order and scores.
func (a *refAccumulator) filter(keep func(ordinal int) bool) *refAccumulator {
	result := newRefAccumulator(a.combine)
	for _, ordinal := range a.order {
		if keep(ordinal) {
			result.add(ordinal, a.scores[ordinal])
			result.mergeRefTerms(ordinal, a.refTerms[ordinal])
		}
	}
	return result
}

// groupByKnowledgeType partitions the matches into one accumulator per
// knowledge type. Empty partitions do not appear.
func (a *refAccumulator) groupByKnowledgeType(refs []core.SemanticRef) map[core.KnowledgeType]*refAccumulator {
	groups := make(map[core.KnowledgeType]*refAccumulator)
	for _, ordinal := range a.order {
		if ordinal < 0 || ordinal >= len(refs) {
			continue
		}
		knowledgeType := refs[ordinal].KnowledgeType()
		group, ok := groups[knowledgeType]
		if !ok {
			group = newRefAccumulator(a.combine)
			groups[knowledgeType] = group
		}
		group.add(ordinal, a.scores[ordinal])
		group.mergeRefTerms(ordinal, a.refTerms[ordinal])
	}
	return groups
}

// toResult converts the accumulator into a SearchResult with the top
// maxMatches refs by score (all of them when maxMatches <= 0). Ties
// keep accumulation order.
func (a *refAccumulator) toResult(maxMatches int) *core.SearchResult {
	matches := make([]core.ScoredSemanticRef, 0, len(a.order))
	for _, ordinal := range a.order {
		matches = append(matches, core.ScoredSemanticRef{
			SemanticRefOrdinal: ordinal,
			Score:              a.scores[ordinal],
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if maxMatches > 0 && len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return &core.SearchResult{
		TermMatches:        a.termMatches(),
		SemanticRefMatches: matches,
	}
}
