package query

import (
	"context"
	"log/slog"

	"github.com/poiesic/recollect/core"
)

// Searcher evaluates structured term queries against a conversation's
// semantic indexes.
type Searcher struct {
	combine ScoreCombiner
	logger  *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithScoreCombiner sets how repeated matches of the same semantic ref
// merge their scores. Default is SumScores.
func WithScoreCombiner(combine ScoreCombiner) Option {
	return func(s *Searcher) error {
		if combine == nil {
			return ErrScoreCombinerRequired
		}
		s.combine = combine
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(opts ...Option) (*Searcher, error) {
	s := &Searcher{
		combine: SumScores,
		logger:  slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// SearchConversation runs the query against one conversation and
// returns matched semantic refs grouped by knowledge type, each group
// ranked by score. Knowledge types with no matches are absent from the
// map. A conversation without a term index is not searchable and yields
// a nil map with no error.
func (s *Searcher) SearchConversation(
	ctx context.Context,
	conversation Conversation,
	group core.SearchTermGroup,
	filter *core.WhenFilter,
	options *core.SearchOptions,
) (map[core.KnowledgeType]*core.SearchResult, error) {
	return s.SearchConversationWithMonitor(ctx, conversation, group, filter, options, nil)
}

// SearchConversationWithMonitor runs a search with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchConversationWithMonitor(
	ctx context.Context,
	conversation Conversation,
	group core.SearchTermGroup,
	filter *core.WhenFilter,
	options *core.SearchOptions,
	monitor SearchMonitor,
) (map[core.KnowledgeType]*core.SearchResult, error) {
	if !IsSearchable(conversation) {
		return nil, nil
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if options == nil {
		options = defaultSearchOptions()
	}

	monitor.Start(group)

	compiled, err := compile(group, filter, options)
	if err != nil {
		s.logger.Error("error compiling query", "err", err)
		return nil, err
	}

	secondary := conversation.SecondaryIndexes()
	if !options.ExactMatch && secondary != nil && secondary.RelatedTerms != nil {
		if err := resolveRelatedTerms(ctx, secondary.RelatedTerms, compiled.searchTerms, true); err != nil {
			s.logger.Error("error resolving related terms", "err", err)
			return nil, err
		}
		if err := resolveRelatedTerms(ctx, secondary.RelatedTerms, compiled.scopeTerms, true); err != nil {
			s.logger.Error("error resolving related scope terms", "err", err)
			return nil, err
		}
	}
	monitor.AfterTermResolution(compiled.searchTerms, compiled.scopeTerms)

	ec := &evalContext{
		refs:      conversation.SemanticRefs(),
		termIndex: conversation.TermIndex(),
		combine:   s.combine,
	}
	if secondary != nil {
		if options.UsePropertyIndex {
			ec.properties = secondary.Properties
		}
		if options.UseTimestampIndex {
			ec.timestamps = secondary.Timestamps
		}
	}

	acc, err := compiled.selectExpr.eval(ec)
	if err != nil {
		s.logger.Error("error evaluating query", "err", err)
		return nil, err
	}
	if compiled.knowledgeType != "" {
		acc = acc.filter(func(ordinal int) bool {
			if ordinal < 0 || ordinal >= len(ec.refs) {
				return false
			}
			return ec.refs[ordinal].KnowledgeType() == compiled.knowledgeType
		})
	}
	monitor.AfterMatching(acc.order)

	results := make(map[core.KnowledgeType]*core.SearchResult)
	for knowledgeType, groupAcc := range acc.groupByKnowledgeType(ec.refs) {
		if groupAcc.len() == 0 {
			continue
		}
		results[knowledgeType] = groupAcc.toResult(compiled.maxMatches)
	}
	monitor.Finish(results)

	s.logger.Debug("search complete",
		"matchedRefs", acc.len(),
		"knowledgeTypes", len(results))
	return results, nil
}

func defaultSearchOptions() *core.SearchOptions {
	return &core.SearchOptions{
		UsePropertyIndex:  true,
		UseTimestampIndex: true,
	}
}
