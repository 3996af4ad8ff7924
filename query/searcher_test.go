package query

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/index"
)

// testConversation is an in-memory Conversation for exercising the
// searcher without a storage backend.
type testConversation struct {
	messages  []core.Message
	refs      []core.SemanticRef
	terms     *index.TermIndex
	secondary *index.SecondaryIndexes
}

func (c *testConversation) Messages() []core.Message                  { return c.messages }
func (c *testConversation) SemanticRefs() []core.SemanticRef          { return c.refs }
func (c *testConversation) TermIndex() index.TermToSemanticRefIndex {
	if c.terms == nil {
		return nil
	}
	return c.terms
}
func (c *testConversation) SecondaryIndexes() *index.SecondaryIndexes { return c.secondary }

func messageRange(ordinal int) core.TextRange {
	return core.TextRange{Start: core.TextLocation{MessageOrdinal: ordinal}}
}

// newBakeryConversation builds a three-message conversation with
// entities, actions, topics and a tag spread across the messages.
//
//	msg 0 (Mar 1): Adele visited the bakery
//	msg 1 (Mar 2): Bob baked sourdough bread
//	msg 2 (Mar 5): Adele reviewed the novel
func newBakeryConversation(t *testing.T) *testConversation {
	t.Helper()

	day := func(d int) time.Time {
		return time.Date(2026, time.March, d, 12, 0, 0, 0, time.UTC)
	}
	c := &testConversation{
		messages: []core.Message{
			{Chunks: []string{"Adele visited the bakery"}, Timestamp: day(1)},
			{Chunks: []string{"Bob baked sourdough bread"}, Timestamp: day(2)},
			{Chunks: []string{"Adele reviewed the novel"}, Timestamp: day(5)},
		},
		terms: index.NewTermIndex(),
	}

	knowledge := []struct {
		message   int
		knowledge core.Knowledge
		terms     []string
	}{
		{0, core.Entity{Name: "adele", Types: []string{"person"}}, []string{"adele", "person"}},
		{0, core.Entity{Name: "bakery", Types: []string{"shop"}}, []string{"bakery", "shop"}},
		{0, core.Topic{Text: "pastries"}, []string{"pastries"}},
		{0, core.Tag{Text: "food"}, []string{"food"}},
		{1, core.Entity{Name: "bob", Types: []string{"person"}}, []string{"bob", "person"}},
		{1, core.Topic{Text: "baking"}, []string{"baking"}},
		{1, core.Action{Verbs: []string{"bake"}, Subject: "bob", Object: "bread"}, []string{"bake", "bread"}},
		{2, core.Entity{Name: "novel", Types: []string{"book"}}, []string{"novel"}},
		{2, core.Topic{Text: "literature"}, []string{"literature"}},
	}

	properties := index.NewPropertyIndex()
	for _, k := range knowledge {
		ref := core.SemanticRef{
			Ordinal:   len(c.refs),
			Range:     messageRange(k.message),
			Knowledge: k.knowledge,
		}
		c.refs = append(c.refs, ref)
		for _, term := range k.terms {
			c.terms.AddTerm(term, core.ScoredSemanticRef{SemanticRefOrdinal: ref.Ordinal, Score: 1.0})
		}
		index.AddSemanticRefProperties(properties, &ref, 1.0)
	}

	timestamps := index.NewTimestampIndex()
	for ordinal, message := range c.messages {
		timestamps.AddTimestamp(ordinal, message.Timestamp)
	}

	aliases := index.NewTermAliases()
	aliases.AddAlias("book", core.Term{Text: "novel", Weight: 0.8})

	c.secondary = &index.SecondaryIndexes{
		Properties:   properties,
		Timestamps:   timestamps,
		RelatedTerms: aliases,
	}
	return c
}

func orGroup(texts ...string) core.SearchTermGroup {
	group := core.SearchTermGroup{BooleanOp: core.BooleanOr}
	for _, text := range texts {
		group.Terms = append(group.Terms, core.SearchTerm{Term: core.Term{Text: text}})
	}
	return group
}

func matchedOrdinals(result *core.SearchResult) []int {
	ordinals := make([]int, 0, len(result.SemanticRefMatches))
	for _, match := range result.SemanticRefMatches {
		ordinals = append(ordinals, match.SemanticRefOrdinal)
	}
	return ordinals
}

func TestNewSearcher(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		searcher, err := NewSearcher()
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with score combiner", func(t *testing.T) {
		searcher, err := NewSearcher(WithScoreCombiner(MaxScore))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil score combiner", func(t *testing.T) {
		_, err := NewSearcher(WithScoreCombiner(nil))
		assert.Equal(t, ErrScoreCombinerRequired, err)
	})
}

func TestSearchConversation_NotSearchable(t *testing.T) {
	searcher, err := NewSearcher()
	require.NoError(t, err)
	ctx := context.Background()

	results, err := searcher.SearchConversation(ctx, nil, orGroup("adele"), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, results)

	noIndex := &testConversation{}
	results, err = searcher.SearchConversation(ctx, noIndex, orGroup("adele"), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestSearchConversation_EmptyGroup(t *testing.T) {
	conversation := newBakeryConversation(t)
	searcher, err := NewSearcher()
	require.NoError(t, err)

	results, err := searcher.SearchConversation(context.Background(), conversation,
		core.SearchTermGroup{BooleanOp: core.BooleanOr}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchConversation_OrTerms(t *testing.T) {
	conversation := newBakeryConversation(t)
	searcher, err := NewSearcher()
	require.NoError(t, err)

	results, err := searcher.SearchConversation(context.Background(), conversation,
		orGroup("adele", "bob"), nil, nil)
	require.NoError(t, err)

	require.Contains(t, results, core.KnowledgeEntity)
	entities := results[core.KnowledgeEntity]
	assert.ElementsMatch(t, []int{0, 4}, matchedOrdinals(entities))
	assert.True(t, entities.TermMatches["adele"])
	assert.True(t, entities.TermMatches["bob"])
	assert.NotContains(t, results, core.KnowledgeTopic)
}

func TestSearchConversation_AndTerms(t *testing.T) {
	conversation := newBakeryConversation(t)
	searcher, err := NewSearcher()
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("common ref matches", func(t *testing.T) {
		group := core.SearchTermGroup{
			BooleanOp: core.BooleanAnd,
			Terms: []core.SearchElement{
				core.SearchTerm{Term: core.Term{Text: "adele"}},
				core.SearchTerm{Term: core.Term{Text: "person"}},
			},
		}
		results, err := searcher.SearchConversation(ctx, conversation, group, nil, nil)
		require.NoError(t, err)
		require.Contains(t, results, core.KnowledgeEntity)
		assert.Equal(t, []int{0}, matchedOrdinals(results[core.KnowledgeEntity]))
	})

	t.Run("disjoint refs match nothing", func(t *testing.T) {
		group := core.SearchTermGroup{
			BooleanOp: core.BooleanAnd,
			Terms: []core.SearchElement{
				core.SearchTerm{Term: core.Term{Text: "adele"}},
				core.SearchTerm{Term: core.Term{Text: "bakery"}},
			},
		}
		results, err := searcher.SearchConversation(ctx, conversation, group, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestSearchConversation_ScoreOrdering(t *testing.T) {
	conversation := newBakeryConversation(t)
	searcher, err := NewSearcher()
	require.NoError(t, err)

	// "person" matches refs 0 and 4; "adele" matches ref 0 again, so
	// ref 0 accumulates two contributions and must outrank ref 4.
	results, err := searcher.SearchConversation(context.Background(), conversation,
		orGroup("person", "adele"), nil, nil)
	require.NoError(t, err)

	matches := results[core.KnowledgeEntity].SemanticRefMatches
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].SemanticRefOrdinal)
	assert.Equal(t, 4, matches[1].SemanticRefOrdinal)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestSearchConversation_MaxMatches(t *testing.T) {
	conversation := newBakeryConversation(t)
	searcher, err := NewSearcher()
	require.NoError(t, err)

	options := &core.SearchOptions{MaxMatches: 2}
	results, err := searcher.SearchConversation(context.Background(), conversation,
		orGroup("adele", "bob", "novel"), nil, options)
	require.NoError(t, err)
	assert.Len(t, results[core.KnowledgeEntity].SemanticRefMatches, 2)
}

func TestSearchConversation_KnowledgeTypeFilter(t *testing.T) {
	conversation := newBakeryConversation(t)
	searcher, err := NewSearcher()
	require.NoError(t, err)

	filter := &core.WhenFilter{KnowledgeType: core.KnowledgeTopic}
	results, err := searcher.SearchConversation(context.Background(), conversation,
		orGroup("baking", "bob"), filter, nil)
	require.NoError(t, err)

	require.Len(t, results, 1)
	require.Contains(t, results, core.KnowledgeTopic)
	assert.Equal(t, []int{5}, matchedOrdinals(results[core.KnowledgeTopic]))
}

func TestSearchConversation_RelatedTerms(t *testing.T) {
	conversation := newBakeryConversation(t)
	searcher, err := NewSearcher()
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("alias expands to indexed term", func(t *testing.T) {
		results, err := searcher.SearchConversation(ctx, conversation, orGroup("book"), nil, nil)
		require.NoError(t, err)
		require.Contains(t, results, core.KnowledgeEntity)
		entities := results[core.KnowledgeEntity]
		assert.Equal(t, []int{7}, matchedOrdinals(entities))
		assert.True(t, entities.TermMatches["novel"])
	})

	t.Run("exact match disables expansion", func(t *testing.T) {
		options := &core.SearchOptions{ExactMatch: true}
		results, err := searcher.SearchConversation(ctx, conversation, orGroup("book"), nil, options)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("caller supplied synonyms are kept", func(t *testing.T) {
		group := core.SearchTermGroup{
			BooleanOp: core.BooleanOr,
			Terms: []core.SearchElement{
				core.SearchTerm{
					Term:         core.Term{Text: "paperback"},
					RelatedTerms: []core.Term{{Text: "novel", Weight: 0.5}},
				},
			},
		}
		results, err := searcher.SearchConversation(ctx, conversation, group, nil, nil)
		require.NoError(t, err)
		require.Contains(t, results, core.KnowledgeEntity)
		assert.Equal(t, []int{7}, matchedOrdinals(results[core.KnowledgeEntity]))
	})
}

func TestSearchConversation_PropertyTerms(t *testing.T) {
	conversation := newBakeryConversation(t)
	searcher, err := NewSearcher()
	require.NoError(t, err)
	ctx := context.Background()

	group := core.SearchTermGroup{
		BooleanOp: core.BooleanOr,
		Terms: []core.SearchElement{
			core.PropertySearchTerm{
				KnownProperty: core.PropertyEntityType,
				PropertyValue: core.SearchTerm{Term: core.Term{Text: "book"}},
			},
		},
	}

	t.Run("via property index", func(t *testing.T) {
		results, err := searcher.SearchConversation(ctx, conversation, group, nil, nil)
		require.NoError(t, err)
		require.Contains(t, results, core.KnowledgeEntity)
		assert.Equal(t, []int{7}, matchedOrdinals(results[core.KnowledgeEntity]))
	})

	t.Run("via direct scan", func(t *testing.T) {
		options := &core.SearchOptions{ExactMatch: true}
		results, err := searcher.SearchConversation(ctx, conversation, group, nil, options)
		require.NoError(t, err)
		require.Contains(t, results, core.KnowledgeEntity)
		assert.Equal(t, []int{7}, matchedOrdinals(results[core.KnowledgeEntity]))
	})

	t.Run("action subject", func(t *testing.T) {
		subjectGroup := core.SearchTermGroup{
			BooleanOp: core.BooleanOr,
			Terms: []core.SearchElement{
				core.PropertySearchTerm{
					KnownProperty: core.PropertySubject,
					PropertyValue: core.SearchTerm{Term: core.Term{Text: "bob"}},
				},
			},
		}
		results, err := searcher.SearchConversation(ctx, conversation, subjectGroup, nil, nil)
		require.NoError(t, err)
		require.Contains(t, results, core.KnowledgeAction)
		assert.Equal(t, []int{6}, matchedOrdinals(results[core.KnowledgeAction]))
	})

	t.Run("malformed property name", func(t *testing.T) {
		bad := core.SearchTermGroup{
			BooleanOp: core.BooleanOr,
			Terms: []core.SearchElement{
				core.PropertySearchTerm{
					KnownProperty: "colour",
					PropertyValue: core.SearchTerm{Term: core.Term{Text: "red"}},
				},
			},
		}
		_, err := searcher.SearchConversation(ctx, conversation, bad, nil, nil)
		assert.ErrorIs(t, err, core.ErrInvalidPropertyName)
	})
}

func TestSearchConversation_DateRangeScope(t *testing.T) {
	conversation := newBakeryConversation(t)
	searcher, err := NewSearcher()
	require.NoError(t, err)
	ctx := context.Background()

	filter := &core.WhenFilter{
		InDateRange: &core.DateRange{
			Start: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
		},
	}
	group := orGroup("adele", "novel")

	t.Run("matches outside the range are excluded", func(t *testing.T) {
		results, err := searcher.SearchConversation(ctx, conversation, group, filter, nil)
		require.NoError(t, err)
		require.Contains(t, results, core.KnowledgeEntity)
		assert.Equal(t, []int{0}, matchedOrdinals(results[core.KnowledgeEntity]))
	})

	t.Run("disabled timestamp index skips the scope", func(t *testing.T) {
		options := &core.SearchOptions{UsePropertyIndex: true}
		results, err := searcher.SearchConversation(ctx, conversation, group, filter, options)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{0, 7}, matchedOrdinals(results[core.KnowledgeEntity]))
	})

	t.Run("missing timestamp index skips the scope", func(t *testing.T) {
		stripped := newBakeryConversation(t)
		stripped.secondary.Timestamps = nil
		results, err := searcher.SearchConversation(ctx, stripped, group, filter, nil)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{0, 7}, matchedOrdinals(results[core.KnowledgeEntity]))
	})
}

func TestSearchConversation_PropertyScope(t *testing.T) {
	conversation := newBakeryConversation(t)
	searcher, err := NewSearcher()
	require.NoError(t, err)

	// Restrict the topic search to messages where bob appears.
	filter := &core.WhenFilter{
		ScopingTerms: []core.PropertySearchTerm{
			{
				KnownProperty: core.PropertyEntityName,
				PropertyValue: core.SearchTerm{Term: core.Term{Text: "bob"}},
			},
		},
	}
	results, err := searcher.SearchConversation(context.Background(), conversation,
		orGroup("baking", "pastries"), filter, nil)
	require.NoError(t, err)

	require.Contains(t, results, core.KnowledgeTopic)
	assert.Equal(t, []int{5}, matchedOrdinals(results[core.KnowledgeTopic]))
}

func TestSearchConversation_TermMatchesPerKnowledgeType(t *testing.T) {
	conversation := newBakeryConversation(t)
	searcher, err := NewSearcher()
	require.NoError(t, err)

	// Each partition reports only the terms that matched its own refs.
	results, err := searcher.SearchConversation(context.Background(), conversation,
		orGroup("adele", "baking", "bake"), nil, nil)
	require.NoError(t, err)

	require.Contains(t, results, core.KnowledgeEntity)
	require.Contains(t, results, core.KnowledgeTopic)
	require.Contains(t, results, core.KnowledgeAction)
	assert.Equal(t, map[string]bool{"adele": true}, results[core.KnowledgeEntity].TermMatches)
	assert.Equal(t, map[string]bool{"baking": true}, results[core.KnowledgeTopic].TermMatches)
	assert.Equal(t, map[string]bool{"bake": true}, results[core.KnowledgeAction].TermMatches)
}

func TestSearchConversation_InconsistentRefOrdinal(t *testing.T) {
	// A ref whose declared ordinal does not match its slice position
	// must not be matched, and must never panic downstream stages.
	conversation := &testConversation{
		messages: []core.Message{{Chunks: []string{"a stray record"}}},
		refs: []core.SemanticRef{
			{Ordinal: 42, Range: messageRange(0), Knowledge: core.Entity{Name: "stray", Types: []string{"person"}}},
		},
		terms: index.NewTermIndex(),
	}
	conversation.terms.AddTerm("stray", core.ScoredSemanticRef{SemanticRefOrdinal: 42, Score: 1.0})

	searcher, err := NewSearcher()
	require.NoError(t, err)
	ctx := context.Background()
	filter := &core.WhenFilter{KnowledgeType: core.KnowledgeEntity}

	t.Run("term match", func(t *testing.T) {
		results, err := searcher.SearchConversation(ctx, conversation, orGroup("stray"), filter, nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("direct property scan", func(t *testing.T) {
		group := core.SearchTermGroup{
			BooleanOp: core.BooleanOr,
			Terms: []core.SearchElement{
				core.PropertySearchTerm{
					KnownProperty: core.PropertyEntityType,
					PropertyValue: core.SearchTerm{Term: core.Term{Text: "person"}},
				},
			},
		}
		options := &core.SearchOptions{ExactMatch: true}
		results, err := searcher.SearchConversation(ctx, conversation, group, filter, options)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

// recordingMonitor captures the callback sequence for assertions.
type recordingMonitor struct {
	stages []string
}

func (m *recordingMonitor) Start(_ core.SearchTermGroup) { m.stages = append(m.stages, "start") }
func (m *recordingMonitor) AfterTermResolution(_, _ []*core.SearchTerm) {
	m.stages = append(m.stages, "resolve")
}
func (m *recordingMonitor) AfterMatching(_ []int) { m.stages = append(m.stages, "match") }
func (m *recordingMonitor) Finish(_ map[core.KnowledgeType]*core.SearchResult) {
	m.stages = append(m.stages, "finish")
}

func TestSearchConversationWithMonitor(t *testing.T) {
	conversation := newBakeryConversation(t)
	searcher, err := NewSearcher()
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	_, err = searcher.SearchConversationWithMonitor(context.Background(), conversation,
		orGroup("adele"), nil, nil, monitor)
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "resolve", "match", "finish"}, monitor.stages)
}
