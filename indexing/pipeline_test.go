package indexing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recollect/ai/mock"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/query"
	"github.com/poiesic/recollect/textindex"
)

func newTestPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	pipeline, err := NewPipeline(mock.NewMockProvider(), opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline
}

func coffeeInput(name string) ConversationInput {
	base := time.Date(2026, time.June, 10, 9, 0, 0, 0, time.UTC)
	return ConversationInput{
		Name: name,
		Messages: []core.Message{
			{Chunks: []string{"We tried the new coffee shop downtown"}, Timestamp: base},
			{Chunks: []string{"Their espresso was excellent", "The pastries were stale"}, Timestamp: base.Add(time.Hour)},
		},
		SemanticRefs: []core.SemanticRef{
			{
				Ordinal:   0,
				Range:     core.TextRange{Start: core.TextLocation{MessageOrdinal: 0}},
				Knowledge: core.Entity{Name: "coffee shop", Types: []string{"place"}},
			},
			{
				Ordinal:   1,
				Range:     core.TextRange{Start: core.TextLocation{MessageOrdinal: 1}},
				Knowledge: core.Topic{Text: "espresso"},
			},
			{
				Ordinal:   2,
				Range:     core.TextRange{Start: core.TextLocation{MessageOrdinal: 1}},
				Knowledge: core.Action{Verbs: []string{"taste"}, Subject: "we", Object: "espresso"},
			},
		},
	}
}

func TestNewPipeline(t *testing.T) {
	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("with options", func(t *testing.T) {
		pipeline := newTestPipeline(t, WithPoolSize(2), WithBatchSize(4), WithLogger(nil))
		assert.NotNil(t, pipeline)
	})
}

func TestBuildIndex(t *testing.T) {
	pipeline := newTestPipeline(t)
	ctx := context.Background()

	conversation, err := pipeline.BuildIndex(ctx, coffeeInput("coffee"))
	require.NoError(t, err)

	assert.Equal(t, "coffee", conversation.Name())
	assert.Len(t, conversation.Messages(), 2)
	assert.Len(t, conversation.SemanticRefs(), 3)
	assert.True(t, query.IsSearchable(conversation))

	t.Run("term index covers knowledge terms", func(t *testing.T) {
		terms := conversation.TermIndex()
		require.NotNil(t, terms)
		for _, text := range []string{"coffee shop", "place", "espresso", "taste", "we"} {
			assert.NotEmpty(t, terms.LookupTerm(text), "term %q", text)
		}
	})

	t.Run("espresso indexed for topic and action refs", func(t *testing.T) {
		refs := conversation.TermIndex().LookupTerm("espresso")
		ordinals := make([]int, 0, len(refs))
		for _, ref := range refs {
			ordinals = append(ordinals, ref.SemanticRefOrdinal)
		}
		assert.ElementsMatch(t, []int{1, 2}, ordinals)
	})

	t.Run("secondary indexes present", func(t *testing.T) {
		secondary := conversation.SecondaryIndexes()
		require.NotNil(t, secondary)
		assert.NotEmpty(t, secondary.Properties.LookupProperty("name", "coffee shop"))
		assert.NotNil(t, secondary.Timestamps)
		assert.NotNil(t, secondary.RelatedTerms)
	})

	t.Run("location index covers every chunk", func(t *testing.T) {
		require.NotNil(t, conversation.LocationIndex())
		assert.Equal(t, 3, conversation.LocationIndex().Len())
	})

	t.Run("fuzzy location lookup", func(t *testing.T) {
		matches, err := conversation.LocationIndex().LookupText(ctx,
			"Their espresso was excellent", 1, 0)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, core.TextLocation{MessageOrdinal: 1, ChunkOrdinal: 0}, matches[0].TextLocation)
	})
}

func TestBuildIndex_SearchEndToEnd(t *testing.T) {
	pipeline := newTestPipeline(t)
	ctx := context.Background()

	conversation, err := pipeline.BuildIndex(ctx, coffeeInput("coffee"))
	require.NoError(t, err)

	searcher, err := query.NewSearcher()
	require.NoError(t, err)

	group := core.SearchTermGroup{
		BooleanOp: core.BooleanOr,
		Terms: []core.SearchElement{
			core.SearchTerm{Term: core.Term{Text: "espresso"}},
		},
	}
	results, err := searcher.SearchConversation(ctx, conversation, group, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, results, core.KnowledgeTopic)
	assert.Contains(t, results, core.KnowledgeAction)
}

func TestBuildIndex_EmbeddingFailure(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("model offline")
	}
	pipeline, err := NewPipeline(mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.BuildIndex(context.Background(), coffeeInput("coffee"))
	assert.Error(t, err)
}

func TestBuildIndexes(t *testing.T) {
	pipeline := newTestPipeline(t, WithPoolSize(2), WithBatchSize(textindex.DefaultBatchSize))
	ctx := context.Background()

	inputs := []ConversationInput{
		coffeeInput("first"),
		coffeeInput("second"),
		coffeeInput("third"),
	}
	conversations, err := pipeline.BuildIndexes(ctx, inputs)
	require.NoError(t, err)
	require.Len(t, conversations, 3)
	for i, conversation := range conversations {
		require.NotNil(t, conversation)
		assert.Equal(t, inputs[i].Name, conversation.Name())
	}
}

func TestBuildIndexes_PartialFailure(t *testing.T) {
	// The embedder rejects one conversation's terms; the other
	// conversation must still index.
	delegate := mock.NewMockEmbedder()
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		for _, text := range texts {
			if strings.Contains(text, "hemlock") {
				return nil, errors.New("model offline")
			}
		}
		return delegate.EmbedTexts(ctx, texts)
	}
	pipeline, err := NewPipeline(mock.NewMockProviderWithEmbedder(embedder), WithPoolSize(1))
	require.NoError(t, err)
	defer pipeline.Release()

	poisoned := coffeeInput("second")
	poisoned.SemanticRefs = append(poisoned.SemanticRefs, core.SemanticRef{
		Ordinal:   3,
		Range:     core.TextRange{Start: core.TextLocation{MessageOrdinal: 0}},
		Knowledge: core.Topic{Text: "hemlock"},
	})

	conversations, err := pipeline.BuildIndexes(context.Background(), []ConversationInput{
		coffeeInput("first"),
		poisoned,
	})
	require.Error(t, err)
	require.Len(t, conversations, 2)
	assert.NotNil(t, conversations[0])
	assert.Nil(t, conversations[1])
}
