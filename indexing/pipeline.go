package indexing

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/index"
	"github.com/poiesic/recollect/textindex"
)

// Pipeline builds the index set for conversations: the primary term
// index, secondary property/timestamp/related-terms indexes and the
// fuzzy location index. Multiple conversations index concurrently on a
// worker pool.
type Pipeline struct {
	embedder  ai.Embedder
	pool      *ants.Pool
	batchSize int
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent indexing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets the embedding batch size for the fuzzy indexes.
// Default is textindex.DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		p.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new indexing pipeline.
func NewPipeline(provider ai.Provider, opts ...Option) (*Pipeline, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		embedder:  provider.Embedder(),
		pool:      pool,
		batchSize: textindex.DefaultBatchSize,
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// ConversationInput is the raw material for one conversation's indexes.
type ConversationInput struct {
	Name         string
	Messages     []core.Message
	SemanticRefs []core.SemanticRef
}

// BuildIndex indexes a single conversation. The term, property and
// timestamp indexes build synchronously; the related-terms and location
// indexes embed their entries through the pipeline's provider.
func (p *Pipeline) BuildIndex(ctx context.Context, input ConversationInput) (*IndexedConversation, error) {
	terms := index.NewTermIndex()
	properties := index.NewPropertyIndex()
	timestamps := index.NewTimestampIndex()

	for i := range input.SemanticRefs {
		ref := &input.SemanticRefs[i]
		scored := core.ScoredSemanticRef{SemanticRefOrdinal: ref.Ordinal, Score: 1.0}
		for _, term := range knowledgeTerms(ref.Knowledge) {
			terms.AddTerm(term, scored)
		}
		index.AddSemanticRefProperties(properties, ref, 1.0)
	}

	for ordinal, message := range input.Messages {
		timestamps.AddTimestamp(ordinal, message.Timestamp)
	}

	fuzzy, err := index.NewFuzzyTermIndex(p.embedder)
	if err != nil {
		return nil, err
	}
	if err := fuzzy.AddTerms(ctx, terms.Terms()); err != nil {
		p.logger.Error("error embedding conversation terms",
			"conversation", input.Name, "err", err)
		return nil, err
	}

	locations, err := textindex.NewTextToLocationIndex(p.embedder, textindex.WithLogger(p.logger))
	if err != nil {
		return nil, err
	}
	var pairs []textindex.TextLocationPair
	for messageOrdinal, message := range input.Messages {
		for chunkOrdinal, chunk := range message.Chunks {
			pairs = append(pairs, textindex.TextLocationPair{
				Text: chunk,
				Location: core.TextLocation{
					MessageOrdinal: messageOrdinal,
					ChunkOrdinal:   chunkOrdinal,
				},
			})
		}
	}
	result, err := locations.AddTextLocations(ctx, pairs, nil, p.batchSize)
	if err != nil {
		p.logger.Error("error embedding message chunks",
			"conversation", input.Name, "err", err)
		return nil, err
	}
	if result.Err != nil {
		p.logger.Warn("location index built partially",
			"conversation", input.Name,
			"completed", result.NumberCompleted,
			"total", len(pairs),
			"err", result.Err)
	}

	return &IndexedConversation{
		name:     input.Name,
		messages: input.Messages,
		refs:     input.SemanticRefs,
		terms:    terms,
		secondary: &index.SecondaryIndexes{
			Properties: properties,
			Timestamps: timestamps,
			RelatedTerms: &index.RelatedTermsLookup{
				Aliases: index.NewTermAliases(),
				Fuzzy:   fuzzy,
			},
		},
		locations: locations,
	}, nil
}

// BuildIndexes indexes several conversations concurrently on the worker
// pool. Results keep input order. Conversations that fail report their
// errors joined; the rest still index.
func (p *Pipeline) BuildIndexes(ctx context.Context, inputs []ConversationInput) ([]*IndexedConversation, error) {
	conversations := make([]*IndexedConversation, len(inputs))
	errs := make([]error, len(inputs))

	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			conversations[i], errs[i] = p.BuildIndex(ctx, input)
		})
		if submitErr != nil {
			errs[i] = submitErr
			wg.Done()
		}
	}
	wg.Wait()

	return conversations, errors.Join(errs...)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
