// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package recollect

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/ai/openai"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/indexing"
	"github.com/poiesic/recollect/query"
	"github.com/poiesic/recollect/storage"
	"github.com/poiesic/recollect/storage/badger"
)

// ErrConversationNotIndexed is returned when an operation names a
// conversation this memory has not indexed.
var ErrConversationNotIndexed = errors.New("conversation not indexed")

// Memory ties the pieces together: the snapshot store, the embedding
// provider, the indexing pipeline and the query searcher, plus the
// in-memory registry of indexed conversations.
type Memory struct {
	snapshots storage.IndexSnapshotRepository
	provider  ai.Provider
	pipeline  *indexing.Pipeline
	searcher  *query.Searcher
	logger    *slog.Logger

	mu            sync.RWMutex
	conversations map[string]*indexing.IndexedConversation
}

// MemoryOption configures a Memory.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	aiConfig     *ai.Config
	provider     ai.Provider
	inMemory     bool
	indexingOpts []indexing.Option
	searchOpts   []query.Option
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(config *ai.Config) MemoryOption {
	return func(o *memoryOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies an embedding provider directly, bypassing the
// AI configuration. Used by tests to plug in a mock.
func WithProvider(provider ai.Provider) MemoryOption {
	return func(o *memoryOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps snapshots in memory instead of on disk.
func WithInMemoryStorage() MemoryOption {
	return func(o *memoryOptions) {
		o.inMemory = true
	}
}

// WithIndexingOptions passes options to the indexing pipeline.
func WithIndexingOptions(opts ...indexing.Option) MemoryOption {
	return func(o *memoryOptions) {
		o.indexingOpts = opts
	}
}

// WithSearchOptions passes options to the searcher.
func WithSearchOptions(opts ...query.Option) MemoryOption {
	return func(o *memoryOptions) {
		o.searchOpts = opts
	}
}

// NewMemory opens a memory rooted at filePath.
func NewMemory(filePath string, opts ...MemoryOption) (*Memory, error) {
	// Apply options
	options := &memoryOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}
	snapshots := badger.NewSnapshotRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			snapshots.Close()
			return nil, err
		}
	}

	pipeline, err := indexing.NewPipeline(provider, options.indexingOpts...)
	if err != nil {
		provider.Close()
		snapshots.Close()
		return nil, err
	}

	searcher, err := query.NewSearcher(options.searchOpts...)
	if err != nil {
		pipeline.Release()
		provider.Close()
		snapshots.Close()
		return nil, err
	}

	return &Memory{
		snapshots:     snapshots,
		provider:      provider,
		pipeline:      pipeline,
		searcher:      searcher,
		logger:        slog.Default(),
		conversations: make(map[string]*indexing.IndexedConversation),
	}, nil
}

// Close releases the pipeline, the provider and the snapshot store.
func (m *Memory) Close() error {
	m.pipeline.Release()

	if err := m.provider.Close(); err != nil {
		m.logger.Error("error closing AI provider", "err", err)
	}
	if err := m.snapshots.Close(); err != nil {
		m.logger.Error("error closing snapshot store", "err", err)
		return err
	}
	return nil
}

// IndexConversation builds the full index set for a conversation,
// registers it under its name and persists its location index snapshot.
func (m *Memory) IndexConversation(ctx context.Context, input indexing.ConversationInput) (*indexing.IndexedConversation, error) {
	conversation, err := m.pipeline.BuildIndex(ctx, input)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.conversations[input.Name] = conversation
	m.mu.Unlock()

	if err := m.SaveLocationIndex(ctx, input.Name); err != nil {
		return nil, err
	}
	return conversation, nil
}

// Conversation returns an indexed conversation by name.
func (m *Memory) Conversation(name string) (*indexing.IndexedConversation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conversation, ok := m.conversations[name]
	return conversation, ok
}

// Search runs a term query against a previously indexed conversation.
func (m *Memory) Search(
	ctx context.Context,
	conversation string,
	group core.SearchTermGroup,
	filter *core.WhenFilter,
	options *core.SearchOptions,
) (map[core.KnowledgeType]*core.SearchResult, error) {
	indexed, ok := m.Conversation(conversation)
	if !ok {
		return nil, ErrConversationNotIndexed
	}
	return m.searcher.SearchConversation(ctx, indexed, group, filter, options)
}

// SaveLocationIndex persists a conversation's location index snapshot.
func (m *Memory) SaveLocationIndex(ctx context.Context, conversation string) error {
	indexed, ok := m.Conversation(conversation)
	if !ok {
		return ErrConversationNotIndexed
	}
	data := indexed.LocationIndex().Serialize()
	return m.snapshots.SaveSnapshot(ctx, conversation, &data)
}

// LoadLocationIndex restores a conversation's location index from its
// stored snapshot, replacing the in-memory one.
func (m *Memory) LoadLocationIndex(ctx context.Context, conversation string) error {
	indexed, ok := m.Conversation(conversation)
	if !ok {
		return ErrConversationNotIndexed
	}
	data, err := m.snapshots.LoadSnapshot(ctx, conversation)
	if err != nil {
		return err
	}
	return indexed.LocationIndex().Deserialize(*data)
}

// Snapshots exposes the snapshot repository.
func (m *Memory) Snapshots() storage.IndexSnapshotRepository {
	return m.snapshots
}
