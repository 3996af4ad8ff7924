package textindex

import (
	"context"
	"log/slog"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/core"
)

const (
	// DefaultBatchSize is the number of texts embedded per provider call
	// in AddTextLocations.
	DefaultBatchSize = 8

	// DefaultMinScore is the similarity floor applied by lookups when the
	// caller passes no threshold. Tuned for cosine similarity; callers
	// should adjust per embedding model.
	DefaultMinScore float32 = 0.3
)

// TextLocationPair is one (text, location) entry to index.
type TextLocationPair struct {
	Text     string
	Location core.TextLocation
}

// IndexingEventHandler receives incremental progress during batch
// insertion: the number of entries indexed so far and the total
// requested.
type IndexingEventHandler func(completed, total int)

// IndexingResult summarizes an insertion. NumberCompleted counts the
// entries actually added; Err carries the cause when the batch stopped
// early, without failing the call.
type IndexingResult struct {
	NumberCompleted int
	Err             error
}

// TextToLocationIndex maps text to previously registered locations via
// nearest-neighbor search over embeddings. It keeps two parallel
// insertion-ordered sequences: the locations and one embedding vector
// per entry. A location is appended only after its text embeds
// successfully, so the sequences always have equal length.
//
// The index is single-writer per instance: callers must not issue
// concurrent Add calls against the same index. Concurrent lookups
// against a non-mutating index are safe.
type TextToLocationIndex struct {
	embedder   ai.Embedder
	locations  []core.TextLocation
	embeddings *EmbeddingIndex
	logger     *slog.Logger
}

// Option configures a TextToLocationIndex.
type Option func(*TextToLocationIndex) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(x *TextToLocationIndex) error {
		if logger == nil {
			logger = slog.Default()
		}
		x.logger = logger
		return nil
	}
}

// NewTextToLocationIndex creates an empty index backed by the embedder.
func NewTextToLocationIndex(embedder ai.Embedder, opts ...Option) (*TextToLocationIndex, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	x := &TextToLocationIndex{
		embedder:   embedder,
		embeddings: NewEmbeddingIndex(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(x); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// Len returns the number of indexed entries.
func (x *TextToLocationIndex) Len() int {
	return len(x.locations)
}

// AddTextLocation embeds text and appends location to the index.
// If embedding fails the index is left unchanged.
func (x *TextToLocationIndex) AddTextLocation(ctx context.Context, text string, location core.TextLocation) (IndexingResult, error) {
	vector, err := x.embedder.EmbedText(ctx, text)
	if err != nil {
		x.logger.Error("error embedding text for location index", "err", err)
		return IndexingResult{}, err
	}

	x.embeddings.Add(vector)
	x.locations = append(x.locations, location)
	return IndexingResult{NumberCompleted: 1}, nil
}

// AddTextLocations embeds the pairs in batches of batchSize (default
// DefaultBatchSize) and appends each location as its embedding
// completes. On partial failure only the completed prefix of the input
// is kept: callers should order pairs so that earlier entries are the
// ones whose loss is least costly, as the index never re-attempts or
// reorders. The per-batch cause, if any, is reported in the result's
// Err; the call itself errors only when nothing could be indexed.
func (x *TextToLocationIndex) AddTextLocations(ctx context.Context, pairs []TextLocationPair, handler IndexingEventHandler, batchSize int) (IndexingResult, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var completed int
	for start := 0; start < len(pairs); start += batchSize {
		end := start + batchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		batch := pairs[start:end]

		texts := make([]string, len(batch))
		for i, pair := range batch {
			texts[i] = pair.Text
		}

		vectors, err := x.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			x.logger.Error("error embedding batch for location index",
				"completed", completed, "total", len(pairs), "err", err)
			if completed == 0 {
				return IndexingResult{}, err
			}
			return IndexingResult{NumberCompleted: completed, Err: err}, nil
		}

		// A short result is the completed prefix of the batch.
		for i, vector := range vectors {
			if i >= len(batch) {
				break
			}
			x.embeddings.Add(vector)
			x.locations = append(x.locations, batch[i].Location)
			completed++
			if handler != nil {
				handler(completed, len(pairs))
			}
		}
		if len(vectors) < len(batch) {
			x.logger.Warn("embedding batch partially completed",
				"completed", completed, "total", len(pairs))
			return IndexingResult{NumberCompleted: completed}, nil
		}
	}

	return IndexingResult{NumberCompleted: completed}, nil
}

// LookupText embeds text and returns the most similar indexed entries,
// highest score first, each paired with its stored location. Matches
// scoring below thresholdScore are omitted; a thresholdScore <= 0 uses
// DefaultMinScore. A maxMatches <= 0 means unlimited.
func (x *TextToLocationIndex) LookupText(ctx context.Context, text string, maxMatches int, thresholdScore float32) ([]core.ScoredTextLocation, error) {
	vector, err := x.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	if thresholdScore <= 0 {
		thresholdScore = DefaultMinScore
	}
	return x.toScoredLocations(x.embeddings.Nearest(vector, maxMatches, thresholdScore)), nil
}

// LookupTextInSubset behaves like LookupText but searches only the
// entries at the given ordinals. Used to run scoped queries without
// duplicating the index.
func (x *TextToLocationIndex) LookupTextInSubset(ctx context.Context, text string, ordinals []int, maxMatches int, thresholdScore float32) ([]core.ScoredTextLocation, error) {
	vector, err := x.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	if thresholdScore <= 0 {
		thresholdScore = DefaultMinScore
	}
	return x.toScoredLocations(x.embeddings.NearestInSubset(vector, ordinals, maxMatches, thresholdScore)), nil
}

// Clear resets the index to empty.
func (x *TextToLocationIndex) Clear() {
	x.locations = nil
	x.embeddings.Clear()
}

// Serialize captures the full index state.
func (x *TextToLocationIndex) Serialize() core.TextToLocationIndexData {
	data := core.TextToLocationIndexData{
		TextLocations: append([]core.TextLocation(nil), x.locations...),
		Embeddings:    make([][]float32, 0, x.embeddings.Size()),
	}
	for _, v := range x.embeddings.Vectors() {
		data.Embeddings = append(data.Embeddings, append([]float32(nil), v...))
	}
	return data
}

// Deserialize replaces the index state with the snapshot. The snapshot's
// parallel sequences must have equal length; on mismatch the call fails
// and the existing state is left unchanged.
func (x *TextToLocationIndex) Deserialize(data core.TextToLocationIndexData) error {
	if err := data.Validate(); err != nil {
		return err
	}

	locations := append([]core.TextLocation(nil), data.TextLocations...)
	embeddings := NewEmbeddingIndex()
	embeddings.Add(data.Embeddings...)

	x.locations = locations
	x.embeddings = embeddings
	return nil
}

func (x *TextToLocationIndex) toScoredLocations(matches []Scored) []core.ScoredTextLocation {
	results := make([]core.ScoredTextLocation, len(matches))
	for i, match := range matches {
		results[i] = core.ScoredTextLocation{
			Score:        match.Score,
			TextLocation: x.locations[match.Ordinal],
		}
	}
	return results
}
