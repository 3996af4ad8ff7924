package ai

import "context"

// Embedder maps text to fixed-dimension embedding vectors for semantic
// similarity search. Implementations must be thread-safe for concurrent
// use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// one call. The returned slice contains embeddings in the same order
	// as the input texts. A provider may partially complete; callers must
	// treat a short result as the completed prefix of the inputs.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider creates and manages an Embedder instance, owning its
// configuration and resources.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
