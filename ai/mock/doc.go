// Package mock provides test double implementations of the ai interfaces.
//
// The mocks allow tests to run without external embedding services and
// enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewMockProvider()
//	vector, err := provider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service down")
//	}
//
// # Default Behavior
//
// MockEmbedder returns deterministic bag-of-bigram vectors, so texts
// that share substrings score high cosine similarity while unrelated
// texts score near zero. This makes nearest-neighbor behavior and
// thresholds testable without a real model.
package mock
