package textindex

import (
	"math"
	"sort"
)

// Scored pairs an entry ordinal with a similarity score.
type Scored struct {
	Ordinal int
	Score   float32
}

// Normalize returns a unit-length copy of the vector.
// A zero vector normalizes to a zero vector.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float64
	for _, val := range v {
		magnitude += float64(val) * float64(val)
	}
	magnitude = math.Sqrt(magnitude)

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, val := range v {
		result[i] = val / float32(magnitude)
	}
	return result
}

// Dot returns the dot product of two vectors. For unit-normalized
// vectors this equals their cosine similarity.
func Dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// EmbeddingIndex is an in-memory nearest-neighbor store over embedding
// vectors. Vectors are unit-normalized on insertion, so similarity is
// the plain dot product. Entries keep their insertion ordinal; no
// reordering or compaction happens except on Clear.
//
// The index is single-writer: concurrent reads against a non-mutating
// index are safe, concurrent writes are not.
type EmbeddingIndex struct {
	vectors [][]float32
}

// NewEmbeddingIndex creates an empty index.
func NewEmbeddingIndex() *EmbeddingIndex {
	return &EmbeddingIndex{}
}

// Add appends vectors to the index, normalizing each.
func (x *EmbeddingIndex) Add(vectors ...[]float32) {
	for _, v := range vectors {
		x.vectors = append(x.vectors, Normalize(v))
	}
}

// Size returns the number of stored vectors.
func (x *EmbeddingIndex) Size() int {
	return len(x.vectors)
}

// Get returns the stored (normalized) vector at the given ordinal.
func (x *EmbeddingIndex) Get(ordinal int) []float32 {
	return x.vectors[ordinal]
}

// Vectors returns the stored vectors in insertion order.
// The returned slice is the index's backing store; callers must not mutate it.
func (x *EmbeddingIndex) Vectors() [][]float32 {
	return x.vectors
}

// Clear removes all vectors.
func (x *EmbeddingIndex) Clear() {
	x.vectors = nil
}

// Nearest returns the entries most similar to the query vector, highest
// score first, dropping entries below minScore. A maxMatches <= 0 means
// unlimited. Ties keep insertion order.
func (x *EmbeddingIndex) Nearest(query []float32, maxMatches int, minScore float32) []Scored {
	query = Normalize(query)
	matches := make([]Scored, 0, len(x.vectors))
	for i, v := range x.vectors {
		score := Dot(query, v)
		if score >= minScore {
			matches = append(matches, Scored{Ordinal: i, Score: score})
		}
	}
	return topN(matches, maxMatches)
}

// NearestInSubset behaves like Nearest but considers only the entries
// at the given ordinals. Out-of-range ordinals are skipped.
func (x *EmbeddingIndex) NearestInSubset(query []float32, ordinals []int, maxMatches int, minScore float32) []Scored {
	query = Normalize(query)
	matches := make([]Scored, 0, len(ordinals))
	for _, ordinal := range ordinals {
		if ordinal < 0 || ordinal >= len(x.vectors) {
			continue
		}
		score := Dot(query, x.vectors[ordinal])
		if score >= minScore {
			matches = append(matches, Scored{Ordinal: ordinal, Score: score})
		}
	}
	return topN(matches, maxMatches)
}

func topN(matches []Scored, maxMatches int) []Scored {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if maxMatches > 0 && len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}
	return matches
}
