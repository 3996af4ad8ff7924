package core

import (
	"fmt"

	mus "github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the types that make up the persisted fuzzy-index
// snapshot. Embedding vectors use fixed-width float32 encoding; ordinals
// and lengths use varint.
var (
	TextLocationMUS            = textLocationMUS{}
	EmbeddingMUS               = embeddingMUS{}
	TextToLocationIndexDataMUS = textToLocationIndexDataMUS{}
)

var (
	_ mus.Serializer[TextLocation]            = TextLocationMUS
	_ mus.Serializer[[]float32]               = EmbeddingMUS
	_ mus.Serializer[TextToLocationIndexData] = TextToLocationIndexDataMUS
)

type textLocationMUS struct{}

func (textLocationMUS) Marshal(v TextLocation, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(v.MessageOrdinal, bs)
	n += varint.PositiveInt.Marshal(v.ChunkOrdinal, bs[n:])
	return
}

func (textLocationMUS) Unmarshal(bs []byte) (v TextLocation, n int, err error) {
	v.MessageOrdinal, n, err = varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ChunkOrdinal, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	return
}

func (textLocationMUS) Size(v TextLocation) (size int) {
	size = varint.PositiveInt.Size(v.MessageOrdinal)
	size += varint.PositiveInt.Size(v.ChunkOrdinal)
	return
}

func (textLocationMUS) Skip(bs []byte) (n int, err error) {
	n, err = varint.PositiveInt.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.PositiveInt.Skip(bs[n:])
	n += n1
	return
}

type embeddingMUS struct{}

func (embeddingMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return
}

func (embeddingMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return
	}
	v = make([]float32, length)
	var n1 int
	for i := 0; i < length; i++ {
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (embeddingMUS) Size(v []float32) (size int) {
	size = varint.PositiveInt.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return
}

func (embeddingMUS) Skip(bs []byte) (n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	for i := 0; i < length; i++ {
		n1, err = raw.Float32.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type textToLocationIndexDataMUS struct{}

func (textToLocationIndexDataMUS) Marshal(v TextToLocationIndexData, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(len(v.TextLocations), bs)
	for _, loc := range v.TextLocations {
		n += TextLocationMUS.Marshal(loc, bs[n:])
	}
	n += varint.PositiveInt.Marshal(len(v.Embeddings), bs[n:])
	for _, emb := range v.Embeddings {
		n += EmbeddingMUS.Marshal(emb, bs[n:])
	}
	return
}

func (textToLocationIndexDataMUS) Unmarshal(bs []byte) (v TextToLocationIndexData, n int, err error) {
	locCount, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.TextLocations = make([]TextLocation, locCount)
	for i := 0; i < locCount; i++ {
		v.TextLocations[i], n1, err = TextLocationMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	embCount, n1, err := varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Embeddings = make([][]float32, embCount)
	for i := 0; i < embCount; i++ {
		v.Embeddings[i], n1, err = EmbeddingMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (textToLocationIndexDataMUS) Size(v TextToLocationIndexData) (size int) {
	size = varint.PositiveInt.Size(len(v.TextLocations))
	for _, loc := range v.TextLocations {
		size += TextLocationMUS.Size(loc)
	}
	size += varint.PositiveInt.Size(len(v.Embeddings))
	for _, emb := range v.Embeddings {
		size += EmbeddingMUS.Size(emb)
	}
	return
}

func (textToLocationIndexDataMUS) Skip(bs []byte) (n int, err error) {
	locCount, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	for i := 0; i < locCount; i++ {
		n1, err = TextLocationMUS.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	embCount, n1, err := varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for i := 0; i < embCount; i++ {
		n1, err = EmbeddingMUS.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

// Validate checks the parallel-sequence invariant of snapshot data.
func (v *TextToLocationIndexData) Validate() error {
	if len(v.TextLocations) != len(v.Embeddings) {
		return fmt.Errorf("%w: %d locations, %d embeddings",
			ErrIndexDataMismatch, len(v.TextLocations), len(v.Embeddings))
	}
	return nil
}
