package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recollect/core"
)

func sampleIndexData() *core.TextToLocationIndexData {
	return &core.TextToLocationIndexData{
		TextLocations: []core.TextLocation{
			{MessageOrdinal: 0, ChunkOrdinal: 0},
			{MessageOrdinal: 3, ChunkOrdinal: 1},
		},
		Embeddings: [][]float32{
			{0.6, 0.8},
			{1, 0},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	data := sampleIndexData()
	envelope := MarshalSnapshot(data)

	decoded, err := UnmarshalSnapshot(envelope)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestSnapshotRoundTrip_Empty(t *testing.T) {
	data := &core.TextToLocationIndexData{}
	decoded, err := UnmarshalSnapshot(MarshalSnapshot(data))
	require.NoError(t, err)
	assert.Empty(t, decoded.TextLocations)
	assert.Empty(t, decoded.Embeddings)
}

func TestUnmarshalSnapshot_Truncated(t *testing.T) {
	_, err := UnmarshalSnapshot([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestUnmarshalSnapshot_FlippedBit(t *testing.T) {
	envelope := MarshalSnapshot(sampleIndexData())
	envelope[len(envelope)-1] ^= 0x01

	_, err := UnmarshalSnapshot(envelope)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestUnmarshalSnapshot_TruncatedPayload(t *testing.T) {
	envelope := MarshalSnapshot(sampleIndexData())
	_, err := UnmarshalSnapshot(envelope[:len(envelope)-2])
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}
