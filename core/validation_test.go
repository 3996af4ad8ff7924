package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePropertyName(t *testing.T) {
	valid := []PropertyName{
		PropertyEntityName, PropertyEntityType, PropertyFacetName,
		PropertyFacetValue, PropertyVerb, PropertySubject,
		PropertyObject, PropertyIndirectObject, PropertyTag,
	}
	for _, name := range valid {
		assert.NoError(t, ValidatePropertyName(name), string(name))
	}

	err := ValidatePropertyName("color")
	assert.ErrorIs(t, err, ErrInvalidPropertyName)
}

func TestValidateSearchTermGroup(t *testing.T) {
	t.Run("valid group", func(t *testing.T) {
		group := SearchTermGroup{
			BooleanOp: BooleanOr,
			Terms: []SearchElement{
				SearchTerm{Term: Term{Text: "book"}},
				PropertySearchTerm{
					KnownProperty: PropertyEntityType,
					PropertyValue: SearchTerm{Term: Term{Text: "person"}},
				},
			},
		}
		assert.NoError(t, ValidateSearchTermGroup(&group))
	})

	t.Run("empty group is valid", func(t *testing.T) {
		group := SearchTermGroup{BooleanOp: BooleanAnd}
		assert.NoError(t, ValidateSearchTermGroup(&group))
	})

	t.Run("unknown boolean op", func(t *testing.T) {
		group := SearchTermGroup{BooleanOp: "xor"}
		assert.ErrorIs(t, ValidateSearchTermGroup(&group), ErrInvalidBooleanOp)
	})

	t.Run("malformed property name fails fast", func(t *testing.T) {
		group := SearchTermGroup{
			BooleanOp: BooleanAnd,
			Terms: []SearchElement{
				PropertySearchTerm{
					KnownProperty: "nmae",
					PropertyValue: SearchTerm{Term: Term{Text: "alice"}},
				},
			},
		}
		assert.ErrorIs(t, ValidateSearchTermGroup(&group), ErrInvalidPropertyName)
	})

	t.Run("empty term text", func(t *testing.T) {
		group := SearchTermGroup{
			BooleanOp: BooleanAnd,
			Terms:     []SearchElement{SearchTerm{}},
		}
		assert.ErrorIs(t, ValidateSearchTermGroup(&group), ErrEmptyTermText)
	})
}

func TestValidatePropertySearchTerm(t *testing.T) {
	t.Run("search term property name", func(t *testing.T) {
		term := PropertySearchTerm{
			PropertyName:  &SearchTerm{Term: Term{Text: "color"}},
			PropertyValue: SearchTerm{Term: Term{Text: "red"}},
		}
		assert.NoError(t, ValidatePropertySearchTerm(&term))
	})

	t.Run("both name forms set", func(t *testing.T) {
		term := PropertySearchTerm{
			KnownProperty: PropertyEntityName,
			PropertyName:  &SearchTerm{Term: Term{Text: "color"}},
			PropertyValue: SearchTerm{Term: Term{Text: "red"}},
		}
		assert.ErrorIs(t, ValidatePropertySearchTerm(&term), ErrInvalidPropertyName)
	})

	t.Run("no name at all", func(t *testing.T) {
		term := PropertySearchTerm{
			PropertyValue: SearchTerm{Term: Term{Text: "red"}},
		}
		assert.ErrorIs(t, ValidatePropertySearchTerm(&term), ErrInvalidPropertyName)
	})
}

func TestTextToLocationIndexDataMUS(t *testing.T) {
	data := TextToLocationIndexData{
		TextLocations: []TextLocation{
			{MessageOrdinal: 0, ChunkOrdinal: 0},
			{MessageOrdinal: 3, ChunkOrdinal: 1},
		},
		Embeddings: [][]float32{
			{0.25, -1, 0.5},
			{1, 0, 0},
		},
	}
	require.NoError(t, data.Validate())

	bs := make([]byte, TextToLocationIndexDataMUS.Size(data))
	n := TextToLocationIndexDataMUS.Marshal(data, bs)
	require.Equal(t, len(bs), n)

	decoded, n, err := TextToLocationIndexDataMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, data, decoded)
}

func TestTextToLocationIndexDataValidate(t *testing.T) {
	data := TextToLocationIndexData{
		TextLocations: []TextLocation{{MessageOrdinal: 0}, {MessageOrdinal: 1}},
		Embeddings:    [][]float32{{1, 0}},
	}
	assert.ErrorIs(t, data.Validate(), ErrIndexDataMismatch)
}
