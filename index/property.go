package index

import (
	"strings"

	"github.com/poiesic/recollect/core"
)

// propertyKeySeparator joins name and value into one map key. "@@" can
// not occur in a property name.
const propertyKeySeparator = "@@"

// PropertyIndex is the in-memory PropertyToSemanticRefIndex
// implementation, keyed by lower-cased "name@@value".
type PropertyIndex struct {
	entries map[string][]core.ScoredSemanticRef
}

var _ PropertyToSemanticRefIndex = (*PropertyIndex)(nil)

// NewPropertyIndex creates an empty property index.
func NewPropertyIndex() *PropertyIndex {
	return &PropertyIndex{
		entries: make(map[string][]core.ScoredSemanticRef),
	}
}

// AddProperty registers a ref under a property name and value.
func (x *PropertyIndex) AddProperty(name, value string, ref core.ScoredSemanticRef) {
	key := propertyKey(name, value)
	x.entries[key] = append(x.entries[key], ref)
}

// LookupProperty returns the refs registered under (name, value).
func (x *PropertyIndex) LookupProperty(name, value string) []core.ScoredSemanticRef {
	return x.entries[propertyKey(name, value)]
}

// Clear removes all entries.
func (x *PropertyIndex) Clear() {
	x.entries = make(map[string][]core.ScoredSemanticRef)
}

func propertyKey(name, value string) string {
	return strings.ToLower(name) + propertyKeySeparator + strings.ToLower(value)
}

// AddSemanticRefProperties indexes the well-known properties of a
// semantic ref's knowledge: entity name, types and facets, action
// verbs, subject, object and indirect object, and tags. Topics carry no
// properties.
func AddSemanticRefProperties(x PropertyToSemanticRefIndex, ref *core.SemanticRef, score float32) {
	scored := core.ScoredSemanticRef{SemanticRefOrdinal: ref.Ordinal, Score: score}

	switch k := ref.Knowledge.(type) {
	case core.Entity:
		x.AddProperty(string(core.PropertyEntityName), k.Name, scored)
		for _, entityType := range k.Types {
			x.AddProperty(string(core.PropertyEntityType), entityType, scored)
		}
		for _, facet := range k.Facets {
			x.AddProperty(string(core.PropertyFacetName), facet.Name, scored)
			x.AddProperty(string(core.PropertyFacetValue), facet.Value, scored)
			// Facets are also addressable by their own name, e.g. "color" -> "red"
			x.AddProperty(facet.Name, facet.Value, scored)
		}
	case core.Action:
		for _, verb := range k.Verbs {
			x.AddProperty(string(core.PropertyVerb), verb, scored)
		}
		if k.Subject != "" {
			x.AddProperty(string(core.PropertySubject), k.Subject, scored)
		}
		if k.Object != "" {
			x.AddProperty(string(core.PropertyObject), k.Object, scored)
		}
		if k.IndirectObject != "" {
			x.AddProperty(string(core.PropertyIndirectObject), k.IndirectObject, scored)
		}
	case core.Tag:
		x.AddProperty(string(core.PropertyTag), k.Text, scored)
	}
}
