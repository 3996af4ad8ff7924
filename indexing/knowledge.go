package indexing

import "github.com/poiesic/recollect/core"

// knowledgeTerms lists the searchable terms a knowledge value
// contributes to the primary term index.
func knowledgeTerms(k core.Knowledge) []string {
	switch knowledge := k.(type) {
	case core.Entity:
		terms := append([]string{knowledge.Name}, knowledge.Types...)
		for _, facet := range knowledge.Facets {
			if facet.Value != "" {
				terms = append(terms, facet.Value)
			}
		}
		return terms
	case core.Action:
		terms := append([]string(nil), knowledge.Verbs...)
		for _, text := range []string{knowledge.Subject, knowledge.Object, knowledge.IndirectObject} {
			if text != "" {
				terms = append(terms, text)
			}
		}
		return terms
	case core.Topic:
		return []string{knowledge.Text}
	case core.Tag:
		return []string{knowledge.Text}
	}
	return nil
}
