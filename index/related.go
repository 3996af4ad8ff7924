package index

import (
	"context"
	"strings"

	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/textindex"
)

const (
	// DefaultRelatedTermScore is the similarity floor for a term to count
	// as a fuzzy synonym of another.
	DefaultRelatedTermScore float32 = 0.85

	// DefaultMaxRelatedTerms caps how many synonyms a fuzzy lookup returns.
	DefaultMaxRelatedTerms = 4
)

// TermAliases is an explicit synonym table: a RelatedTermsIndex backed
// by a plain map. Lookups never fail.
type TermAliases struct {
	aliases map[string][]core.Term
}

var _ RelatedTermsIndex = (*TermAliases)(nil)

// NewTermAliases creates an empty alias table.
func NewTermAliases() *TermAliases {
	return &TermAliases{
		aliases: make(map[string][]core.Term),
	}
}

// AddAlias registers related as a synonym of text.
func (x *TermAliases) AddAlias(text string, related core.Term) {
	key := strings.ToLower(text)
	x.aliases[key] = append(x.aliases[key], related)
}

// LookupTerm returns the registered synonyms of text.
func (x *TermAliases) LookupTerm(_ context.Context, text string) ([]core.Term, error) {
	return x.aliases[strings.ToLower(text)], nil
}

// FuzzyTermIndex finds synonyms by embedding similarity: indexed terms
// whose vectors sit close to the query term's vector are returned as
// related terms, weighted by similarity. This is how the fuzzy
// embedding machinery serves synonym expansion.
type FuzzyTermIndex struct {
	embedder   ai.Embedder
	terms      []string
	embeddings *textindex.EmbeddingIndex
	minScore   float32
	maxMatches int
}

var _ RelatedTermsIndex = (*FuzzyTermIndex)(nil)

// NewFuzzyTermIndex creates an empty fuzzy term index.
func NewFuzzyTermIndex(embedder ai.Embedder) (*FuzzyTermIndex, error) {
	if embedder == nil {
		return nil, textindex.ErrEmbedderRequired
	}
	return &FuzzyTermIndex{
		embedder:   embedder,
		embeddings: textindex.NewEmbeddingIndex(),
		minScore:   DefaultRelatedTermScore,
		maxMatches: DefaultMaxRelatedTerms,
	}, nil
}

// AddTerms embeds and indexes the given terms. Terms are lower-cased;
// a partial embedding result indexes the completed prefix.
func (x *FuzzyTermIndex) AddTerms(ctx context.Context, terms []string) error {
	if len(terms) == 0 {
		return nil
	}

	texts := make([]string, len(terms))
	for i, term := range terms {
		texts[i] = strings.ToLower(term)
	}

	vectors, err := x.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return err
	}
	for i, vector := range vectors {
		if i >= len(texts) {
			break
		}
		x.embeddings.Add(vector)
		x.terms = append(x.terms, texts[i])
	}
	return nil
}

// Size returns the number of indexed terms.
func (x *FuzzyTermIndex) Size() int {
	return len(x.terms)
}

// LookupTerm returns indexed terms similar to text, weighted by
// similarity. The query term itself is excluded.
func (x *FuzzyTermIndex) LookupTerm(ctx context.Context, text string) ([]core.Term, error) {
	if len(x.terms) == 0 {
		return nil, nil
	}

	text = strings.ToLower(text)
	vector, err := x.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	matches := x.embeddings.Nearest(vector, x.maxMatches+1, x.minScore)
	related := make([]core.Term, 0, len(matches))
	for _, match := range matches {
		if x.terms[match.Ordinal] == text {
			continue
		}
		related = append(related, core.Term{
			Text:   x.terms[match.Ordinal],
			Weight: match.Score,
		})
	}
	if len(related) > x.maxMatches {
		related = related[:x.maxMatches]
	}
	return related, nil
}

// RelatedTermsLookup combines an alias table and a fuzzy term index
// into one RelatedTermsIndex. Aliases win; the fuzzy index fills in
// when no alias exists. Either side may be nil.
type RelatedTermsLookup struct {
	Aliases *TermAliases
	Fuzzy   *FuzzyTermIndex
}

var _ RelatedTermsIndex = (*RelatedTermsLookup)(nil)

// LookupTerm consults aliases first, then the fuzzy index.
func (x *RelatedTermsLookup) LookupTerm(ctx context.Context, text string) ([]core.Term, error) {
	if x.Aliases != nil {
		related, err := x.Aliases.LookupTerm(ctx, text)
		if err != nil {
			return nil, err
		}
		if len(related) > 0 {
			return related, nil
		}
	}
	if x.Fuzzy != nil {
		return x.Fuzzy.LookupTerm(ctx, text)
	}
	return nil, nil
}
