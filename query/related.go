package query

import (
	"context"
	"strings"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/index"
)

// resolveRelatedTerms fills in synonyms for every term in the bucket
// that does not already carry them, using the conversation's related
// terms index. Terms the caller pre-populated are left alone. When
// dedupe is set, a synonym text is used at most once across the whole
// bucket, and never duplicates a primary term.
func resolveRelatedTerms(ctx context.Context, related index.RelatedTermsIndex, terms []*core.SearchTerm, dedupe bool) error {
	if related == nil || len(terms) == 0 {
		return nil
	}

	var seen map[string]bool
	if dedupe {
		seen = make(map[string]bool, len(terms))
		for _, term := range terms {
			seen[strings.ToLower(term.Term.Text)] = true
		}
	}

	for _, term := range terms {
		if term.RelatedTerms != nil {
			continue
		}
		synonyms, err := related.LookupTerm(ctx, term.Term.Text)
		if err != nil {
			return err
		}
		// Always attach a copy: the index may hand back its internal
		// slice, and both dedupe filtering and normalization below
		// mutate the attached terms. An empty non-nil slice also marks
		// the term resolved so a retry will not look it up again.
		kept := make([]core.Term, 0, len(synonyms))
		for _, synonym := range synonyms {
			if dedupe {
				key := strings.ToLower(synonym.Text)
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			kept = append(kept, synonym)
		}
		term.RelatedTerms = kept
	}

	core.PrepareSearchTerms(terms)
	return nil
}
