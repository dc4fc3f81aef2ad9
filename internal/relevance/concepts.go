// Package relevance ranks registered APIs against free-text input.
package relevance

import (
	"strings"

	"github.com/ccastromar/aos-graphql-explorer/internal/config"
)

// ConceptExtractor turns user input into a set of lowercase concepts.
type ConceptExtractor interface {
	Concepts(query string) map[string]struct{}
}

// TermTable is the default extractor: whitespace tokens plus every known
// term found anywhere in the input.
type TermTable struct {
	terms []string
}

func NewTermTable(vocabs []config.Vocabulary) *TermTable {
	seen := map[string]bool{}
	t := &TermTable{}
	for _, v := range vocabs {
		for _, term := range v.Terms {
			term = strings.ToLower(strings.TrimSpace(term))
			if term == "" || seen[term] {
				continue
			}
			seen[term] = true
			t.terms = append(t.terms, term)
		}
	}
	return t
}

func (t *TermTable) Concepts(query string) map[string]struct{} {
	q := strings.ToLower(query)
	out := map[string]struct{}{}
	for _, tok := range strings.Fields(q) {
		out[tok] = struct{}{}
	}
	// substring match: "asian" also yields "asia"
	for _, term := range t.terms {
		if strings.Contains(q, term) {
			out[term] = struct{}{}
		}
	}
	return out
}
