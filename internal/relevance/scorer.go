package relevance

import (
	"sort"
	"strings"

	"github.com/ccastromar/aos-graphql-explorer/internal/config"
	"github.com/ccastromar/aos-graphql-explorer/internal/registry"
)

const (
	domainWeight       = 3
	capabilityWeight   = 2
	relationshipWeight = 1
)

// Match is one ranked entry. Score is always > 0.
type Match struct {
	Entry registry.APIEntry
	Score int
}

// Ranker orders entries by relevance to query: scores > 0 only,
// descending, ties in input order.
type Ranker interface {
	Rank(query string, entries []registry.APIEntry) []Match
}

// Scorer is the keyword ranker.
type Scorer struct {
	Extractor ConceptExtractor
	Boosts    []config.Boost
}

var _ Ranker = (*Scorer)(nil)

func NewScorer(defs *config.Definitions) *Scorer {
	return &Scorer{
		Extractor: NewTermTable(defs.Vocabularies),
		Boosts:    defs.Boosts,
	}
}

func (s *Scorer) Rank(query string, entries []registry.APIEntry) []Match {
	concepts := s.Extractor.Concepts(query)
	out := make([]Match, 0, len(entries))
	for _, e := range entries {
		if score := s.Score(concepts, e); score > 0 {
			out = append(out, Match{Entry: e, Score: score})
		}
	}
	sortMatches(out)
	return out
}

// Score computes the score of one entry for an already extracted concept set.
func (s *Scorer) Score(concepts map[string]struct{}, e registry.APIEntry) int {
	domain := strings.ToLower(e.Summary.Domain)
	caps := lowerAll(e.Summary.Capabilities)
	rels := lowerAll(e.Summary.Relationships)

	score := 0
	for c := range concepts {
		if strings.Contains(domain, c) {
			score += domainWeight
		}
		if anyContains(caps, c) {
			score += capabilityWeight
		}
		if anyContains(rels, c) {
			score += relationshipWeight
		}
	}
	return score + boostScore(s.Boosts, concepts, e.Summary.SearchableText())
}

// boostScore adds each boost whose marker is in text and whose trigger is
// among concepts.
func boostScore(boosts []config.Boost, concepts map[string]struct{}, text string) int {
	total := 0
	for _, b := range boosts {
		if !anyIn(text, b.Markers) {
			continue
		}
		for _, t := range b.Triggers {
			if _, ok := concepts[t]; ok {
				total += b.Weight
				break
			}
		}
	}
	return total
}

func sortMatches(m []Match) {
	sort.SliceStable(m, func(i, j int) bool { return m[i].Score > m[j].Score })
}

func anyContains(items []string, sub string) bool {
	for _, it := range items {
		if strings.Contains(it, sub) {
			return true
		}
	}
	return false
}

func anyIn(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
