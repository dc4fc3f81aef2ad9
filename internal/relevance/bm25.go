package relevance

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/ccastromar/aos-graphql-explorer/internal/config"
	"github.com/ccastromar/aos-graphql-explorer/internal/logx"
	"github.com/ccastromar/aos-graphql-explorer/internal/registry"
)

// bm25Scale turns bleve's float scores into the integer scores every
// Ranker returns.
const bm25Scale = 100

// BM25Ranker ranks entries with bleve full-text scoring over an in-memory
// index rebuilt on every call, so it never drifts from the registry.
// Boosts still apply, scaled like the text score.
type BM25Ranker struct {
	Extractor ConceptExtractor
	Boosts    []config.Boost
}

var _ Ranker = (*BM25Ranker)(nil)

func NewBM25Ranker(defs *config.Definitions) *BM25Ranker {
	return &BM25Ranker{
		Extractor: NewTermTable(defs.Vocabularies),
		Boosts:    defs.Boosts,
	}
}

func buildIndexMapping() mapping.IndexMapping {
	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("domain", bleve.NewTextFieldMapping())
	doc.AddFieldMappingsAt("capabilities", bleve.NewTextFieldMapping())
	doc.AddFieldMappingsAt("relationships", bleve.NewTextFieldMapping())

	m := bleve.NewIndexMapping()
	m.AddDocumentMapping("_default", doc)
	return m
}

func (r *BM25Ranker) Rank(query string, entries []registry.APIEntry) []Match {
	if len(entries) == 0 || strings.TrimSpace(query) == "" {
		return nil
	}
	text, err := r.search(query, entries)
	if err != nil {
		logx.Warn("Scorer", "bm25 search failed: %v", err)
		text = map[int]float64{}
	}

	concepts := r.Extractor.Concepts(query)
	out := make([]Match, 0, len(entries))
	for i, e := range entries {
		score := int(math.Round(text[i]*bm25Scale)) + boostScore(r.Boosts, concepts, e.Summary.SearchableText())*bm25Scale
		if score > 0 {
			out = append(out, Match{Entry: e, Score: score})
		}
	}
	sortMatches(out)
	return out
}

// search returns the bleve score per entry position.
func (r *BM25Ranker) search(query string, entries []registry.APIEntry) (map[int]float64, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	defer idx.Close()

	batch := idx.NewBatch()
	for i, e := range entries {
		doc := map[string]interface{}{
			"domain":        e.Summary.Domain,
			"capabilities":  strings.Join(e.Summary.Capabilities, " "),
			"relationships": strings.Join(e.Summary.Relationships, " "),
		}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			return nil, fmt.Errorf("index entry %s: %w", e.URL, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("batch index: %w", err)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), len(entries), 0, false)
	res, err := idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make(map[int]float64, len(res.Hits))
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		out[i] = hit.Score
	}
	return out, nil
}

// NewRanker picks the ranker named by EXPLORER_RANKER.
func NewRanker(name string, defs *config.Definitions) (Ranker, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "keyword":
		return NewScorer(defs), nil
	case "bm25":
		return NewBM25Ranker(defs), nil
	default:
		return nil, fmt.Errorf("unknown ranker %q (want keyword or bm25)", name)
	}
}
