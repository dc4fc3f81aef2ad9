package relevance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccastromar/aos-graphql-explorer/internal/config"
	"github.com/ccastromar/aos-graphql-explorer/internal/registry"
)

func TestBM25_RanksMatchingEntryFirst(t *testing.T) {
	r := NewBM25Ranker(config.Default())
	matches := r.Rank("anime characters", []registry.APIEntry{countries(), anime()})
	require.NotEmpty(t, matches)
	require.Equal(t, "https://graphql.anilist.co", matches[0].Entry.URL)
	require.Greater(t, matches[0].Score, 0)
}

func TestBM25_ExcludesUnrelated(t *testing.T) {
	r := NewBM25Ranker(config.Default())
	matches := r.Rank("quantum chromodynamics", []registry.APIEntry{countries(), anime()})
	require.Empty(t, matches)
}

func TestBM25_EmptyInputs(t *testing.T) {
	r := NewBM25Ranker(config.Default())
	require.Empty(t, r.Rank("countries", nil))
	require.Empty(t, r.Rank("   ", []registry.APIEntry{countries()}))
}

func TestBM25_StableTies(t *testing.T) {
	r := NewBM25Ranker(config.Default())
	a := entry("https://a.example", "weather data", nil, nil)
	b := entry("https://b.example", "weather data", nil, nil)

	matches := r.Rank("weather", []registry.APIEntry{a, b})
	require.Len(t, matches, 2)
	require.Equal(t, matches[0].Score, matches[1].Score)
	require.Equal(t, "https://a.example", matches[0].Entry.URL)
}
