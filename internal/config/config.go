package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary is a named list of domain terms. A term counts as a concept
// whenever it appears as a substring of the user's input.
type Vocabulary struct {
	Name  string   `yaml:"name"`
	Terms []string `yaml:"terms"`
}

// Boost adds Weight to an API's score when its searchable text contains
// any of Markers and the query concepts contain any of Triggers.
type Boost struct {
	Name     string   `yaml:"name"`
	Markers  []string `yaml:"markers"`
	Triggers []string `yaml:"triggers"`
	Weight   int      `yaml:"weight"`
}

// Limits bounds the schema summary handed to the model.
type Limits struct {
	MaxQueries int `yaml:"max_queries"`
	MaxTypes   int `yaml:"max_types"`
	MaxFields  int `yaml:"max_fields"`
	// MaxDepth bounds the selection depth of a drafted query.
	MaxDepth int `yaml:"max_depth"`
}

type Suggestion struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

type Definitions struct {
	Vocabularies []Vocabulary
	Boosts       []Boost
	APIKeywords  []string
	Limits       Limits
	Suggestions  []Suggestion
}

var DefaultLimits = Limits{MaxQueries: 10, MaxTypes: 10, MaxFields: 5, MaxDepth: 8}

// Default returns the built-in definitions. LoadFromDir starts from these
// and replaces whatever the directory provides.
func Default() *Definitions {
	return &Definitions{
		Vocabularies: []Vocabulary{
			{
				Name: "geography",
				Terms: []string{"country", "countries", "continent", "continents", "language", "languages",
					"capital", "region", "europe", "asia", "africa", "america", "oceania",
					"population", "currency", "speak", "spoken"},
			},
			{
				Name: "media",
				Terms: []string{"anime", "manga", "episode", "character", "series", "show", "movie",
					"season", "rating", "popular", "top", "latest"},
			},
		},
		Boosts: []Boost{
			{Name: "geography", Markers: []string{"country", "continent"}, Triggers: []string{"countries", "continent", "asia", "europe"}, Weight: 5},
			{Name: "media", Markers: []string{"anime"}, Triggers: []string{"anime", "manga"}, Weight: 5},
		},
		APIKeywords: []string{
			"api", "apis", "endpoints", "services",
			"what can you do", "what do you know",
			"show me", "list", "available", "capabilities",
			"which apis", "what apis", "known apis",
		},
		Limits: DefaultLimits,
		Suggestions: []Suggestion{
			{URL: "https://graphql.anilist.co", Description: "Anime/Manga data"},
			{URL: "https://countries.trevorblades.com/graphql", Description: "Country information"},
			{URL: "https://rickandmortyapi.com/graphql", Description: "Rick and Morty show data"},
		},
	}
}

// LoadFromDir loads definitions from base. The vocabulary directory is
// required; intents.yaml, limits.yaml and suggestions.yaml are optional.
func LoadFromDir(base string) (*Definitions, error) {
	defs := Default()

	if err := loadVocabularyDir(filepath.Join(base, "vocabulary"), defs); err != nil {
		return nil, err
	}
	if err := loadIntents(filepath.Join(base, "intents.yaml"), defs); err != nil {
		return nil, err
	}
	if err := loadLimits(filepath.Join(base, "limits.yaml"), defs); err != nil {
		return nil, err
	}
	if err := loadSuggestions(filepath.Join(base, "suggestions.yaml"), defs); err != nil {
		return nil, err
	}
	if err := defs.Validate(); err != nil {
		return nil, err
	}
	return defs, nil
}

// Validate checks the invariants the scorer and simplifier rely on.
func (d *Definitions) Validate() error {
	if d.Limits.MaxQueries <= 0 || d.Limits.MaxTypes <= 0 || d.Limits.MaxFields <= 0 || d.Limits.MaxDepth <= 0 {
		return fmt.Errorf("limits must be positive: %+v", d.Limits)
	}
	for _, b := range d.Boosts {
		if b.Weight <= 0 {
			return fmt.Errorf("boost %q: weight must be positive", b.Name)
		}
		if len(b.Markers) == 0 || len(b.Triggers) == 0 {
			return fmt.Errorf("boost %q: markers and triggers are required", b.Name)
		}
	}
	return nil
}

func loadVocabularyDir(dir string, defs *Definitions) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading vocabulary dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	// ReadDir ya ordena por nombre, pero lo dejamos explícito
	sort.Strings(names)

	var vocabs []Vocabulary
	var boosts []Boost
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var raw struct {
			Vocabularies []Vocabulary `yaml:"vocabularies"`
			Boosts       []Boost      `yaml:"boosts"`
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		for _, v := range raw.Vocabularies {
			v.Terms = lowerAll(v.Terms)
			vocabs = append(vocabs, v)
		}
		for _, b := range raw.Boosts {
			b.Markers = lowerAll(b.Markers)
			b.Triggers = lowerAll(b.Triggers)
			boosts = append(boosts, b)
		}
	}
	if len(vocabs) > 0 {
		defs.Vocabularies = vocabs
	}
	if len(boosts) > 0 {
		defs.Boosts = boosts
	}
	return nil
}

func loadIntents(path string, defs *Definitions) error {
	var raw struct {
		APIKeywords []string `yaml:"api_keywords"`
	}
	ok, err := readOptional(path, &raw)
	if err != nil || !ok {
		return err
	}
	if len(raw.APIKeywords) > 0 {
		defs.APIKeywords = lowerAll(raw.APIKeywords)
	}
	return nil
}

func loadLimits(path string, defs *Definitions) error {
	var raw struct {
		Limits Limits `yaml:"limits"`
	}
	ok, err := readOptional(path, &raw)
	if err != nil || !ok {
		return err
	}
	if raw.Limits.MaxQueries > 0 {
		defs.Limits.MaxQueries = raw.Limits.MaxQueries
	}
	if raw.Limits.MaxTypes > 0 {
		defs.Limits.MaxTypes = raw.Limits.MaxTypes
	}
	if raw.Limits.MaxFields > 0 {
		defs.Limits.MaxFields = raw.Limits.MaxFields
	}
	if raw.Limits.MaxDepth > 0 {
		defs.Limits.MaxDepth = raw.Limits.MaxDepth
	}
	return nil
}

func loadSuggestions(path string, defs *Definitions) error {
	var raw struct {
		Suggestions []Suggestion `yaml:"suggestions"`
	}
	ok, err := readOptional(path, &raw)
	if err != nil || !ok {
		return err
	}
	if len(raw.Suggestions) > 0 {
		defs.Suggestions = raw.Suggestions
	}
	return nil
}

// readOptional unmarshals path into out. A missing file is not an error.
func readOptional(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}
	return true, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
