// Package countries is a small GraphQL endpoint with country, continent and
// language data. It backs the mock-graphql command and the end-to-end tests.
package countries

import (
	"net/http"
	"sort"
	"strings"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

const schemaSDL = `
schema {
	query: Query
}

type Query {
	continents: [Continent!]!
	continent(code: ID!): Continent
	countries(continent: String): [Country!]!
	country(code: ID!): Country
	languages: [Language!]!
}

# A continent and the countries on it.
type Continent {
	code: ID!
	name: String!
	countries: [Country!]!
}

type Country {
	code: ID!
	name: String!
	capital: String
	currency: String
	continent: Continent!
	languages: [Language!]!
}

type Language {
	code: ID!
	name: String!
}
`

// DefaultMaxBodyBytes is the request size above which the mock answers 413.
const DefaultMaxBodyBytes = 64 << 10

// Schema returns the parsed executable schema.
func Schema() *graphql.Schema {
	return graphql.MustParseSchema(schemaSDL, &queryResolver{})
}

// Handler serves POST GraphQL requests. Bodies larger than maxBody get an
// HTTP 413, like many public endpoints do.
func Handler(maxBody int64) http.Handler {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	h := &relay.Handler{Schema: Schema()}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if r.ContentLength > maxBody {
			http.Error(w, "request entity too large", http.StatusRequestEntityTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		h.ServeHTTP(w, r)
	})
}

// RegisterHandlers mounts the endpoint at /graphql.
func RegisterHandlers(mux *http.ServeMux) {
	mux.Handle("/graphql", Handler(DefaultMaxBodyBytes))
}

type queryResolver struct{}

func (q *queryResolver) Continents() []*continentResolver {
	out := make([]*continentResolver, 0, len(continents))
	for _, c := range continents {
		out = append(out, &continentResolver{c})
	}
	return out
}

func (q *queryResolver) Continent(args struct{ Code graphql.ID }) *continentResolver {
	for _, c := range continents {
		if strings.EqualFold(c.Code, string(args.Code)) {
			return &continentResolver{c}
		}
	}
	return nil
}

func (q *queryResolver) Countries(args struct{ Continent *string }) []*countryResolver {
	out := []*countryResolver{}
	for _, c := range countryList {
		if args.Continent != nil && !strings.EqualFold(c.Continent, *args.Continent) {
			continue
		}
		out = append(out, &countryResolver{c})
	}
	return out
}

func (q *queryResolver) Country(args struct{ Code graphql.ID }) *countryResolver {
	for _, c := range countryList {
		if strings.EqualFold(c.Code, string(args.Code)) {
			return &countryResolver{c}
		}
	}
	return nil
}

func (q *queryResolver) Languages() []*languageResolver {
	codes := make([]string, 0, len(languages))
	for code := range languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	out := make([]*languageResolver, 0, len(codes))
	for _, code := range codes {
		out = append(out, &languageResolver{languages[code]})
	}
	return out
}

type continentResolver struct{ c continent }

func (r *continentResolver) Code() graphql.ID { return graphql.ID(r.c.Code) }
func (r *continentResolver) Name() string     { return r.c.Name }

func (r *continentResolver) Countries() []*countryResolver {
	code := r.c.Code
	return (&queryResolver{}).Countries(struct{ Continent *string }{&code})
}

type countryResolver struct{ c country }

func (r *countryResolver) Code() graphql.ID { return graphql.ID(r.c.Code) }
func (r *countryResolver) Name() string     { return r.c.Name }
func (r *countryResolver) Capital() *string { return optional(r.c.Capital) }
func (r *countryResolver) Currency() *string {
	return optional(r.c.Currency)
}

func (r *countryResolver) Continent() *continentResolver {
	return (&queryResolver{}).Continent(struct{ Code graphql.ID }{graphql.ID(r.c.Continent)})
}

func (r *countryResolver) Languages() []*languageResolver {
	out := make([]*languageResolver, 0, len(r.c.Languages))
	for _, code := range r.c.Languages {
		out = append(out, &languageResolver{languages[code]})
	}
	return out
}

type languageResolver struct{ l language }

func (r *languageResolver) Code() graphql.ID { return graphql.ID(r.l.Code) }
func (r *languageResolver) Name() string     { return r.l.Name }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
