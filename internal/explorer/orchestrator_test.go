package explorer

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccastromar/aos-graphql-explorer/internal/config"
	"github.com/ccastromar/aos-graphql-explorer/internal/graphql"
	"github.com/ccastromar/aos-graphql-explorer/internal/llm"
	"github.com/ccastromar/aos-graphql-explorer/internal/registry"
	"github.com/ccastromar/aos-graphql-explorer/internal/schema"
)

const countriesURL = "https://countries.trevorblades.com/graphql"

// fakeTransport counts calls and answers with canned values.
type fakeTransport struct {
	mu          sync.Mutex
	schema      *graphql.Schema
	introErr    error
	data        map[string]any
	execErr     error
	introspects int
	executes    int
	lastQuery   string
}

func (f *fakeTransport) Introspect(ctx context.Context, endpoint string) (*graphql.Schema, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.introspects++
	return f.schema, f.introErr
}

func (f *fakeTransport) Execute(ctx context.Context, endpoint, query string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executes++
	f.lastQuery = query
	return f.data, f.execErr
}

// fakeLLM answers by prompt kind.
type fakeLLM struct {
	mu        sync.Mutex
	summary   string
	draft     string
	narration string
	errs      map[string]error
	prompts   []string
}

func (f *fakeLLM) Ping(ctx context.Context) error { return nil }

func (f *fakeLLM) Chat(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	switch {
	case strings.HasPrefix(prompt, "Analyze this simplified GraphQL schema"):
		return f.summary, f.errs["summarize"]
	case strings.HasPrefix(prompt, "Given this GraphQL schema"):
		return f.draft, f.errs["draft"]
	default:
		return f.narration, f.errs["narrate"]
	}
}

func countrySchema() *graphql.Schema {
	return &graphql.Schema{Schema: graphql.SchemaBody{
		QueryType: &graphql.NamedRef{Name: "Query"},
		Types: []graphql.Type{
			{Name: "Query", Kind: "OBJECT", Fields: []graphql.Field{{Name: "continent", Type: graphql.TypeRef{Name: "Continent"}}}},
			{Name: "Continent", Kind: "OBJECT", Fields: []graphql.Field{{Name: "name"}, {Name: "countries"}}},
		},
	}}
}

func countrySemantics() schema.Semantics {
	return schema.Semantics{
		Domain:        "Country and continent information",
		Capabilities:  []string{"Look up countries", "List languages by country"},
		Relationships: []string{"Countries belong to continents"},
	}
}

func newTestOrchestrator(tr *fakeTransport, m *fakeLLM) *Orchestrator {
	return New(Deps{Transport: tr, Model: m, Definitions: config.Default()})
}

func TestHandle_EmptyRegistryPromptsForURL(t *testing.T) {
	tr := &fakeTransport{}
	m := &fakeLLM{}
	o := newTestOrchestrator(tr, m)

	out := o.Handle(context.Background(), "population of France")
	require.Contains(t, out, "I haven't discovered any APIs yet")
	require.Contains(t, out, "https://countries.trevorblades.com/graphql (Country information)")
	require.Zero(t, tr.introspects)
	require.Zero(t, tr.executes)
	require.Empty(t, m.prompts)
}

func TestHandle_ListingNeedsNoNetwork(t *testing.T) {
	tr := &fakeTransport{}
	o := newTestOrchestrator(tr, &fakeLLM{})
	o.Registry().Add(countriesURL, countrySchema(), countrySemantics())

	out := o.Handle(context.Background(), "Which APIs do you know?")
	require.Contains(t, out, "I know about these GraphQL APIs:")
	require.Contains(t, out, "• countries.trevorblades.com ("+countriesURL+")")
	require.Contains(t, out, "Key capabilities: Look up countries, List languages by country")
	require.Zero(t, tr.introspects+tr.executes)
}

func TestHandle_DiscoversNewURL(t *testing.T) {
	tr := &fakeTransport{schema: countrySchema()}
	m := &fakeLLM{summary: `{"domain":"Country and continent information","capabilities":["Look up countries"],"relationships":["Countries belong to continents"]}`}
	o := newTestOrchestrator(tr, m)

	out := o.Handle(context.Background(), countriesURL)
	require.Equal(t, "I've analyzed the API. Country and continent information\n\nCapabilities:\n• Look up countries\n\nWhat would you like to know?", out)

	e, ok := o.Registry().Get(countriesURL)
	require.True(t, ok)
	require.Equal(t, 0, e.QueryCount)
	require.Equal(t, "countries.trevorblades.com", e.DisplayName)
	require.Contains(t, m.prompts[0], `"continent"`)
}

func TestHandle_KnownURLReturnsCachedSummary(t *testing.T) {
	tr := &fakeTransport{schema: countrySchema()}
	o := newTestOrchestrator(tr, &fakeLLM{})
	o.Registry().Add(countriesURL, countrySchema(), countrySemantics())

	out := o.Handle(context.Background(), countriesURL)
	require.True(t, strings.HasPrefix(out, "I already know about the countries.trevorblades.com API."))
	require.Contains(t, out, "• Look up countries")
	require.Zero(t, tr.introspects)
}

func TestHandle_URLWithApiInHostIsDiscovered(t *testing.T) {
	tr := &fakeTransport{introErr: errors.New("connection refused")}
	o := newTestOrchestrator(tr, &fakeLLM{})

	out := o.Handle(context.Background(), "https://rickandmortyapi.com/graphql")
	require.Equal(t, 1, tr.introspects)
	require.Contains(t, out, "I had trouble analyzing the API at https://rickandmortyapi.com/graphql")
}

func TestHandle_DiscoveryFailureRegistersNothing(t *testing.T) {
	tr := &fakeTransport{introErr: &graphql.TransportError{URL: countriesURL, Kind: graphql.Unreachable, Err: errors.New("dial tcp: refused")}}
	o := newTestOrchestrator(tr, &fakeLLM{})

	out := o.Handle(context.Background(), countriesURL)
	require.Contains(t, out, "Could you check the endpoint and try again?")
	require.Equal(t, 0, o.Registry().Len())
}

func TestHandle_SummarizationFailureRegistersNothing(t *testing.T) {
	tr := &fakeTransport{schema: countrySchema()}
	m := &fakeLLM{errs: map[string]error{"summarize": &llm.ModelError{Provider: "fake", Kind: llm.KindTimeout, Err: context.DeadlineExceeded}}}
	o := newTestOrchestrator(tr, m)

	out := o.Handle(context.Background(), countriesURL)
	require.Contains(t, out, "couldn't work out what it offers")
	require.Equal(t, 0, o.Registry().Len())

	// malformed summary is also a summarization failure
	m.errs = nil
	m.summary = "not json at all"
	out = o.Handle(context.Background(), countriesURL)
	require.Contains(t, out, "couldn't work out what it offers")
	require.Equal(t, 0, o.Registry().Len())
}

func TestHandle_AnswersWithBestAPIAndRecordsOnce(t *testing.T) {
	tr := &fakeTransport{data: map[string]any{"continent": map[string]any{"name": "Europe"}}}
	m := &fakeLLM{
		draft:     "```graphql\nquery { continent(code: \"EU\") { countries { languages { name } } } }\n```",
		narration: "People in Europe speak many languages, including French and German.",
	}
	o := newTestOrchestrator(tr, m)
	o.Registry().Add(countriesURL, countrySchema(), countrySemantics())

	out := o.Handle(context.Background(), "What languages are spoken in Europe")
	require.Equal(t, "People in Europe speak many languages, including French and German.", out)
	require.Equal(t, 1, tr.executes)
	require.True(t, strings.HasPrefix(tr.lastQuery, "query {"))

	e, _ := o.Registry().Get(countriesURL)
	require.Equal(t, 1, e.QueryCount)
}

func TestHandle_AppendsAlternatives(t *testing.T) {
	tr := &fakeTransport{data: map[string]any{}}
	m := &fakeLLM{draft: "{ countries { name } }", narration: "Here they are."}
	o := newTestOrchestrator(tr, m)
	o.Registry().Add(countriesURL, countrySchema(), countrySemantics())
	o.Registry().Add("https://geo.example/graphql", nil, schema.Semantics{Domain: "World country statistics"})

	out := o.Handle(context.Background(), "countries in asia")
	require.Contains(t, out, "Here they are.")
	require.Contains(t, out, "I used the countries.trevorblades.com API for this query, but I could also try geo.example if you'd like different information.")

	narratePrompt := m.prompts[len(m.prompts)-1]
	require.Contains(t, narratePrompt, "There are 1 other potentially relevant APIs: geo.example")
}

func TestHandle_AmbiguousListsKnownAPIs(t *testing.T) {
	tr := &fakeTransport{}
	o := newTestOrchestrator(tr, &fakeLLM{})
	o.Registry().Add(countriesURL, countrySchema(), countrySemantics())

	out := o.Handle(context.Background(), "zzz")
	require.Contains(t, out, "I'm not sure which API would be best for that query.")
	require.Contains(t, out, "• countries.trevorblades.com: Country and continent information")
	require.Zero(t, tr.executes)
}

func TestHandle_PayloadTooLarge(t *testing.T) {
	tr := &fakeTransport{execErr: &graphql.TransportError{URL: countriesURL, Kind: graphql.PayloadTooLarge, Status: http.StatusRequestEntityTooLarge, Err: errors.New("status 413")}}
	m := &fakeLLM{draft: "{ countries { name } }"}
	o := newTestOrchestrator(tr, m)
	o.Registry().Add(countriesURL, countrySchema(), countrySemantics())

	out := o.Handle(context.Background(), "list every country in asia")
	// "list" is an api keyword: that input is a listing request
	require.Contains(t, out, "I know about these GraphQL APIs:")

	out = o.Handle(context.Background(), "all countries in asia")
	require.Equal(t, tooLargeMessage, out)

	e, _ := o.Registry().Get(countriesURL)
	require.Equal(t, 0, e.QueryCount)
}

func TestHandle_ModelTooLargeOnDraft(t *testing.T) {
	tr := &fakeTransport{}
	m := &fakeLLM{errs: map[string]error{"draft": &llm.ModelError{Provider: "anthropic", Kind: llm.KindRejected, Status: 400, TooLarge: true, Err: errors.New("prompt is too long")}}}
	o := newTestOrchestrator(tr, m)
	o.Registry().Add(countriesURL, countrySchema(), countrySemantics())

	require.Equal(t, tooLargeMessage, o.Handle(context.Background(), "countries in asia"))
	require.Zero(t, tr.executes)
}

func TestHandle_GuardRejectsMutation(t *testing.T) {
	tr := &fakeTransport{}
	m := &fakeLLM{draft: `mutation { deleteCountry(code: "FR") { code } }`}
	o := newTestOrchestrator(tr, m)
	o.Registry().Add(countriesURL, countrySchema(), countrySemantics())

	out := o.Handle(context.Background(), "countries in europe")
	require.Contains(t, out, "I ran into an issue")
	require.Zero(t, tr.executes)
}

func TestQuery_DepthLimitComesFromDefinitions(t *testing.T) {
	const deep = "{ continent { countries { languages { name } } } }"

	defs := config.Default()
	defs.Limits.MaxDepth = 3
	tr := &fakeTransport{data: map[string]any{}}
	o := New(Deps{Transport: tr, Model: &fakeLLM{draft: deep, narration: "ok"}, Definitions: defs})
	o.Registry().Add(countriesURL, countrySchema(), countrySemantics())

	_, err := o.Query(context.Background(), "countries in europe")
	var qf *QueryExecutionFailure
	require.True(t, errors.As(err, &qf))
	require.Equal(t, StageGuard, qf.Stage)
	require.Zero(t, tr.executes)

	defs.Limits.MaxDepth = 4
	o = New(Deps{Transport: tr, Model: &fakeLLM{draft: deep, narration: "ok"}, Definitions: defs})
	o.Registry().Add(countriesURL, countrySchema(), countrySemantics())
	_, err = o.Query(context.Background(), "countries in europe")
	require.NoError(t, err)
	require.Equal(t, 1, tr.executes)
}

func TestHandle_UnparsableDraft(t *testing.T) {
	tr := &fakeTransport{}
	m := &fakeLLM{draft: "{ countries { name "}
	o := newTestOrchestrator(tr, m)
	o.Registry().Add(countriesURL, countrySchema(), countrySemantics())

	out := o.Handle(context.Background(), "countries in europe")
	require.Contains(t, out, "Would you like to try a different approach?")
	require.Zero(t, tr.executes)
}

func TestHandle_NarrationFailureAfterExecute(t *testing.T) {
	tr := &fakeTransport{data: map[string]any{}}
	m := &fakeLLM{draft: "{ countries { name } }", errs: map[string]error{"narrate": &llm.ModelError{Provider: "fake", Kind: llm.KindUnavailable, Err: errors.New("overloaded")}}}
	o := newTestOrchestrator(tr, m)
	o.Registry().Add(countriesURL, countrySchema(), countrySemantics())

	out := o.Handle(context.Background(), "countries in europe")
	require.Contains(t, out, "I ran into an issue")

	e, _ := o.Registry().Get(countriesURL)
	require.Equal(t, 1, e.QueryCount)
}

func TestQuery_ReturnsTypedFailure(t *testing.T) {
	tr := &fakeTransport{execErr: &graphql.TransportError{URL: countriesURL, Kind: graphql.Rejected, Err: graphql.ResponseErrors{{Message: "Cannot query field"}}}}
	m := &fakeLLM{draft: "{ countries { name } }"}
	o := newTestOrchestrator(tr, m)
	o.Registry().Add(countriesURL, countrySchema(), countrySemantics())

	_, err := o.Query(context.Background(), "countries in europe")
	var qf *QueryExecutionFailure
	require.True(t, errors.As(err, &qf))
	require.Equal(t, StageExecute, qf.Stage)
	require.Equal(t, "countries.trevorblades.com", qf.API)
	require.False(t, qf.TooLarge())
}

func TestDiscover_ConcurrentCallsShareOneIntrospection(t *testing.T) {
	tr := &fakeTransport{schema: countrySchema()}
	m := &fakeLLM{summary: `{"domain":"Countries","capabilities":[],"relationships":[]}`}
	o := newTestOrchestrator(tr, m)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := o.Discover(context.Background(), countriesURL)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, 1, o.Registry().Len())
	require.LessOrEqual(t, tr.introspects, 8)
	e, _ := o.Registry().Get(countriesURL)
	require.Equal(t, "Countries", e.Summary.Domain)
}

func TestTools(t *testing.T) {
	tr := &fakeTransport{}
	o := newTestOrchestrator(tr, &fakeLLM{})
	o.Registry().Add(countriesURL, countrySchema(), countrySemantics())

	require.Equal(t, "schema_discovery", o.Route(countriesURL).Name())
	require.Equal(t, "graphql_query", o.Route("what apis").Name())

	_, err := NewDiscoveryTool(o).Handle(context.Background(), "not a url")
	require.Error(t, err)
	_, err = NewQueryTool(o).Handle(context.Background(), "  ")
	require.ErrorIs(t, err, ErrEmptyInput)

	out, err := NewDiscoveryTool(o).Handle(context.Background(), countriesURL)
	require.NoError(t, err)
	require.Contains(t, out, "I already know about")
}

func TestRegistryReAddThroughOrchestratorRegistry(t *testing.T) {
	o := newTestOrchestrator(&fakeTransport{}, &fakeLLM{})
	r := o.Registry()
	r.Add(countriesURL, countrySchema(), countrySemantics())
	r.RecordQuery(countriesURL)
	r.Add(countriesURL, countrySchema(), countrySemantics())

	e, ok := r.Get(countriesURL)
	require.True(t, ok)
	require.Equal(t, 0, e.QueryCount)
	require.IsType(t, &registry.Registry{}, r)
}
