// Package explorer routes each user turn: listing known APIs, discovering
// new endpoints, or answering questions against the most relevant one.
package explorer

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/ccastromar/aos-graphql-explorer/internal/config"
	"github.com/ccastromar/aos-graphql-explorer/internal/graphql"
	"github.com/ccastromar/aos-graphql-explorer/internal/guard"
	"github.com/ccastromar/aos-graphql-explorer/internal/llm"
	"github.com/ccastromar/aos-graphql-explorer/internal/logx"
	"github.com/ccastromar/aos-graphql-explorer/internal/metrics"
	"github.com/ccastromar/aos-graphql-explorer/internal/registry"
	"github.com/ccastromar/aos-graphql-explorer/internal/relevance"
	"github.com/ccastromar/aos-graphql-explorer/internal/schema"
	"github.com/ccastromar/aos-graphql-explorer/internal/trace"
)

// Transport is the GraphQL side of a turn.
type Transport interface {
	Introspect(ctx context.Context, endpoint string) (*graphql.Schema, error)
	Execute(ctx context.Context, endpoint, query string) (map[string]any, error)
}

var _ Transport = (*graphql.Client)(nil)

type Deps struct {
	Registry    *registry.Registry
	Ranker      relevance.Ranker
	Model       llm.LLMClient
	Transport   Transport
	Simplifier  *schema.Simplifier
	Definitions *config.Definitions
}

type Orchestrator struct {
	registry    *registry.Registry
	ranker      relevance.Ranker
	model       llm.LLMClient
	transport   Transport
	simplifier  *schema.Simplifier
	keywords    []string
	suggestions []config.Suggestion

	discoveries singleflight.Group
	maxDepth    int
}

func New(d Deps) *Orchestrator {
	defs := d.Definitions
	if defs == nil {
		defs = config.Default()
	}
	reg := d.Registry
	if reg == nil {
		reg = registry.New()
	}
	ranker := d.Ranker
	if ranker == nil {
		ranker = relevance.NewScorer(defs)
	}
	simp := d.Simplifier
	if simp == nil {
		simp = schema.NewSimplifier(defs.Limits)
	}
	return &Orchestrator{
		registry:    reg,
		ranker:      ranker,
		model:       d.Model,
		transport:   d.Transport,
		simplifier:  simp,
		keywords:    lowerAll(defs.APIKeywords),
		suggestions: defs.Suggestions,
		maxDepth:    defs.Limits.MaxDepth,
	}
}

func (o *Orchestrator) Registry() *registry.Registry { return o.registry }

// Suggestions are the endpoints offered to new users.
func (o *Orchestrator) Suggestions() []config.Suggestion { return o.suggestions }

// IsURL reports whether input is routed to discovery.
func IsURL(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "http")
}

// IsAboutAPIs reports whether input asks about the known APIs.
func (o *Orchestrator) IsAboutAPIs(input string) bool {
	in := strings.ToLower(input)
	for _, k := range o.keywords {
		if strings.Contains(in, k) {
			return true
		}
	}
	return false
}

// Handle answers one turn. Failures come back as text, never as errors.
func (o *Orchestrator) Handle(ctx context.Context, input string) string {
	id := trace.TurnID(ctx)
	t := logx.Start(id, "Explorer", "turn")
	defer t.End()

	input = strings.TrimSpace(input)
	switch {
	case IsURL(input):
		trace.Record(ctx, "Explorer", "route", "discovery")
		return o.finish(ctx, "discovery", o.DiscoverMessage(ctx, input))
	case o.IsAboutAPIs(input):
		trace.Record(ctx, "Explorer", "route", "listing")
		metrics.Turns.WithLabelValues("listing").Inc()
		return listingMessage(o.registry.List(), o.suggestions)
	}

	out, err := o.Query(ctx, input)
	if err != nil {
		logx.Warn("Explorer", "[%s] turn failed: %v", id, err)
		trace.Record(ctx, "Explorer", "error", "%v", err)
		metrics.Turns.WithLabelValues("failed").Inc()
		return userMessage(err)
	}
	metrics.Turns.WithLabelValues("answered").Inc()
	return out
}

func (o *Orchestrator) finish(ctx context.Context, outcome, msg string) string {
	metrics.Turns.WithLabelValues(outcome).Inc()
	trace.Record(ctx, "Explorer", "done", "%s", outcome)
	return msg
}

// DiscoverMessage returns the cached summary of a known URL, or discovers
// it and returns the fresh summary. Failures are rendered as text.
func (o *Orchestrator) DiscoverMessage(ctx context.Context, url string) string {
	url = strings.TrimSpace(url)
	if e, ok := o.registry.Get(url); ok {
		return knownAPIMessage(e)
	}
	e, err := o.Discover(ctx, url)
	if err != nil {
		logx.Warn("Discovery", "[%s] %v", trace.TurnID(ctx), err)
		return userMessage(err)
	}
	return discoveredMessage(e)
}

// Discover introspects, simplifies and summarizes url, then registers it.
// Concurrent calls for the same url share one discovery. Nothing is
// registered unless every step succeeds.
func (o *Orchestrator) Discover(ctx context.Context, url string) (registry.APIEntry, error) {
	v, err, _ := o.discoveries.Do(url, func() (any, error) {
		if e, ok := o.registry.Get(url); ok {
			return e, nil
		}
		return o.discover(ctx, url)
	})
	if err != nil {
		return registry.APIEntry{}, err
	}
	return v.(registry.APIEntry), nil
}

func (o *Orchestrator) discover(ctx context.Context, url string) (registry.APIEntry, error) {
	id := trace.TurnID(ctx)
	logx.Info("Discovery", "[%s] discovering schema for %s", id, url)

	t := logx.Start(id, "Discovery", "introspect")
	raw, err := o.transport.Introspect(ctx, url)
	trace.RecordDuration(ctx, "GraphQL", "introspect", t.End(), "%s", url)
	if err != nil {
		metrics.Discoveries.WithLabelValues("discovery_failed").Inc()
		return registry.APIEntry{}, &DiscoveryFailure{URL: url, Err: err}
	}

	simplified := o.simplifier.Simplify(raw)
	logx.Debug("Discovery", "[%s] simplified schema: %d queries, %d types", id, len(simplified.Queries), len(simplified.Types))

	if o.model == nil {
		metrics.Discoveries.WithLabelValues("summarization_failed").Inc()
		return registry.APIEntry{}, &SummarizationFailure{URL: url, Err: errors.New("no model configured")}
	}
	t = logx.Start(id, "Discovery", "summarize")
	sem, err := llm.SummarizeSchema(ctx, o.model, simplified)
	trace.RecordDuration(ctx, "LLM", "summarize", t.End(), "%s", url)
	if err != nil {
		metrics.Discoveries.WithLabelValues("summarization_failed").Inc()
		return registry.APIEntry{}, &SummarizationFailure{URL: url, Err: err}
	}

	e := o.registry.Add(url, raw, sem)
	metrics.Discoveries.WithLabelValues("ok").Inc()
	logx.Info("Discovery", "[%s] registered %s (%s)", id, e.DisplayName, sem.Domain)
	return e, nil
}

// Query answers a free-text question against the best matching API.
// AmbiguousIntent outcomes are returned as text with a nil error.
func (o *Orchestrator) Query(ctx context.Context, input string) (string, error) {
	id := trace.TurnID(ctx)
	entries := o.registry.List()
	matches := o.ranker.Rank(input, entries)

	if len(matches) == 0 {
		if len(entries) == 0 {
			trace.Record(ctx, "Scorer", "empty", "no apis registered")
			return noAPIsMessage(o.suggestions), nil
		}
		trace.Record(ctx, "Scorer", "ambiguous", "no relevant api among %d", len(entries))
		return clarificationMessage(entries), nil
	}

	best := matches[0].Entry
	logx.Info("Explorer", "[%s] using %s (score %d) as it seems most relevant", id, best.DisplayName, matches[0].Score)
	trace.Record(ctx, "Scorer", "ranked", "%s score=%d candidates=%d", best.DisplayName, matches[0].Score, len(matches))

	fail := func(stage string, err error) (string, error) {
		return "", &QueryExecutionFailure{API: best.DisplayName, Stage: stage, Err: err}
	}
	if o.model == nil {
		return fail(StageDraft, errors.New("no model configured"))
	}

	t := logx.Start(id, "Explorer", "draft")
	query, err := llm.DraftQuery(ctx, o.model, best.RawSchema, input)
	trace.RecordDuration(ctx, "LLM", "draft", t.End(), "%s", query)
	if err != nil {
		return fail(StageDraft, err)
	}

	doc, err := graphql.ParseDocument(query)
	if err != nil {
		return fail(StageParse, err)
	}
	if err := guard.ValidateAll(doc, o.maxDepth); err != nil {
		return fail(StageGuard, err)
	}

	t = logx.Start(id, "Explorer", "execute")
	data, err := o.transport.Execute(ctx, best.URL, query)
	trace.RecordDuration(ctx, "GraphQL", "execute", t.End(), "%s", best.URL)
	if err != nil {
		return fail(StageExecute, err)
	}
	o.registry.RecordQuery(best.URL)

	others := make([]string, 0, len(matches)-1)
	for _, m := range matches[1:] {
		others = append(others, m.Entry.DisplayName)
	}

	t = logx.Start(id, "Explorer", "narrate")
	answer, err := llm.Narrate(ctx, o.model, llm.NarrateInput{
		Question:     input,
		APIName:      best.DisplayName,
		Data:         data,
		Alternatives: others,
	})
	trace.RecordDuration(ctx, "LLM", "narrate", t.End(), "%d chars", len(answer))
	if err != nil {
		return fail(StageNarrate, err)
	}

	if len(others) > 0 {
		answer += alternativesNote(best.DisplayName, others)
	}
	return answer, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
