package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ccastromar/aos-graphql-explorer/internal/config"
	"github.com/ccastromar/aos-graphql-explorer/internal/explorer"
	"github.com/ccastromar/aos-graphql-explorer/internal/graphql"
	"github.com/ccastromar/aos-graphql-explorer/internal/llm"
	"github.com/ccastromar/aos-graphql-explorer/internal/logx"
	"github.com/ccastromar/aos-graphql-explorer/internal/registry"
	"github.com/ccastromar/aos-graphql-explorer/internal/relevance"
	"github.com/ccastromar/aos-graphql-explorer/internal/runtime"
	"github.com/ccastromar/aos-graphql-explorer/internal/trace"
)

const traceTurns = 200

type App struct {
	env      *config.EnvVars
	defs     *config.Definitions
	llm      llm.LLMClient
	explorer *explorer.Orchestrator
	traces   *trace.Store
	rt       *runtime.Runtime
	http     *HTTPServer
}

// Option overrides a collaborator New would otherwise build from the
// environment.
type Option func(*options)

type options struct {
	env       *config.EnvVars
	model     llm.LLMClient
	transport explorer.Transport
}

func WithEnv(env *config.EnvVars) Option {
	return func(o *options) { o.env = env }
}

func WithLLM(c llm.LLMClient) Option {
	return func(o *options) { o.model = c }
}

func WithTransport(t explorer.Transport) Option {
	return func(o *options) { o.transport = t }
}

func New(opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	env := o.env
	if env == nil {
		var err error
		if env, err = config.LoadEnv(); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}
	logx.SetLevel(env.LogLevel)

	defs, err := config.LoadFromDir(env.DefinitionsDir)
	if err != nil {
		return nil, fmt.Errorf("load definitions from %s: %w", env.DefinitionsDir, err)
	}

	model := o.model
	if model == nil {
		if model, err = NewLLMClient(env); err != nil {
			return nil, err
		}
	}

	transport := o.transport
	if transport == nil {
		transport = graphql.NewClient(env.GraphQLTimeout)
	}

	ranker, err := relevance.NewRanker(env.Ranker, defs)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	orch := explorer.New(explorer.Deps{
		Registry:    reg,
		Ranker:      ranker,
		Model:       model,
		Transport:   transport,
		Definitions: defs,
	})

	rt := &runtime.Runtime{
		DefinitionsLoaded: true,
		Provider:          env.LLMProvider,
		LLMClient:         model,
		Registry:          reg,
		StartedAt:         time.Now(),
	}
	traces := trace.NewStore(traceTurns)

	a := &App{
		env:      env,
		defs:     defs,
		llm:      model,
		explorer: orch,
		traces:   traces,
		rt:       rt,
	}
	a.http = NewHTTPServer(a.newAskHandler(), traces, rt)
	return a, nil
}

// NewLLMClient builds the model collaborator selected by LLM_PROVIDER.
func NewLLMClient(env *config.EnvVars) (llm.LLMClient, error) {
	switch strings.ToLower(env.LLMProvider) {
	case "anthropic", "":
		c := llm.NewAnthropicClient(env.LLMBaseURL, env.APIKeyFor(), env.LLMModel)
		c.MaxTokens = env.LLMMaxTokens
		c.Timeout = env.LLMTimeout
		return c, nil
	case "openai":
		c := llm.NewOpenAIClient(env.LLMBaseURL, env.APIKeyFor(), env.LLMModel)
		c.MaxTokens = env.LLMMaxTokens
		c.Timeout = env.LLMTimeout
		return c, nil
	case "ollama":
		c := llm.NewOllamaClient(env.OllamaBaseURL, env.OllamaModel)
		c.Timeout = env.LLMTimeout
		return c, nil
	}
	return nil, fmt.Errorf("unknown LLM_PROVIDER %q (want anthropic, openai or ollama)", env.LLMProvider)
}

// Explorer exposes the orchestrator to the CLI.
func (a *App) Explorer() *explorer.Orchestrator { return a.explorer }

func (a *App) Definitions() *config.Definitions { return a.defs }

// Handler is the HTTP surface, without a listener.
func (a *App) Handler() http.Handler { return a.http.Handler() }

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.http.Start(gctx)
	})

	logx.Info("App", "GraphQL explorer started (provider=%s, ranker=%s)", a.env.LLMProvider, a.env.Ranker)

	return g.Wait()
}
