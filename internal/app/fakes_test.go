package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ccastromar/aos-graphql-explorer/internal/config"
	"github.com/ccastromar/aos-graphql-explorer/internal/llm"
)

const countrySummary = `{"domain":"Country and continent information","capabilities":["Look up countries","List languages"],"relationships":["Countries belong to continents"]}`

// scriptedLLM answers by prompt kind and can look at images.
type scriptedLLM struct {
	mu      sync.Mutex
	prompts []string
	images  int
	pingErr error
}

func (f *scriptedLLM) Ping(ctx context.Context) error { return f.pingErr }

func (f *scriptedLLM) Chat(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	switch {
	case strings.HasPrefix(prompt, "Analyze this simplified GraphQL schema"):
		return countrySummary, nil
	case strings.HasPrefix(prompt, "Given this GraphQL schema"):
		return "```graphql\n{ continent(code: \"EU\") { name countries { name } } }\n```", nil
	case strings.Contains(prompt, "Previous image analysis:"):
		return "I remember the picture.", nil
	default:
		return "Europe has France, Germany and Spain.", nil
	}
}

func (f *scriptedLLM) ChatImage(ctx context.Context, prompt string, img llm.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images++
	return "A " + img.MediaType + " picture of a map.", nil
}

func (f *scriptedLLM) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func testEnv() *config.EnvVars {
	return &config.EnvVars{
		AppEnv:          "test",
		LLMProvider:     "anthropic",
		LLMMaxTokens:    1000,
		LLMTimeout:      5 * time.Second,
		GraphQLTimeout:  5 * time.Second,
		Ranker:          "keyword",
		DefinitionsDir:  "../../definitions",
		RateLimitPerMin: 60,
		LogLevel:        "error",
	}
}
