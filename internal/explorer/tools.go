package explorer

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyInput is returned by tools given blank input.
var ErrEmptyInput = errors.New("input is empty")

// Tool is one capability the HTTP surface and the CLI can dispatch to.
type Tool interface {
	Name() string
	Description() string
	Handle(ctx context.Context, input string) (string, error)
}

// DiscoveryTool discovers (or recalls) a GraphQL endpoint.
type DiscoveryTool struct {
	o *Orchestrator
}

func NewDiscoveryTool(o *Orchestrator) *DiscoveryTool { return &DiscoveryTool{o: o} }

func (t *DiscoveryTool) Name() string { return "schema_discovery" }

func (t *DiscoveryTool) Description() string {
	return "Discovers and analyzes GraphQL API schemas"
}

func (t *DiscoveryTool) Handle(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmptyInput
	}
	if !IsURL(input) {
		return "", errors.New("input must be an http(s) URL")
	}
	return t.o.DiscoverMessage(ctx, input), nil
}

// QueryTool answers questions with the discovered APIs.
type QueryTool struct {
	o *Orchestrator
}

func NewQueryTool(o *Orchestrator) *QueryTool { return &QueryTool{o: o} }

func (t *QueryTool) Name() string { return "graphql_query" }

func (t *QueryTool) Description() string {
	return "Makes GraphQL queries using discovered schemas"
}

func (t *QueryTool) Handle(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}
	return t.o.Handle(ctx, input), nil
}

// Route picks the tool for input, the same way the CLI does.
func (o *Orchestrator) Route(input string) Tool {
	if IsURL(input) {
		return NewDiscoveryTool(o)
	}
	return NewQueryTool(o)
}
