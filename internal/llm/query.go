package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ccastromar/aos-graphql-explorer/internal/graphql"
)

// DraftQuery asks the model for a single GraphQL query answering question
// against the full introspected schema.
func DraftQuery(ctx context.Context, c LLMClient, raw *graphql.Schema, question string) (string, error) {
	var body any
	if raw != nil {
		body = raw.Schema
	}
	schemaJSON, _ := json.MarshalIndent(body, "", "  ")

	prompt := fmt.Sprintf(`Given this GraphQL schema and user question, generate a valid GraphQL query.

Schema: %s
Question: %q

Return ONLY the GraphQL query, no explanation.`, string(schemaJSON), question)

	out, err := c.Chat(ctx, prompt)
	if err != nil {
		return "", err
	}
	q := sanitizeQuery(out)
	if q == "" {
		return "", malformed("drafter", fmt.Errorf("empty query"))
	}
	return q, nil
}

// NarrateInput carries what the narrator needs to answer the user.
type NarrateInput struct {
	Question     string
	APIName      string
	Data         map[string]any
	Alternatives []string
}

// Narrate turns raw query data into a natural-language answer.
func Narrate(ctx context.Context, c LLMClient, in NarrateInput) (string, error) {
	dataJSON, _ := json.MarshalIndent(in.Data, "", "  ")

	var note string
	if len(in.Alternatives) > 0 {
		note = fmt.Sprintf("Note: There are %d other potentially relevant APIs: %s\n\n",
			len(in.Alternatives), strings.Join(in.Alternatives, ", "))
	}

	prompt := fmt.Sprintf(`The user asked: %q
I queried the %s API and got this data: %s

%sAnalyze the data and provide a clear, natural response that answers the user's question.
If the data seems insufficient, mention that we could try another relevant API.`,
		in.Question, in.APIName, string(dataJSON), note)

	out, err := c.Chat(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
