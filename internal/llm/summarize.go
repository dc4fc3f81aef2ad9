package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ccastromar/aos-graphql-explorer/internal/schema"
)

// semanticsSchema is the shape every schema summary must have.
const semanticsSchema = `{
  "type": "object",
  "required": ["domain", "capabilities", "relationships"],
  "properties": {
    "domain": {"type": "string", "minLength": 1},
    "capabilities": {"type": "array", "items": {"type": "string"}},
    "relationships": {"type": "array", "items": {"type": "string"}}
  }
}`

var semanticsValidator = mustSchema(semanticsSchema)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded json schema: %v", err))
	}
	return s
}

// SummarizeSchema asks the model for a semantic summary of a simplified
// schema. The answer is validated before it is decoded.
func SummarizeSchema(ctx context.Context, c LLMClient, simplified schema.Simplified) (schema.Semantics, error) {
	rawJSON, _ := json.MarshalIndent(simplified, "", "  ")

	prompt := fmt.Sprintf(`Analyze this simplified GraphQL schema and return a JSON object with:
{
    "domain": "One sentence description of what this API provides",
    "capabilities": ["3-5 main features as bullet points"],
    "relationships": ["2-3 key data relationships"]
}

Schema: %s

Return ONLY valid JSON.`, string(rawJSON))

	out, err := c.Chat(ctx, prompt)
	if err != nil {
		return schema.Semantics{}, err
	}
	return parseSemantics(out)
}

func parseSemantics(out string) (schema.Semantics, error) {
	clean := sanitizeJSON(out)

	res, err := semanticsValidator.Validate(gojsonschema.NewStringLoader(clean))
	if err != nil {
		return schema.Semantics{}, malformed("summarizer", fmt.Errorf("summary is not JSON: %w", err))
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return schema.Semantics{}, malformed("summarizer", fmt.Errorf("summary does not match schema: %s", strings.Join(msgs, "; ")))
	}

	var sem schema.Semantics
	if err := json.Unmarshal([]byte(clean), &sem); err != nil {
		return schema.Semantics{}, malformed("summarizer", err)
	}
	return sem, nil
}
