// Package schema reduces introspection results to the bounded summary the
// model sees, and holds the semantic description the model returns.
package schema

import (
	"strings"

	"github.com/ccastromar/aos-graphql-explorer/internal/config"
	"github.com/ccastromar/aos-graphql-explorer/internal/graphql"
)

type QuerySummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ReturnType  string `json:"returnType,omitempty"`
}

type TypeSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Fields      []string `json:"fields"`
}

// Simplified is what gets serialized into the summarization prompt.
type Simplified struct {
	Queries []QuerySummary `json:"queries"`
	Types   []TypeSummary  `json:"types"`
}

// Simplifier caps the size of a schema summary regardless of schema size.
type Simplifier struct {
	limits config.Limits
}

func NewSimplifier(limits config.Limits) *Simplifier {
	if limits.MaxQueries <= 0 {
		limits.MaxQueries = config.DefaultLimits.MaxQueries
	}
	if limits.MaxTypes <= 0 {
		limits.MaxTypes = config.DefaultLimits.MaxTypes
	}
	if limits.MaxFields <= 0 {
		limits.MaxFields = config.DefaultLimits.MaxFields
	}
	return &Simplifier{limits: limits}
}

// Simplify keeps the first MaxQueries root query fields and the first
// MaxTypes object types (introspection types and operation roots excluded),
// each with its first MaxFields field names. Original order is preserved.
func (s *Simplifier) Simplify(in *graphql.Schema) Simplified {
	out := Simplified{
		Queries: []QuerySummary{},
		Types:   []TypeSummary{},
	}
	if in == nil {
		return out
	}

	if root, ok := in.TypeByName(in.QueryRootName()); ok {
		for _, f := range root.Fields {
			if len(out.Queries) == s.limits.MaxQueries {
				break
			}
			out.Queries = append(out.Queries, QuerySummary{
				Name:        f.Name,
				Description: f.Description,
				ReturnType:  returnTypeName(f.Type),
			})
		}
	}

	roots := in.RootNames()
	for _, t := range in.Schema.Types {
		if len(out.Types) == s.limits.MaxTypes {
			break
		}
		if t.Kind != "OBJECT" || strings.HasPrefix(t.Name, "__") || roots[t.Name] {
			continue
		}
		fields := make([]string, 0, min(len(t.Fields), s.limits.MaxFields))
		for _, f := range t.Fields {
			if len(fields) == s.limits.MaxFields {
				break
			}
			fields = append(fields, f.Name)
		}
		out.Types = append(out.Types, TypeSummary{
			Name:        t.Name,
			Description: t.Description,
			Fields:      fields,
		})
	}
	return out
}

// returnTypeName follows a single wrapper level (NON_NULL, LIST).
func returnTypeName(ref graphql.TypeRef) string {
	if ref.Name != "" {
		return ref.Name
	}
	if ref.OfType != nil {
		return ref.OfType.Name
	}
	return ""
}
