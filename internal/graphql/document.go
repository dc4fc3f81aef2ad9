package graphql

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// ParseDocument parses a drafted executable document. It does not validate
// against the endpoint schema; the endpoint does that.
func ParseDocument(query string) (*ast.QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "drafted", Input: query})
	if err != nil {
		return nil, fmt.Errorf("parse drafted query: %w", err)
	}
	return doc, nil
}
