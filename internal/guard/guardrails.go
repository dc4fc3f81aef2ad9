package guard

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
)

// DefaultMaxDepth bounds how deep a drafted selection set may nest when no
// limit is configured.
const DefaultMaxDepth = 8

// ---- helpers internos ----

func depth(set ast.SelectionSet, frags map[string]*ast.FragmentDefinition, seen map[string]bool) int {
	max := 0
	for _, sel := range set {
		d := 0
		switch s := sel.(type) {
		case *ast.Field:
			d = 1 + depth(s.SelectionSet, frags, seen)
		case *ast.InlineFragment:
			d = depth(s.SelectionSet, frags, seen)
		case *ast.FragmentSpread:
			if f, ok := frags[s.Name]; ok && !seen[s.Name] {
				seen[s.Name] = true
				d = depth(f.SelectionSet, frags, seen)
				delete(seen, s.Name)
			}
		}
		if d > max {
			max = d
		}
	}
	return max
}

// Solo lectura: nada de mutations ni subscriptions.
func ValidateOperationKinds(doc *ast.QueryDocument) error {
	for _, op := range doc.Operations {
		if op.Operation != ast.Query {
			return fmt.Errorf("operation %q is a %s; only queries are allowed", op.Name, op.Operation)
		}
	}
	return nil
}

// Exactly one operation, so the endpoint never needs an operationName.
func ValidateSingleOperation(doc *ast.QueryDocument) error {
	switch len(doc.Operations) {
	case 0:
		return fmt.Errorf("document has no operation")
	case 1:
		return nil
	default:
		return fmt.Errorf("document has %d operations, expected one", len(doc.Operations))
	}
}

// Sin anidamientos absurdos.
func ValidateDepth(doc *ast.QueryDocument, max int) error {
	frags := make(map[string]*ast.FragmentDefinition, len(doc.Fragments))
	for _, f := range doc.Fragments {
		frags[f.Name] = f
	}
	for _, op := range doc.Operations {
		if d := depth(op.SelectionSet, frags, map[string]bool{}); d > max {
			return fmt.Errorf("query depth %d exceeds limit %d", d, max)
		}
	}
	return nil
}

// ---- API pública: un solo punto de entrada ----

// ValidateAll runs every check. maxDepth <= 0 means DefaultMaxDepth.
func ValidateAll(doc *ast.QueryDocument, maxDepth int) error {
	if doc == nil {
		return fmt.Errorf("empty document")
	}
	if err := ValidateSingleOperation(doc); err != nil {
		return err
	}
	if err := ValidateOperationKinds(doc); err != nil {
		return err
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if err := ValidateDepth(doc, maxDepth); err != nil {
		return err
	}
	return nil
}
