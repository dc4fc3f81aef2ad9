package graphql

// IntrospectionQuery asks an endpoint to describe its own schema. It only
// follows one level of ofType, which is all the simplifier looks at.
const IntrospectionQuery = `
query IntrospectionQuery {
    __schema {
        queryType { name }
        mutationType { name }
        subscriptionType { name }
        types {
            name
            kind
            description
            fields {
                name
                description
                args {
                    name
                    description
                    type { name kind ofType { name kind } }
                }
                type { name kind ofType { name kind } }
            }
        }
    }
}`

// Schema is the data part of an introspection response.
type Schema struct {
	Schema SchemaBody `json:"__schema"`
}

type SchemaBody struct {
	QueryType        *NamedRef `json:"queryType"`
	MutationType     *NamedRef `json:"mutationType,omitempty"`
	SubscriptionType *NamedRef `json:"subscriptionType,omitempty"`
	Types            []Type    `json:"types"`
}

type NamedRef struct {
	Name string `json:"name"`
}

type Type struct {
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
}

type Field struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Args        []InputArg `json:"args,omitempty"`
	Type        TypeRef    `json:"type"`
}

type InputArg struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Type        TypeRef `json:"type"`
}

type TypeRef struct {
	Name   string   `json:"name,omitempty"`
	Kind   string   `json:"kind,omitempty"`
	OfType *TypeRef `json:"ofType,omitempty"`
}

// QueryRootName returns the name of the query root type, "Query" when the
// endpoint does not report one.
func (s *Schema) QueryRootName() string {
	if s.Schema.QueryType != nil && s.Schema.QueryType.Name != "" {
		return s.Schema.QueryType.Name
	}
	return "Query"
}

// RootNames returns the names of every operation root type.
func (s *Schema) RootNames() map[string]bool {
	roots := map[string]bool{s.QueryRootName(): true, "Mutation": true, "Subscription": true}
	if s.Schema.MutationType != nil && s.Schema.MutationType.Name != "" {
		roots[s.Schema.MutationType.Name] = true
	}
	if s.Schema.SubscriptionType != nil && s.Schema.SubscriptionType.Name != "" {
		roots[s.Schema.SubscriptionType.Name] = true
	}
	return roots
}

// TypeByName looks a type up by exact name.
func (s *Schema) TypeByName(name string) (*Type, bool) {
	for i := range s.Schema.Types {
		if s.Schema.Types[i].Name == name {
			return &s.Schema.Types[i], true
		}
	}
	return nil, false
}
