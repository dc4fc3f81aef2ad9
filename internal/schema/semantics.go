package schema

import "strings"

// Semantics is the model's description of an API, produced once at
// discovery time.
type Semantics struct {
	Domain        string   `json:"domain"`
	Capabilities  []string `json:"capabilities"`
	Relationships []string `json:"relationships"`
}

// SearchableText is the lowercase concatenation of domain, capabilities and
// relationships.
func (s Semantics) SearchableText() string {
	parts := make([]string, 0, 1+len(s.Capabilities)+len(s.Relationships))
	parts = append(parts, strings.ToLower(s.Domain))
	for _, c := range s.Capabilities {
		parts = append(parts, strings.ToLower(c))
	}
	for _, r := range s.Relationships {
		parts = append(parts, strings.ToLower(r))
	}
	return strings.Join(parts, " ")
}

// Clone returns a deep copy so stored values cannot be mutated by callers.
func (s Semantics) Clone() Semantics {
	return Semantics{
		Domain:        s.Domain,
		Capabilities:  append([]string(nil), s.Capabilities...),
		Relationships: append([]string(nil), s.Relationships...),
	}
}
