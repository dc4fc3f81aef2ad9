package explorer

import (
	"fmt"
	"strings"

	"github.com/ccastromar/aos-graphql-explorer/internal/config"
	"github.com/ccastromar/aos-graphql-explorer/internal/registry"
)

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "• " + it
	}
	return strings.Join(lines, "\n")
}

// noAPIsMessage invites the user to share an endpoint.
func noAPIsMessage(suggestions []config.Suggestion) string {
	var b strings.Builder
	b.WriteString("I haven't discovered any APIs yet. Share a GraphQL endpoint with me to get started!")
	if len(suggestions) > 0 {
		b.WriteString(" Here are some you can try:\n\n")
		b.WriteString(suggestionList(suggestions))
	}
	return b.String()
}

func suggestionList(suggestions []config.Suggestion) string {
	items := make([]string, len(suggestions))
	for i, s := range suggestions {
		items[i] = fmt.Sprintf("%s (%s)", s.URL, s.Description)
	}
	return bullets(items)
}

// listingMessage describes every known API, in registration order.
func listingMessage(entries []registry.APIEntry, suggestions []config.Suggestion) string {
	if len(entries) == 0 {
		return noAPIsMessage(suggestions)
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("• %s (%s)\n  %s\n  Key capabilities: %s",
			e.DisplayName, e.URL, e.Summary.Domain, strings.Join(e.Summary.Capabilities, ", "))
	}
	return "I know about these GraphQL APIs:\n\n" + strings.Join(parts, "\n\n") +
		"\n\nI can help you explore any of these APIs or discover new ones!"
}

// clarificationMessage is the AmbiguousIntent outcome.
func clarificationMessage(entries []registry.APIEntry) string {
	items := make([]string, len(entries))
	for i, e := range entries {
		items[i] = fmt.Sprintf("%s: %s", e.DisplayName, e.Summary.Domain)
	}
	return "I'm not sure which API would be best for that query. Here are the APIs I know about:\n\n" +
		bullets(items) + "\n\nCould you clarify what you're looking for?"
}

func knownAPIMessage(e registry.APIEntry) string {
	return fmt.Sprintf("I already know about the %s API.\n%s\n\nCapabilities:\n%s",
		e.DisplayName, e.Summary.Domain, bullets(e.Summary.Capabilities))
}

func discoveredMessage(e registry.APIEntry) string {
	return fmt.Sprintf("I've analyzed the API. %s\n\nCapabilities:\n%s\n\nWhat would you like to know?",
		e.Summary.Domain, bullets(e.Summary.Capabilities))
}

// alternativesNote names the runner-ups after the answer.
func alternativesNote(used string, others []string) string {
	return fmt.Sprintf("\n\nI used the %s API for this query, but I could also try %s if you'd like different information.",
		used, strings.Join(others, " or "))
}
