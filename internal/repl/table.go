package repl

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ccastromar/aos-graphql-explorer/internal/registry"
)

// WriteAPITable renders the registry listing as a table.
func WriteAPITable(w io.Writer, entries []registry.APIEntry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Domain", "Queries", "Last used", "URL"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, e := range entries {
		last := "-"
		if !e.LastQuery.IsZero() {
			last = e.LastQuery.Format("15:04:05")
		}
		table.Append([]string{
			e.DisplayName,
			e.Summary.Domain,
			strconv.Itoa(e.QueryCount),
			last,
			e.URL,
		})
	}
	table.Render()
}

// APITable returns the rendered table, or a hint when nothing is known yet.
func APITable(entries []registry.APIEntry) string {
	if len(entries) == 0 {
		return "No APIs discovered yet. Paste a GraphQL endpoint URL to add one."
	}
	var b strings.Builder
	WriteAPITable(&b, entries)
	return strings.TrimRight(b.String(), "\n")
}
