package llm

import (
	"regexp"
	"strings"
)

var (
	jsonObjectRe = regexp.MustCompile(`\{[\s\S]*\}`)
	quoteFixer   = strings.NewReplacer("“", "\"", "”", "\"", "‘", "'", "’", "'")
)

// stripFences quita un bloque ```xxx ... ``` que envuelva toda la salida.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return strings.Trim(s, "`")
	}
	lines = lines[1:]
	if last := strings.TrimSpace(lines[len(lines)-1]); strings.HasPrefix(last, "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// sanitizeJSON extracts the first JSON object from a model answer.
func sanitizeJSON(s string) string {
	s = stripFences(s)
	if match := jsonObjectRe.FindString(s); match != "" {
		s = match
	}
	return strings.TrimSpace(quoteFixer.Replace(s))
}

// sanitizeQuery strips fences and any prose lines the model put before
// the document itself.
func sanitizeQuery(s string) string {
	var lines []string
	for _, l := range strings.Split(stripFences(s), "\n") {
		if !strings.HasPrefix(strings.TrimSpace(l), "```") {
			lines = append(lines, l)
		}
	}
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if strings.HasPrefix(t, "{") || strings.HasPrefix(t, "query") || strings.HasPrefix(t, "fragment") {
			return strings.TrimSpace(strings.Join(lines[i:], "\n"))
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
