// Package runtime holds the facts the readiness probe reports on.
package runtime

import (
	"time"

	"github.com/ccastromar/aos-graphql-explorer/internal/llm"
	"github.com/ccastromar/aos-graphql-explorer/internal/registry"
)

type Runtime struct {
	DefinitionsLoaded bool
	Provider          string
	LLMClient         llm.LLMClient
	Registry          *registry.Registry
	StartedAt         time.Time
}

// Facts is the readiness summary.
type Facts struct {
	Definitions bool   `json:"definitions"`
	Provider    string `json:"provider"`
	APIs        int    `json:"apis"`
	Uptime      string `json:"uptime"`
}

func (rt *Runtime) Facts() Facts {
	f := Facts{Definitions: rt.DefinitionsLoaded, Provider: rt.Provider}
	if rt.Registry != nil {
		f.APIs = rt.Registry.Len()
	}
	if !rt.StartedAt.IsZero() {
		f.Uptime = time.Since(rt.StartedAt).Truncate(time.Second).String()
	}
	return f
}
