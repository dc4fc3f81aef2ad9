package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ccastromar/aos-graphql-explorer/internal/runtime"
)

// pingTimeout bounds the model ping of a readiness probe.
const pingTimeout = 3 * time.Second

func NewReadyHandler(rt *runtime.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rt.DefinitionsLoaded {
			http.Error(w, "definitions not loaded", http.StatusServiceUnavailable)
			return
		}
		if rt.LLMClient == nil {
			http.Error(w, "llm not configured", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := rt.LLMClient.Ping(ctx); err != nil {
			http.Error(w, "llm unreachable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(struct {
			Status string `json:"status"`
			runtime.Facts
		}{Status: "ready", Facts: rt.Facts()})
	}
}
