package app

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/time/rate"

	"github.com/ccastromar/aos-graphql-explorer/internal/explorer"
	"github.com/ccastromar/aos-graphql-explorer/internal/logx"
	"github.com/ccastromar/aos-graphql-explorer/internal/trace"
)

// Max request size for POST /ask (1MB)
const maxAskBodyBytes int64 = 1 << 20

var askSchema = mustLoadSchema(`{
	"type": "object",
	"properties": {
		"input": {"type": "string", "minLength": 1, "maxLength": 4000}
	},
	"required": ["input"],
	"additionalProperties": false
}`)

func mustLoadSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(err)
	}
	return s
}

type askRequest struct {
	Input string `json:"input"`
}

type askResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Tool     string `json:"tool,omitempty"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// askHandler serves POST /ask: one synchronous explorer turn per request.
type askHandler struct {
	explorer *explorer.Orchestrator
	traces   *trace.Store
	apiKey   string
	perMin   int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newAskHandler(o *explorer.Orchestrator, traces *trace.Store, apiKey string, perMin int) *askHandler {
	if perMin <= 0 {
		perMin = 60
	}
	return &askHandler{
		explorer: o,
		traces:   traces,
		apiKey:   strings.TrimSpace(apiKey),
		perMin:   perMin,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (a *App) newAskHandler() *askHandler {
	return newAskHandler(a.explorer, a.traces, a.env.APIKey, a.env.RateLimitPerMin)
}

func (h *askHandler) RegisterHTTP(mux *http.ServeMux) {
	mux.HandleFunc("/ask", h.handleAsk)
}

func (h *askHandler) limiter(key string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(float64(h.perMin)/60), h.perMin)
		h.limiters[key] = l
	}
	return l
}

// clientKey picks an identifier for rate limiting: API key if present, else IP.
func clientKey(r *http.Request) string {
	if k := r.Header.Get("X-API-Key"); k != "" {
		return "key:" + k
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return "key:" + strings.TrimSpace(auth[7:])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return "ip:" + host
}

// checkAuth enforces the API key when API_KEY is set.
func (h *askHandler) checkAuth(r *http.Request) bool {
	if h.apiKey == "" {
		return true
	}
	if k := r.Header.Get("X-API-Key"); k != "" {
		return k == h.apiKey
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:]) == h.apiKey
	}
	return false
}

func (h *askHandler) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.checkAuth(r) {
		w.Header().Set("WWW-Authenticate", "Bearer, X-API-Key")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if !h.limiter(clientKey(r)).Allow() {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		http.Error(w, "unsupported media type", http.StatusUnsupportedMediaType)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAskBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := askSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		writeJSON(w, http.StatusBadRequest, askResponse{Status: "invalid", Error: strings.Join(msgs, "; ")})
		return
	}
	var req askRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	id := trace.NewTurnID()
	ctx := trace.WithTurn(r.Context(), h.traces, id)
	tool := h.explorer.Route(req.Input)

	logx.Info("API", "[%s] new request tool=%s input=%q", id, tool.Name(), req.Input)
	trace.Record(ctx, "API", "request", "%s", req.Input)

	out, err := tool.Handle(ctx, req.Input)
	if err != nil {
		trace.Record(ctx, "API", "rejected", "%v", err)
		writeJSON(w, http.StatusBadRequest, askResponse{ID: id, Status: "invalid", Tool: tool.Name(), Error: err.Error()})
		return
	}
	trace.Record(ctx, "API", "response", "%d chars", len(out))
	writeJSON(w, http.StatusOK, askResponse{ID: id, Status: "ok", Tool: tool.Name(), Response: out})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
