// Package registry keeps the GraphQL APIs discovered during this process.
// Nothing is persisted; entries live until the process exits.
package registry

import (
	"net/url"
	"sync"
	"time"

	"github.com/ccastromar/aos-graphql-explorer/internal/graphql"
	"github.com/ccastromar/aos-graphql-explorer/internal/metrics"
	"github.com/ccastromar/aos-graphql-explorer/internal/schema"
)

// APIEntry is a registered endpoint. URL, RawSchema and Summary never
// change for the life of an entry.
type APIEntry struct {
	URL         string
	DisplayName string
	RawSchema   *graphql.Schema
	Summary     schema.Semantics
	QueryCount  int
	LastQuery   time.Time
}

type Registry struct {
	mu      sync.RWMutex
	entries map[string]*APIEntry
	order   []string
	now     func() time.Time
}

type Option func(*Registry)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*APIEntry),
		now:     time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Add creates or overwrites the entry for rawURL. An overwrite resets the
// query counter and keeps the original listing position.
func (r *Registry) Add(rawURL string, raw *graphql.Schema, summary schema.Semantics) APIEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[rawURL]; !ok {
		r.order = append(r.order, rawURL)
	}
	e := &APIEntry{
		URL:         rawURL,
		DisplayName: DisplayName(rawURL),
		RawSchema:   raw,
		Summary:     summary.Clone(),
		QueryCount:  0,
		LastQuery:   r.now(),
	}
	r.entries[rawURL] = e
	metrics.RegisteredAPIs.Set(float64(len(r.order)))
	return e.snapshot()
}

// Get is an exact, case-sensitive lookup.
func (r *Registry) Get(rawURL string) (APIEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[rawURL]
	if !ok {
		return APIEntry{}, false
	}
	return e.snapshot(), true
}

// List returns every entry in insertion order.
func (r *Registry) List() []APIEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]APIEntry, 0, len(r.order))
	for _, u := range r.order {
		out = append(out, r.entries[u].snapshot())
	}
	return out
}

// RecordQuery bumps the counter of rawURL. Unknown URLs are ignored.
func (r *Registry) RecordQuery(rawURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[rawURL]
	if !ok {
		return
	}
	e.QueryCount++
	e.LastQuery = r.now()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (e *APIEntry) snapshot() APIEntry {
	cp := *e
	cp.Summary = e.Summary.Clone()
	return cp
}

// DisplayName is the host part of rawURL, or rawURL itself when it has none.
func DisplayName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
