package trace

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxTurns bounds how many turns are kept in memory.
const DefaultMaxTurns = 500

type Event struct {
	Time      time.Time `json:"time"`
	Component string    `json:"component"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Duration  string    `json:"duration,omitempty"`
}

// Store keeps the event timeline of recent turns. Oldest turns are
// dropped once max is reached.
type Store struct {
	mu    sync.RWMutex
	turns map[string][]Event
	order []string
	max   int
}

func NewStore(max int) *Store {
	if max <= 0 {
		max = DefaultMaxTurns
	}
	return &Store{
		turns: make(map[string][]Event),
		max:   max,
	}
}

// NewTurnID returns a fresh random turn id.
func NewTurnID() string {
	return uuid.NewString()
}

// AddEvent registra un evento para un turno.
func (s *Store) AddEvent(turnID, component, kind, msg, duration string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.turns[turnID]; !ok {
		s.order = append(s.order, turnID)
		if len(s.order) > s.max {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.turns, oldest)
		}
	}
	s.turns[turnID] = append(s.turns[turnID], Event{
		Time:      time.Now(),
		Component: component,
		Kind:      kind,
		Message:   msg,
		Duration:  duration,
	})
}

// Events returns a copy of the timeline of turnID.
func (s *Store) Events(turnID string) ([]Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	evs, ok := s.turns[turnID]
	if !ok {
		return nil, false
	}
	cp := make([]Event, len(evs))
	copy(cp, evs)
	return cp, true
}

// snapshot devuelve una copia segura de los datos.
func (s *Store) snapshot() map[string][]Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]Event, len(s.turns))
	for k, v := range s.turns {
		cp := make([]Event, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// HandleIndex lists turns, most recent activity first.
func (s *Store) HandleIndex(w http.ResponseWriter, r *http.Request) {
	data := s.snapshot()

	type row struct {
		ID        string `json:"id"`
		LastEvent Event  `json:"last_event"`
		Count     int    `json:"count"`
	}

	rows := make([]row, 0, len(data))
	for id, evs := range data {
		if len(evs) == 0 {
			continue
		}
		rows = append(rows, row{ID: id, LastEvent: evs[len(evs)-1], Count: len(evs)})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].LastEvent.Time.After(rows[j].LastEvent.Time)
	})

	writeJSON(w, http.StatusOK, rows)
}

// HandleTurn returns the full timeline of ?id=.
func (s *Store) HandleTurn(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}
	events, ok := s.Events(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "turn not found"})
		return
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "events": events})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
