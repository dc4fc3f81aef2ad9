package trace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStore_AddEventAndCopyIsolation(t *testing.T) {
	s := NewStore(10)
	s.AddEvent("t1", "Explorer", "info", "hello", "10ms")
	s.AddEvent("t1", "GraphQL", "info", "world", "5ms")

	evs, ok := s.Events("t1")
	require.True(t, ok)
	require.Len(t, evs, 2)

	evs[0].Message = "hacked"
	again, _ := s.Events("t1")
	require.Equal(t, "hello", again[0].Message)
}

func TestStore_EvictsOldestTurn(t *testing.T) {
	s := NewStore(2)
	s.AddEvent("a", "c", "info", "1", "")
	s.AddEvent("b", "c", "info", "2", "")
	s.AddEvent("c", "c", "info", "3", "")

	_, ok := s.Events("a")
	require.False(t, ok)
	_, ok = s.Events("c")
	require.True(t, ok)
}

func TestRecord_UsesTurnFromContext(t *testing.T) {
	s := NewStore(0)
	id := NewTurnID()
	ctx := WithTurn(context.Background(), s, id)

	require.Equal(t, id, TurnID(ctx))
	Record(ctx, "Explorer", "route", "input %q", "hi")
	RecordDuration(ctx, "LLM", "draft", 3*time.Millisecond, "drafted")

	evs, ok := s.Events(id)
	require.True(t, ok)
	require.Len(t, evs, 2)
	require.Equal(t, `input "hi"`, evs[0].Message)
	require.Equal(t, "3ms", evs[1].Duration)
}

func TestRecord_WithoutTurnIsNoop(t *testing.T) {
	require.Equal(t, "-", TurnID(context.Background()))
	Record(context.Background(), "Explorer", "info", "nothing")
}

func TestHandleTurn(t *testing.T) {
	s := NewStore(0)
	s.AddEvent("turnX", "Explorer", "info", "first", "1ms")
	s.AddEvent("turnX", "GraphQL", "info", "second", "2ms")

	t.Run("missing id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		s.HandleTurn(rr, httptest.NewRequest(http.MethodGet, "/turn", nil))
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
	t.Run("not found", func(t *testing.T) {
		rr := httptest.NewRecorder()
		s.HandleTurn(rr, httptest.NewRequest(http.MethodGet, "/turn?id=unknown", nil))
		require.Equal(t, http.StatusNotFound, rr.Code)
	})
	t.Run("ok", func(t *testing.T) {
		rr := httptest.NewRecorder()
		q := url.Values{"id": {"turnX"}}
		s.HandleTurn(rr, httptest.NewRequest(http.MethodGet, "/turn?"+q.Encode(), nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			ID     string  `json:"id"`
			Events []Event `json:"events"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		require.Equal(t, "turnX", body.ID)
		require.Len(t, body.Events, 2)
		require.Equal(t, "first", body.Events[0].Message)
	})
}

func TestHandleIndex_OrdersByLastEvent(t *testing.T) {
	s := NewStore(0)
	s.AddEvent("turnA", "c", "info", "a", "")
	time.Sleep(5 * time.Millisecond)
	s.AddEvent("turnB", "c", "info", "b", "")

	rr := httptest.NewRecorder()
	s.HandleIndex(rr, httptest.NewRequest(http.MethodGet, "/turns", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var rows []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&rows))
	require.Len(t, rows, 2)
	require.Equal(t, "turnB", rows[0].ID)
}
