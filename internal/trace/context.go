// Package trace records what happened during each turn so the HTTP surface
// can show it afterwards.
package trace

import (
	"context"
	"fmt"
	"time"
)

type ctxKey struct{}

type turn struct {
	id    string
	store *Store
}

// WithTurn attaches a turn id (and the store its events go to) to ctx.
func WithTurn(ctx context.Context, store *Store, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, turn{id: id, store: store})
}

// TurnID returns the id attached by WithTurn, or "-".
func TurnID(ctx context.Context) string {
	if t, ok := ctx.Value(ctxKey{}).(turn); ok {
		return t.id
	}
	return "-"
}

// Record adds an event to the current turn. Without a turn it does nothing.
func Record(ctx context.Context, component, kind, format string, args ...any) {
	RecordDuration(ctx, component, kind, 0, format, args...)
}

func RecordDuration(ctx context.Context, component, kind string, d time.Duration, format string, args ...any) {
	t, ok := ctx.Value(ctxKey{}).(turn)
	if !ok || t.store == nil {
		return
	}
	var dur string
	if d > 0 {
		dur = d.String()
	}
	t.store.AddEvent(t.id, component, kind, fmt.Sprintf(format, args...), dur)
}
