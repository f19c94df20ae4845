package telemetry

import (
	"context"

	"github.com/google/uuid"
)

// turnIDKey is the context key type used to store a turn ID.
type turnIDKey struct{}

// NewTurnID returns a fresh turn identifier.
func NewTurnID() string {
	return "turn-" + uuid.NewString()
}

// WithTurnID returns a child context that carries the provided turn ID.
// If ctx is nil, context.Background() is used
func WithTurnID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, turnIDKey{}, id)
}

// TurnIDFromContext returns the turn ID from ctx, if present.
// Returns "", false if the value is missing or not a non-empty string.
func TurnIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	s, ok := ctx.Value(turnIDKey{}).(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// EnsureTurnID returns ctx unchanged when it already carries a turn ID,
// otherwise a child context with a new one.
func EnsureTurnID(ctx context.Context) (context.Context, string) {
	if id, ok := TurnIDFromContext(ctx); ok {
		return ctx, id
	}
	id := NewTurnID()
	return WithTurnID(ctx, id), id
}
