// Package ctxutil carries request-scoped values through context.Context.
// It has no internal dependencies so the store adapters can import it.
package ctxutil

import "context"

// DefaultActor is recorded when no actor was attached to the context.
const DefaultActor = "blueprint"

// ActorKey is the context key for the actor ID.
type ActorKey struct{}

// WithActorID returns a context carrying the actor that performs a mutation.
// Empty IDs are ignored so callers can pass unresolved config values.
func WithActorID(ctx context.Context, actorID string) context.Context {
	if actorID == "" {
		return ctx
	}
	return context.WithValue(ctx, ActorKey{}, actorID)
}

// ActorFromContext returns the actor ID from context, or empty string if not set.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ActorKey{}).(string); ok {
		return v
	}
	return ""
}

// ActorOrDefault returns the context actor, falling back to DefaultActor.
func ActorOrDefault(ctx context.Context) string {
	if a := ActorFromContext(ctx); a != "" {
		return a
	}
	return DefaultActor
}
