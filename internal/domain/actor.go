package domain

import "context"

type actorKey struct{}

// WithActor returns a copy of ctx carrying the name recorded in created_by and
// modify_by columns.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by WithActor, if any.
func ActorFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	actor, ok := ctx.Value(actorKey{}).(string)
	if !ok || actor == "" {
		return "", false
	}
	return actor, true
}
