package shared

import "context"

// Actor is the authenticated identity attached to a request by the gateway.
// Permissions are precomputed from the role; this core never looks them up.
type Actor struct {
	ID          int64
	Name        string
	Role        string
	Permissions []string
}

// HasPermission reports whether the actor carries the permission string.
func (a *Actor) HasPermission(perm string) bool {
	if a == nil {
		return false
	}
	for _, p := range a.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context, nil when absent.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorContextKey{}).(*Actor)
	return actor
}
