package auth

import (
	"context"
)

type ctxKey struct{}

// Actor is the authenticated identity performing a request.
type Actor struct {
	UserID string
	Email  string
	Role   string
}

const RoleAdmin = "admin"

// SystemActor is used for writes triggered by events rather than people.
var SystemActor = &Actor{UserID: "system", Email: "system@omnipos.local", Role: RoleAdmin}

func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// ActorFromContext returns the actor placed by the auth middleware, or nil.
func ActorFromContext(ctx context.Context) *Actor {
	a, _ := ctx.Value(ctxKey{}).(*Actor)
	return a
}

func (a *Actor) Valid() bool {
	return a != nil && a.UserID != "" && a.Email != ""
}
