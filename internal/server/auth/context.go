package auth

import (
	"context"

	"github.com/jobdeck/jobdeck/internal/server/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityContextKey contextKey = "identity"

// ContextWithIdentity returns a child context carrying the resolved identity.
func ContextWithIdentity(ctx context.Context, ident *models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, ident)
}

// IdentityFromContext retrieves the resolved identity from the context.
// Returns nil if the auth middleware has not run.
func IdentityFromContext(ctx context.Context) *models.Identity {
	ident, ok := ctx.Value(identityContextKey).(*models.Identity)
	if !ok {
		return nil
	}
	return ident
}
