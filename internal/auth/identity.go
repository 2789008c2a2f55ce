package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller of a request
type Identity struct {
	// Subject is the token's sub claim
	Subject string

	// Provider names the provider that accepted the token
	Provider string

	Claims jwt.MapClaims
}

type identityKey struct{}

// WithIdentity stores id in ctx
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by the authentication
// middleware. It is absent in anonymous mode and on public paths.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
