package domain

import (
	"context"
	"time"
)

// Principal is the verified caller identity supplied by the authentication collaborator.
type Principal struct {
	UserID string
	Email  string
}

type principalKey struct{}

// ContextWithPrincipal returns a context carrying p.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by ContextWithPrincipal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated principal.
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}
