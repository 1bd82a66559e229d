// Package identity resolves the authenticated user for a request.
//
// Sessions are minted by the external OAuth sign-in flow and stored server
// side; this package only verifies session tokens and exposes the resulting
// identity. An absent identity means the request is unauthenticated.
package identity

import "context"

// Identity is the authenticated user reference used to attribute carts,
// orders, and queries.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// Session is a stored login session as written by the sign-in flow.
type Session struct {
	TokenHash string
	UserID    string
	Email     string
	Name      string
}

// Repository provides lookup of active sessions by token hash.
type Repository interface {
	FindByTokenHash(ctx context.Context, hash string) (*Session, error)
}

type contextKey struct{}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext extracts the identity from the context. The second return
// value is false when the request is unauthenticated.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
