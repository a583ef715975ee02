// Package auth provides bearer-token authentication for Atlas Tasks.
package auth

import (
	"context"

	"github.com/prn-tf/atlas-tasks/internal/domain"
)

// Principal is the minimal verified identity carried through a request:
// enough for every policy decision without an extra store round-trip.
// Services may still re-fetch the full user record for field-level needs.
type Principal struct {
	// UserID is the authenticated user's ID.
	UserID string

	// Role is the user's role at token issuance time.
	Role domain.Role
}

// IsAdmin reports whether the principal has administrative privileges.
func (p Principal) IsAdmin() bool {
	return p.Role.IsAdmin()
}

// principalContextKey is the context key for the request Principal.
type principalContextKey struct{}

// WithPrincipal returns a context carrying the verified principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the verified principal from the context.
// The second return is false when no middleware has run, which means the
// request never passed the authentication gate.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
