// Package auth binds a verified principal to the request context and
// checks it against the address an operation acts on behalf of.
package auth

import (
	"context"

	"crowdfund-escrow/internal/core/domain"
)

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying the authenticated address.
func WithPrincipal(ctx context.Context, addr domain.Address) context.Context {
	return context.WithValue(ctx, principalKey{}, addr)
}

// PrincipalFrom returns the address bound by WithPrincipal, if any.
func PrincipalFrom(ctx context.Context) (domain.Address, bool) {
	addr, ok := ctx.Value(principalKey{}).(domain.Address)
	if !ok || addr.IsZero() {
		return "", false
	}
	return addr, true
}

// Authorizer allows a call only when the principal in the context is the
// address the call acts as.
type Authorizer struct{}

// NewAuthorizer returns a context based Authorizer.
func NewAuthorizer() Authorizer {
	return Authorizer{}
}

func (Authorizer) Authorize(ctx context.Context, as domain.Address) error {
	principal, ok := PrincipalFrom(ctx)
	if !ok {
		return domain.ErrUnauthorized.WithMetadata("reason", "no principal")
	}
	if principal != as {
		return domain.ErrUnauthorized.WithMetadata("required", as.String())
	}
	return nil
}
