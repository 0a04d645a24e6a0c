// internal/account/context.go
//
// Ambient account state for one request.
//
// The resolver middleware stores the *Account in the request context so
// every later interceptor, handler, and the renderer can reach the tenant
// without explicit plumbing.  The account is resolved exactly once per
// request and is immutable for the request's lifetime.
package account

import "context"

// ctxKey is unexported to avoid context-key collisions.
type ctxKey struct{}

// WithAccount returns a new context carrying the resolved account.
func WithAccount(ctx context.Context, a *Account) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the account stored by the resolver, or nil when the
// resolver has not run.
func FromContext(ctx context.Context) *Account {
	v, _ := ctx.Value(ctxKey{}).(*Account)
	return v
}
