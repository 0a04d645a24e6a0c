// internal/auth/context.go
//
// Ambient identity for one request.
//
// Usage
// -----
//	// Attach the resolved user after session decoding.
//	ctx = auth.WithUser(ctx, u)
//
//	// Downstream gates and the recorder retrieve it.
//	u := auth.CurrentUser(ctx)       // may be nil
//	ok := auth.SignedIn(ctx)
//
// Notes
// -----
// • Stores the *User directly in context; nil means anonymous.
// • Oxford commas, two spaces after periods.
package auth

import "context"

// userKey is unexported to avoid context-key collisions.
type userKey struct{}

// WithUser returns a new context carrying the signed-in user.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// CurrentUser extracts the user from ctx, or nil for anonymous requests.
func CurrentUser(ctx context.Context) *User {
	v, _ := ctx.Value(userKey{}).(*User)
	return v
}

// SignedIn reports whether the request carries a verified identity.
func SignedIn(ctx context.Context) bool { return CurrentUser(ctx) != nil }
