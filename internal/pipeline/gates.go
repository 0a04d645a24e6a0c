// internal/pipeline/gates.go
//
// Authentication and authorization gates.
//
// Context
// -------
// These are mounted per route group, not in the base chain: the public
// surface needs neither.  Both gates only *enforce*; proving identity is
// the session codec's job, and role data lives in the account DB.
//
// Failure modes differ deliberately:
//
//   - RequireUser  → redirect to the login surface.  StoreLocation already
//     saved the current path, so the visitor lands back here after login.
//   - RequireAdmin → the visitor is known but lacks privilege: warning
//     flash plus redirect to the account's index page, never a hard error.
package pipeline

import (
	"net/http"

	"github.com/yanizio/atrium/internal/auth"
)

// RequireUser ensures a signed-in user for protected areas.
func (p *Pipeline) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.SignedIn(r.Context()) {
			p.dispatch(w, r, ErrLoginRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin ensures the signed-in user carries the admin capability.
// Anonymous visitors are sent to login first; known non-admins get the
// soft denial.
func (p *Pipeline) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := auth.CurrentUser(r.Context())
		if u == nil {
			p.dispatch(w, r, ErrLoginRequired)
			return
		}
		if !u.Admin() {
			p.dispatch(w, r, ErrAccessDenied)
			return
		}
		next.ServeHTTP(w, r)
	})
}
