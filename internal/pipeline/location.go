// internal/pipeline/location.go
//
// Navigation-state tracker.
//
// Context
// -------
// Remembers the last non-auth URL visited so the auth component can send
// a freshly signed-in user back where they started.  Running this on
// every request (not just denials) means a visitor arriving from an email
// link has their target saved before any login redirect happens.
//
// Identity-management paths are excluded by pattern so login and logout
// can never become their own redirect target.
package pipeline

import (
	"net/http"
	"regexp"

	"github.com/yanizio/atrium/internal/session"
)

// identityPathPattern reserves the /users subtree for auth flows.
var identityPathPattern = regexp.MustCompile(`/users`)

// isIdentityPath reports whether path belongs to the identity-management
// surface.  Shared with the site-enabled gate's exemption.
func isIdentityPath(path string) bool {
	return identityPathPattern.MatchString(path)
}

// StoreLocation records the request's full path (with query) into the
// previous-URL session state, skipping identity-management paths.
func (p *Pipeline) StoreLocation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isIdentityPath(r.URL.Path) {
			session.StorePreviousURL(w, r.URL.RequestURI())
		}
		next.ServeHTTP(w, r)
	})
}
