// internal/pipeline/sitegate.go
//
// Site-enabled gate.
//
// Context
// -------
// Accounts can take their public site offline while keeping it reachable
// for staff.  When `site_enabled` is false every request is redirected to
// the localized coming-soon page except:
//
//   (a) the coming-soon page itself (by slug or path suffix),
//   (b) admins, and users holding the `beta` role,
//   (c) identity-management routes — the gate must never block the path
//       a user needs to prove who they are.
package pipeline

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/atrium/internal/account"
	"github.com/yanizio/atrium/internal/acl"
	"github.com/yanizio/atrium/internal/auth"
)

// comingSoonSlug names the one public route a disabled site still serves.
const comingSoonSlug = "coming_soon"

// SiteEnabled short-circuits non-staff traffic to the coming-soon page
// while the account's site is disabled.
func (p *Pipeline) SiteEnabled(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acct := account.FromContext(r.Context())
		if acct == nil || acct.Meta.SiteEnabled {
			next.ServeHTTP(w, r)
			return
		}

		if isComingSoonRequest(r) || isIdentityPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if u := auth.CurrentUser(r.Context()); u != nil {
			if u.Admin() {
				next.ServeHTTP(w, r)
				return
			}
			beta, err := acl.HasRole(r.Context(), acct.DB.DB, u.ID, acl.RoleBeta)
			if err != nil {
				zap.S().Warnw("beta role lookup failed", "uid", u.ID, "err", err)
			}
			if beta {
				next.ServeHTTP(w, r)
				return
			}
		}

		p.dispatch(w, r, ErrSiteDisabled)
	})
}

// isComingSoonRequest matches both the slug parameter and the direct
// locale-prefixed path form.
func isComingSoonRequest(r *http.Request) bool {
	if r.URL.Query().Get("slug") == comingSoonSlug {
		return true
	}
	return strings.HasSuffix(r.URL.Path, "/"+comingSoonSlug)
}
