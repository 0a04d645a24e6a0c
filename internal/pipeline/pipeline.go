// internal/pipeline/pipeline.go
//
// Request scoping and authorization pipeline.
//
/*
Context
--------
Every inbound request passes through a fixed chain of interceptors before
it reaches a handler:

  1. ResolveAccount   – host → *Account, ambient for the whole request
  2. requestinfo.Enrich – UA, client IP, geo (separate package)
  3. Identity         – decode session cookie, load user, touch last-access
  4. Locale           – explicit param or account default
  5. Theme            – account prefix → theme, when theming is enabled
  6. SiteEnabled      – coming-soon redirect unless bypassed
  7. EnforceSSL       – scheme correction per account policy (production)
  8. StoreLocation    – previous-URL state for post-login redirect
  9. RecordActivity   – one audit row per request, pre-action (production)

Gates for protected and admin areas (RequireUser, RequireAdmin in
gates.go) are mounted per route group between the base chain and the
handler, so the public surface pays nothing for them.

Any gate may short-circuit the chain; every refusal goes through the
ordered error-rule table in errors.go and resolves to a redirect or a
minimal response.  Account resolution always runs first: locale, theme,
site-enabled, and SSL policy are all account-derived.

Notes
-----
  • The chain holds no per-request mutable state of its own; everything
    ambient lives in the request context.
  • Oxford commas, two spaces after periods.
*/
package pipeline

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/atrium/internal/account"
	"github.com/yanizio/atrium/internal/auth"
	"github.com/yanizio/atrium/internal/config"
	"github.com/yanizio/atrium/internal/locale"
	"github.com/yanizio/atrium/internal/requestinfo"
	"github.com/yanizio/atrium/internal/session"
	"github.com/yanizio/atrium/internal/theme"
)

// Pipeline bundles the collaborators every interceptor needs.  Construct
// once at boot; safe for concurrent use.
type Pipeline struct {
	Accounts *account.Registry
	Sessions *session.Codec
	Themes   *theme.Registry
	Cfg      *config.Config

	// SecurePolicy lets an area opt out of the secure-transport default.
	// nil means "always require secure transport when the account enables
	// SSL", matching the base behavior subclasses overrode upstream.
	SecurePolicy func(*http.Request) bool
}

// New wires a Pipeline.
func New(accounts *account.Registry, sessions *session.Codec, themes *theme.Registry, cfg *config.Config) *Pipeline {
	return &Pipeline{
		Accounts: accounts,
		Sessions: sessions,
		Themes:   themes,
		Cfg:      cfg,
	}
}

// Base returns the ordered middleware chain applied to every route.
func (p *Pipeline) Base() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		p.ResolveAccount,
		requestinfo.Enrich,
		p.Identity,
		p.Locale,
		p.Theme,
		p.SiteEnabled,
		p.EnforceSSL,
		p.StoreLocation,
		p.RecordActivity,
	}
}

//
// 1. Account resolution
//

// ResolveAccount resolves exactly one account for the request and scopes
// it around the entire downstream chain, so response rendering still sees
// the tenant.  Unknown hosts terminate here via the error rules.
func (p *Pipeline) ResolveAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := stripPort(r.Host)

		acct, err := p.Accounts.Resolve(r.Context(), host)
		if err != nil {
			p.dispatch(w, r, err)
			return
		}

		ctx := account.WithAccount(r.Context(), acct)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

//
// 3. Identity
//

// Identity decodes the session cookie and, for signed-in visitors, loads
// the user row from the account DB and touches its last-access timestamp.
// Anonymous and unverifiable sessions pass through as anonymous.
func (p *Pipeline) Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := p.Sessions.Current(r)
		if !ok || sess.UID == 0 {
			next.ServeHTTP(w, r)
			return
		}

		acct := account.FromContext(r.Context())
		if acct == nil {
			next.ServeHTTP(w, r)
			return
		}

		store := auth.Store{DB: acct.DB}
		u, err := store.ByID(r.Context(), sess.UID)
		if err != nil {
			// Stale cookie for a vanished user; treat as anonymous.
			zap.S().Debugw("session user lookup failed", "uid", sess.UID, "err", err)
			next.ServeHTTP(w, r)
			return
		}

		if err := store.TouchLastAccess(r.Context(), u.ID); err != nil {
			zap.S().Warnw("last-access touch failed", "uid", u.ID, "err", err)
		}

		ctx := auth.WithUser(r.Context(), u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

//
// 4. Locale
//

// Locale computes the effective locale (explicit param beats account
// default) and makes it ambient for rendering and recording.
func (p *Pipeline) Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acct := account.FromContext(r.Context())
		loc := locale.Resolve(r, acct)
		ctx := locale.WithLocale(r.Context(), loc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

//
// 5. Theme
//

// Theme selects the account's theme when theming is globally enabled.
// Pure derived state; a registry miss already fell back to the default.
func (p *Pipeline) Theme(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !p.Cfg.Themes.Enabled || p.Themes == nil {
			next.ServeHTTP(w, r)
			return
		}
		acct := account.FromContext(r.Context())
		if acct == nil {
			next.ServeHTTP(w, r)
			return
		}
		th := p.Themes.ForPrefix(acct.Meta.Prefix)
		next.ServeHTTP(w, r.WithContext(theme.WithTheme(r.Context(), th)))
	})
}

//
// helpers
//

// stripPort removes any “:port” suffix from the Host header.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
