// internal/pipeline/errors.go
//
// Gate failures and the ordered error-rule table.
//
// Context
// -------
// Every way the pipeline can refuse a request is a sentinel error, and
// every sentinel has exactly one response shape.  Instead of a rescue
// chain whose behavior depends on exception-hierarchy matching, the
// table below is an explicit, ordered list of (predicate, handler)
// pairs; `dispatch` walks it top to bottom and runs the first match.
// More specific predicates sit above the catch-all.
//
// Failure contract (unchanged in meaning from the original design):
//
//	account not found   → log URL + remote addr, empty 200 body
//	login required      → redirect to the login surface
//	access denied       → warning flash, redirect to account index
//	site disabled       → redirect to localized coming-soon page
//
// Nothing here ever panics or propagates; all failure paths resolve to
// an HTTP response.
package pipeline

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/atrium/internal/account"
	"github.com/yanizio/atrium/internal/auth"
	"github.com/yanizio/atrium/internal/flash"
	"github.com/yanizio/atrium/internal/locale"
	"github.com/yanizio/atrium/internal/metrics"
)

// Gate sentinels.  account.ErrNotFound joins them in the rule table.
var (
	ErrLoginRequired = errors.New("login required")
	ErrAccessDenied  = errors.New("access denied")
	ErrSiteDisabled  = errors.New("site disabled")
)

// LoginPath is the authentication surface unauthenticated visitors are
// sent to.  Not locale-prefixed; the auth component handles locale itself.
const LoginPath = "/users/login"

// rule pairs a predicate with its response handler.
type rule struct {
	match  func(error) bool
	handle func(p *Pipeline, w http.ResponseWriter, r *http.Request, err error)
}

// rules is evaluated in order; first match wins.
var rules = []rule{
	{
		match: func(err error) bool { return errors.Is(err, account.ErrNotFound) },
		handle: func(_ *Pipeline, w http.ResponseWriter, r *http.Request, err error) {
			zap.S().Errorw("domain not found",
				"url", r.URL.String(),
				"remote_addr", r.RemoteAddr,
			)
			metrics.GateDenialsTotal.WithLabelValues("account").Inc()
			w.WriteHeader(http.StatusOK) // empty body, nothing to leak
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, ErrLoginRequired) },
		handle: func(_ *Pipeline, w http.ResponseWriter, r *http.Request, _ error) {
			metrics.GateDenialsTotal.WithLabelValues("authentication").Inc()
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, ErrAccessDenied) },
		handle: func(_ *Pipeline, w http.ResponseWriter, r *http.Request, _ error) {
			metrics.GateDenialsTotal.WithLabelValues("authorization").Inc()
			loc := locale.FromContext(r.Context())
			flash.Set(w, flash.KindAlert,
				locale.T(loc, "errors.unauthorized", "Unauthorized Access!"))

			target := "/"
			if acct := account.FromContext(r.Context()); acct != nil {
				target = acct.IndexPath()
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, ErrSiteDisabled) },
		handle: func(_ *Pipeline, w http.ResponseWriter, r *http.Request, _ error) {
			metrics.GateDenialsTotal.WithLabelValues("site_enabled").Inc()
			target := "/coming_soon"
			if acct := account.FromContext(r.Context()); acct != nil {
				target = acct.ComingSoonPath(locale.FromContext(r.Context()))
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
		},
	},
	{
		// Catch-all: anything unrecognised is a server fault.
		match: func(error) bool { return true },
		handle: func(_ *Pipeline, w http.ResponseWriter, r *http.Request, err error) {
			fields := append([]any{
				"url", r.URL.String(),
				"err", err,
			}, requestFields(r)...)
			zap.S().Errorw("unhandled pipeline error", fields...)
			http.Error(w, http.StatusText(http.StatusInternalServerError),
				http.StatusInternalServerError)
		},
	},
}

// requestFields returns the ambient account and user as zap key-value
// pairs, so every error log carries who and where without each call site
// re-deriving them.
func requestFields(r *http.Request) []any {
	fields := make([]any, 0, 4)
	if acct := account.FromContext(r.Context()); acct != nil {
		fields = append(fields, "account", acct.Meta.Host)
	}
	if u := auth.CurrentUser(r.Context()); u != nil {
		fields = append(fields, "uid", u.ID)
	}
	return fields
}

// dispatch resolves err to its response.  The catch-all guarantees a
// response is always written.
func (p *Pipeline) dispatch(w http.ResponseWriter, r *http.Request, err error) {
	for _, ru := range rules {
		if ru.match(err) {
			ru.handle(p, w, r, err)
			return
		}
	}
}
