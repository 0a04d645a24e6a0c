// internal/locale/locale.go
//
// Effective-locale resolution and ambient locale state.
//
// Context
// -------
// Every request gets exactly one effective locale:
//
//	explicit, non-empty `locale` parameter   → wins,
//	otherwise                                 → account default.
//
// The resolver middleware stores the result in the request context;
// renderers, redirect builders, and the activity recorder read it from
// there instead of a process-global.  Localized path helpers live here
// too, since every locale-prefixed URL is built the same way.
//
// Notes
// -----
// • Resolution must run after account resolution; the pipeline enforces
//   the ordering.
// • Oxford commas, two spaces after periods.
package locale

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/atrium/internal/account"
)

// Param is the request parameter carrying an explicit locale.
const Param = "locale"

type ctxKey struct{}

// Resolve computes the effective locale for r against the resolved
// account.  An empty parameter falls through to the account default.
func Resolve(r *http.Request, a *account.Account) string {
	if l := chi.URLParam(r, Param); l != "" {
		return l
	}
	if l := r.URL.Query().Get(Param); l != "" {
		return l
	}
	if a != nil {
		return a.Meta.DefaultLocale
	}
	return ""
}

// WithLocale returns a new context carrying the effective locale.
func WithLocale(ctx context.Context, l string) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the effective locale, or "" when the resolver has
// not run.
func FromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKey{}).(string)
	return v
}

// PathTo builds a locale-prefixed path: PathTo("fr", "coming_soon") →
// "/fr/coming_soon".
func PathTo(l, name string) string {
	return "/" + l + "/" + name
}
