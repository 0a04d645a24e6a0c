// internal/pipeline/ssl.go
//
// Protocol (SSL) enforcer.
//
// Context
// -------
// Accounts choose their transport policy; outside production the check is
// inert so dev setups work over plain HTTP.  When the account enables SSL
// and the effective policy disagrees with the actual transport, the
// request is redirected to the same URL on the opposite scheme — query
// string intact, pending flash untouched (it rides in a cookie).  The
// correction is idempotent: the retried request passes the check.
package pipeline

import (
	"net/http"

	"github.com/yanizio/atrium/internal/account"
)

// EnforceSSL corrects the request scheme per account policy.
func (p *Pipeline) EnforceSSL(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !p.Cfg.Production() {
			next.ServeHTTP(w, r)
			return
		}

		acct := account.FromContext(r.Context())
		if acct == nil || !acct.Meta.SSLEnabled {
			next.ServeHTTP(w, r)
			return
		}

		secure := r.TLS != nil
		want := true
		if p.SecurePolicy != nil {
			want = p.SecurePolicy(r)
		}

		if secure == want {
			next.ServeHTTP(w, r)
			return
		}

		scheme := "https"
		if secure { // policy says insecure, arrived securely
			scheme = "http"
		}
		target := scheme + "://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	})
}
