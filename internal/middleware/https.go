// Package middleware holds small, composable HTTP wrappers that sit
// outside the account-scoped pipeline.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/yanizio/atrium/internal/account"
)

// ForceHTTPS is the server-wide transport switch (config
// http.force_https); accounts additionally choose their own SSL policy
// inside the pipeline.  Plain-HTTP requests for a known, non-localhost
// host are answered with a 308 to the same URL over HTTPS.  Unknown hosts
// flow through so the pipeline's not-found rule can answer them.
func ForceHTTPS(reg *account.Registry, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := stripPort(r.Host)
		if r.TLS != nil || host == "localhost" {
			h.ServeHTTP(w, r)
			return
		}

		if _, err := reg.Resolve(context.Background(), host); err != nil {
			h.ServeHTTP(w, r)
			return
		}

		http.Redirect(w, r, "https://"+r.Host+r.URL.RequestURI(),
			http.StatusPermanentRedirect)
	})
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if i := strings.IndexByte(h, ':'); i != -1 {
		return h[:i]
	}
	return h
}
