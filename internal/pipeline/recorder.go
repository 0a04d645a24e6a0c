// internal/pipeline/recorder.go
//
// Activity-recording interceptor.
//
// Context
// -------
// Writes one audit row per request, synchronously, before the handler
// runs — so even requests that fail mid-action leave a trace.  Only armed
// in production; test and development traffic is never recorded.
//
// A failed write is logged and counted, and the request proceeds: audit
// logging is best-effort, never part of the request's success contract.
package pipeline

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/atrium/internal/account"
	"github.com/yanizio/atrium/internal/activity"
	"github.com/yanizio/atrium/internal/metrics"
)

// RecordActivity persists the audit record for this request.
func (p *Pipeline) RecordActivity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !p.Cfg.Production() {
			next.ServeHTTP(w, r)
			return
		}

		acct := account.FromContext(r.Context())
		if acct == nil {
			next.ServeHTTP(w, r)
			return
		}

		sess, ok := p.Sessions.Current(r)
		comp, action := routeParts(r.URL.Path)
		rec := activity.Build(r, sess, ok, comp, action)

		store := activity.Store{DB: acct.DB}
		if err := store.Insert(r.Context(), rec); err != nil {
			metrics.ActivityWriteErrorsTotal.Inc()
			zap.S().Warnw("activity write failed",
				"component", comp,
				"action", action,
				"err", err,
			)
		} else {
			metrics.ActivityWriteTotal.Inc()
		}

		next.ServeHTTP(w, r)
	})
}

// routeParts derives (component, action) from the path.  A leading
// two-letter segment is treated as the locale prefix and skipped.
// Missing segments default to the index page of the pages component.
func routeParts(path string) (component, action string) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) > 0 && len(segs[0]) == 2 {
		segs = segs[1:]
	}

	component, action = "pages", "index"
	if len(segs) > 0 && segs[0] != "" {
		component = segs[0]
	}
	if len(segs) > 1 && segs[1] != "" {
		action = segs[1]
	}
	return component, action
}
