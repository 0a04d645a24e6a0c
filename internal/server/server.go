// internal/server/server.go
//
// HTTP server constructor: listen address and timeouts come from the
// `http:` block of config, with hardening defaults for anything left
// unset.
//
//   • ReadTimeout   – abort slow-loris headers (default 10 s)
//   • WriteTimeout  – cap total response time (default 15 s)
//   • IdleTimeout   – close keep-alives on idle clients (default 60 s)
//

package server

import (
	"net/http"
	"time"

	"github.com/yanizio/atrium/internal/config"
)

// Fallback timeouts applied when the config leaves a field at zero.
const (
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 15 * time.Second
	DefaultIdleTimeout  = 60 * time.Second
)

// New constructs an *http.Server from the HTTP config block.
func New(cfg config.HTTP, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  seconds(cfg.ReadTimeout, DefaultReadTimeout),
		WriteTimeout: seconds(cfg.WriteTimeout, DefaultWriteTimeout),
		IdleTimeout:  seconds(cfg.IdleTimeout, DefaultIdleTimeout),
		// TLSConfig may be injected by callers (e.g., autocert).
	}
}

func seconds(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}
