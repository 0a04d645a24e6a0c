// cmd/web/main.go
//
// Atrium – HTTP entry point.
//
// Request life-cycle
// ------------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load config (YAML + env overlays), then open the global
//     control-plane DB and log the active-account count.
//
//  4. Optionally connect Vault for per-account DB credentials.
//
//  5. Build the account registry (lazy-loads each account on first hit),
//     the theme registry, and the locale bundle.
//
//  6. Assemble the root chi router: security headers, the pipeline's base
//     chain, and every registered component.  Expose Prometheus /metrics.
//
//  7. Optionally wrap with ForceHTTPS so non-localhost HTTP requests are
//     308-redirected to HTTPS, then serve with hardened timeouts.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/atrium/internal/account"
	"github.com/yanizio/atrium/internal/component"
	"github.com/yanizio/atrium/internal/config"
	"github.com/yanizio/atrium/internal/database"
	"github.com/yanizio/atrium/internal/locale"
	"github.com/yanizio/atrium/internal/logger"
	"github.com/yanizio/atrium/internal/middleware"
	"github.com/yanizio/atrium/internal/pipeline"
	"github.com/yanizio/atrium/internal/requestinfo"
	"github.com/yanizio/atrium/internal/server"
	"github.com/yanizio/atrium/internal/session"
	"github.com/yanizio/atrium/internal/theme"
	"github.com/yanizio/atrium/internal/vault"

	_ "github.com/yanizio/atrium/components/admin"
	_ "github.com/yanizio/atrium/components/auth"
	_ "github.com/yanizio/atrium/components/pages"
)

const serverEnvPath = "/usr/local/etc/atrium/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 1.  Global DB connect ───────────────────────────────────────────
	//
	logOut.Infow("connecting to global DB")
	globalDB, err := database.Open(cfg.Database.GlobalDSN)
	if err != nil {
		logOut.Fatalf("connect global DB: %v", err)
	}
	defer globalDB.Close()
	logOut.Infow("global DB online")

	// Log active-account count as an early sanity check.
	var active int
	_ = globalDB.Get(&active, `
	    SELECT COUNT(*) FROM account
	    WHERE suspended_at IS NULL AND deleted_at IS NULL`)
	logOut.Infow("accounts found", "active", active)

	//
	// ── 2.  Vault (optional) ────────────────────────────────────────────
	//
	if os.Getenv("VAULT_ADDR") != "" {
		cli, err := vault.New(context.Background())
		if err != nil {
			logOut.Fatalf("vault: %v", err)
		}
		vault.SetShared(cli)
		logOut.Infow("vault online")
	}

	//
	// ── 3.  Registries and the locale bundle ───────────────────────────
	//
	registry := account.NewRegistry(globalDB, account.IdleTTL, account.MaxEntries)

	var themes *theme.Registry
	if cfg.Themes.Enabled {
		themes = theme.NewRegistry(cfg.Themes.BaseDir, cfg.Themes.Default)
	}

	locale.LoadBundle("conf/locales", []string{"en", "es", "fr", "de"})

	if geoPath := os.Getenv("ATRIUM_GEOIP_DB"); geoPath != "" {
		if err := requestinfo.InitGeo(geoPath); err != nil {
			logOut.Warnw("geoip disabled", "err", err)
		}
	}

	//
	// ── 4.  Pipeline and router ────────────────────────────────────────
	//
	sessions := session.NewCodec(cfg.Session.Secret, 0)
	pipe := pipeline.New(registry, sessions, themes, cfg)

	root := chi.NewRouter()
	root.Use(middleware.Security)
	for _, mw := range pipe.Base() {
		root.Use(mw)
	}
	for _, c := range component.All() {
		root.Mount(c.Mount(), c.Routes(pipe))
	}
	logOut.Infow("components mounted", "names", component.AllNames())

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", root)

	//
	// ── 5.  Serve (optionally behind ForceHTTPS) ───────────────────────
	//
	var handler http.Handler = mux
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(registry, mux)
	}

	srv := server.New(cfg.HTTP, handler)
	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
}
