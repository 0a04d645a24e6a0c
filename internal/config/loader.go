// internal/config/loader.go
//
// Configuration loader.
//
// Context
// -------
// `Load()` builds one immutable Config from three layers, highest
// precedence last:
//
//  1. Optional `<root>/conf/.env` (dotenv values).
//  2. `conf/global.yaml`.
//  3. `ATRIUM_`-prefixed environment variables, where `__` maps to "."
//     (ATRIUM_HTTP__LISTEN_ADDR → http.listen_addr).
//
// The merged tree is unmarshalled into the typed model, validated, and
// cached in an atomic.Pointer for lock-free reads.  `Reload()` runs the
// whole sequence again and swaps the pointer.
//
// Logs go through the global sugared logger so early boot problems are
// visible on the console before the file logger is installed.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var current atomic.Pointer[Config]

// rootDir resolves ATRIUM_ROOT, or climbs from the working directory
// until it finds conf/global.yaml so `go run ./cmd/web` works from any
// sub-directory.  A bin/-shaped install falls back to the executable's
// parent.
func rootDir() string {
	if r := os.Getenv("ATRIUM_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	for dir := wd; ; {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if exe, err := os.Executable(); err == nil {
		if filepath.Base(filepath.Dir(exe)) == "bin" {
			return filepath.Dir(filepath.Dir(exe))
		}
	}
	return wd
}

// Load merges the three layers, validates, and caches the result.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}

	// The provider hands the callback the full variable name, prefix
	// included; strip it or the keys never match the model.
	if err := k.Load(env.Provider("ATRIUM_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "ATRIUM_")
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"env", cfg.Env,
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"themes_enabled", cfg.Themes.Enabled,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// Get returns the cached Config, or nil before the first Load.
func Get() *Config { return current.Load() }

// Reload re-runs Load and swaps the cached pointer.
func Reload() error { _, err := Load(); return err }

// Set installs cfg directly.  Tests use it to avoid touching the
// filesystem.
func Set(cfg *Config) { current.Store(cfg) }
