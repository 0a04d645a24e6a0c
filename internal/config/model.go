// internal/config/model.go
//
// Typed configuration model for Atrium.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `ATRIUM_`-prefixed environment overrides – highest precedence.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// Env section
//

// Environments recognised by the SSL enforcer and the activity recorder.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

//
// HTTP section
//

// HTTP holds web-server tunables.  Timeouts are in seconds; zero means
// the server package default.
type HTTP struct {
	ListenAddr   string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS   bool   `koanf:"force_https"`
	ReadTimeout  int    `koanf:"read_timeout"  validate:"min=0"`
	WriteTimeout int    `koanf:"write_timeout" validate:"min=0"`
	IdleTimeout  int    `koanf:"idle_timeout"  validate:"min=0"`
}

//
// Database section
//

// Database holds DSN templates and secrets.
//
// The *template* (`GlobalDSN`) is kept in YAML so operators can tweak
// host, port, or flags without touching Vault.  The *secret* portion
// (`GlobalPassword`) is stored in Vault and injected at runtime, keeping
// credentials out of flat files and git history.
type Database struct {
	GlobalDSN      string `koanf:"global_dsn"      validate:"required"`
	GlobalPassword string `koanf:"global_password"`
	LocalhostAlias string `koanf:"localhost_alias"`
}

//
// Session section
//

// Session configures the signed session cookie.  The secret signs the JWT
// claims; rotating it invalidates every outstanding session.
type Session struct {
	Secret string `koanf:"secret" validate:"required,min=32"`
	MaxAge int    `koanf:"max_age"` // seconds; 0 → 14 days
}

//
// Themes section
//

// Themes is the global theming switch plus the fallback theme name used
// when an account prefix has no registered theme.
type Themes struct {
	Enabled bool   `koanf:"enabled"`
	Default string `koanf:"default"`
	BaseDir string `koanf:"base_dir"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or ATRIUM_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // ATRIUM_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	Env      string   `koanf:"env" validate:"required,oneof=production development test"`
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Session  Session  `koanf:"session"`
	Themes   Themes   `koanf:"themes"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}

// Production reports whether the process runs in the production-like mode
// that arms the SSL enforcer and the activity recorder.
func (c *Config) Production() bool { return c.Env == EnvProduction }
