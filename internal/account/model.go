// internal/account/model.go
//
// Account row and aggregate.
//
// Context
// -------
// An Account is the isolated customer context (tenant) that determines
// branding, locale default, and feature flags for every request that hits
// its host.  `Record` mirrors one row in the persistent `account` table;
// `Account` aggregates the row with the per-account DB pool and key-value
// config loaded alongside it.  The registry stores a pointer to Account
// inside `entry`, along with a `lastSeen` UnixNano timestamp used by the
// evictor for idle and LRU eviction.
//
// Notes
// -----
//   - Handlers must treat Account as immutable after initial load.
//   - `Close` is invoked only by the registry evictor.
//   - Oxford commas, two spaces after periods.
package account

import (
	"time"

	"github.com/jmoiron/sqlx"
)

//
// Registry entry
//

type entry struct {
	account  *Account
	lastSeen int64 // UnixNano
}

//
// Account row
//

// Record mirrors one row in the persistent `account` table.  The operational
// state is captured by two nullable timestamps:
//
//   - SuspendedAt – account is temporarily disabled (e.g., billing).
//   - DeletedAt   – account is permanently removed.
//
// Either timestamp being non-NULL prevents the lazy-loader from serving the
// account.
type Record struct {
	ID            uint64     `db:"id"`
	Host          string     `db:"host"`
	Prefix        string     `db:"prefix"`
	DSN           string     `db:"dsn"`
	Title         string     `db:"title"`
	DefaultLocale string     `db:"default_locale"`
	SiteEnabled   bool       `db:"site_enabled"`
	SSLEnabled    bool       `db:"ssl_enabled"`
	SuspendedAt   *time.Time `db:"suspended_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

//
// Account aggregate
//

// Account groups all per-tenant runtime assets needed by request handlers.
type Account struct {
	Meta   Record            // Row from `account`
	Config map[string]string // Key-value pairs from `account_config`
	DB     *sqlx.DB          // Per-account connection pool
}

// IndexPath is the account's default landing page, locale-prefixed.
func (a *Account) IndexPath() string {
	return "/" + a.Meta.DefaultLocale + "/index"
}

// ComingSoonPath is the localized placeholder page served while the site
// is disabled.  The effective locale may differ from the account default
// when the request carried an explicit locale parameter.
func (a *Account) ComingSoonPath(locale string) string {
	if locale == "" {
		locale = a.Meta.DefaultLocale
	}
	return "/" + locale + "/coming_soon"
}

// Close is called by the registry evictor on idle or LRU eviction.
func (a *Account) Close() error { return a.DB.Close() }
