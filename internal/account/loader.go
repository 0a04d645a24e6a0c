// internal/account/loader.go
//
// Turns a Host header into a live *Account.
package account

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/atrium/internal/database"
)

// loadAccount resolves host → *Account.  Steps:
//
//  1. Fetch account row.
//  2. Fetch key-value config rows.
//  3. Open small per-account DB pool (DSN may need a Vault password).
func loadAccount(ctx context.Context, global *sqlx.DB, host string) (*Account, error) {
	// 1. account row
	rec, err := ByHost(ctx, global, resolveLookupHost(host))
	if err != nil {
		return nil, ErrNotFound
	}

	// 2. key-value config
	cfg, err := ConfigByAccount(ctx, global, rec.ID)
	if err != nil {
		return nil, err
	}

	// 3. per-account DB pool
	dsn := rec.DSN
	if dsn == "" {
		key := sanitizeHost(host)
		pw, err := accountPassword(ctx, key)
		if err != nil {
			return nil, err
		}
		dsn = buildAccountDSN(key, pw)
	}
	db, err := database.OpenWithOptions(dsn, 5, 2)
	if err != nil {
		return nil, err
	}

	return &Account{
		Meta:   *rec,
		Config: cfg,
		DB:     db,
	}, nil
}
