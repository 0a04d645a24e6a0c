// internal/account/repository.go
//
// Query helpers against the global control-plane DB.
//
// Context
// -------
// The registry resolves an inbound Host header to one `account` row, then
// loads its key-value `account_config` rows.  Both queries run once per
// account load; the results live in memory until eviction.
package account

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// AllActive returns every account that is neither suspended nor deleted.
// Used by admin dashboards and batch jobs, not by the HTTP bootstrap path.
func AllActive(db *sqlx.DB) ([]Record, error) {
	const q = `
        SELECT id, host, prefix, dsn, title, default_locale,
               site_enabled, ssl_enabled,
               suspended_at, deleted_at, created_at, updated_at
        FROM   account
        WHERE  suspended_at IS NULL
          AND  deleted_at   IS NULL`
	var rows []Record
	if err := db.Select(&rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// ByHost fetches a single account row that is not suspended or deleted.  The
// caller supplies a context so the lookup respects request deadlines.
func ByHost(ctx context.Context, db *sqlx.DB, host string) (*Record, error) {
	const q = `
        SELECT id, host, prefix, dsn, title, default_locale,
               site_enabled, ssl_enabled,
               suspended_at, deleted_at, created_at, updated_at
        FROM   account
        WHERE  host = ?
          AND  suspended_at IS NULL
          AND  deleted_at   IS NULL
        LIMIT  1;`
	var rec Record
	if err := db.GetContext(ctx, &rec, q, host); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ConfigByAccount returns a map[key]value for one account_id.
func ConfigByAccount(ctx context.Context, db *sqlx.DB, accountID uint64) (map[string]string, error) {
	const q = `
	    SELECT  ` + "`key`, value" + `
	    FROM    account_config
	    WHERE   account_id = ?`
	rows := make([]struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}, 0, 8) // small default cap

	if err := db.SelectContext(ctx, &rows, q, accountID); err != nil {
		return nil, err
	}

	cfg := make(map[string]string, len(rows))
	for _, r := range rows {
		cfg[r.Key] = r.Value
	}
	return cfg, nil
}
