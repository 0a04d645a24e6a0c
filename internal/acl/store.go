// internal/acl/store.go
//
// Small query helpers for role checks.
//
// Context
// -------
// The Atrium role model lives entirely inside the per-account database:
//
//	role        (id PK, name, enabled)
//	user_role   (user_id, role_id)
//
// The gates need fast answers to two questions:
//  1. Which *role names* does user X have?   → `UserRoles()`
//  2. Does user X hold role R?               → `HasRole()`
//
// These helpers accept a *sql.DB scoped to the account* and perform simple
// parameterised queries.  They are thin; callers may wrap the results in
// their own per-request cache.
//
// Notes
// -----
// • The admin capability is a column on `user`, not a role; see
//   internal/auth.  Roles cover everything softer (beta, editor, …).
// • Oxford commas, two spaces after periods.
package acl

import (
	"context"
	"database/sql"
)

// RoleBeta is the named role that bypasses the site-enabled gate.
const RoleBeta = "beta"

// UserRoles returns the role *names* bound to userID.  Disabled roles are
// filtered out.
func UserRoles(ctx context.Context, db *sql.DB, userID int64) ([]string, error) {
	const q = `SELECT r.name
                 FROM user_role ur
                 JOIN role r ON r.id = ur.role_id
                WHERE ur.user_id = ? AND r.enabled = TRUE`

	rows, err := db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := make([]string, 0, 4)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

// HasRole reports whether userID holds the named, enabled role.  One
// indexed lookup with LIMIT 1; cheaper than fetching the full role list
// when only a single capability matters.
func HasRole(ctx context.Context, db *sql.DB, userID int64, name string) (bool, error) {
	const q = `SELECT 1
                 FROM user_role ur
                 JOIN role r ON r.id = ur.role_id
                WHERE ur.user_id = ?
                  AND r.name = ?
                  AND r.enabled = TRUE
                LIMIT 1`

	var dummy int
	err := db.QueryRowContext(ctx, q, userID, name).Scan(&dummy)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
