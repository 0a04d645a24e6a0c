// internal/activity/model.go
//
// Append-only audit records.
//
// Context
// -------
// One Record is written per inbound request in production: who (session,
// user, browser, address), and what (component, action, parameter
// snapshot, optional content slugs).  Rows are never updated or deleted
// by this code; retention is an operational concern.
package activity

import (
	"database/sql"
	"time"
)

// Record mirrors one row in the per-account `activity` table.
type Record struct {
	ID        int64          `db:"id"`
	SessionID sql.NullString `db:"session_id"`
	UserID    sql.NullInt64  `db:"user_id"`
	Browser   string         `db:"browser"`
	IPAddress string         `db:"ip_address"`
	Country   string         `db:"country"`
	Component string         `db:"component"`
	Action    string         `db:"action"`
	Params    string         `db:"params"` // JSON snapshot of request params
	Slug      sql.NullString `db:"slug"`
	Lesson    sql.NullString `db:"lesson"`
	CreatedAt time.Time      `db:"created_at"`
}
