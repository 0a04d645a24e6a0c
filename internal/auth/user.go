// internal/auth/user.go
//
// User row and capability helpers.
//
// Context
// -------
// Atrium does not own credential machinery; it only needs enough of the
// user to run its gates: identity, the admin flag, and a last-access
// timestamp that is touched at most once per staleness window.  Roles
// beyond `is_admin` live in the ACL tables (internal/acl).
package auth

import "time"

// User mirrors one row in the per-account `user` table.
type User struct {
	ID             int64      `db:"id"`
	Email          string     `db:"email"`
	PasswordDigest string     `db:"password_digest"`
	IsAdmin        bool       `db:"is_admin"`
	LastAccessAt   *time.Time `db:"last_access_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// Admin reports the admin capability used by the authorization gate.
func (u *User) Admin() bool { return u != nil && u.IsAdmin }
