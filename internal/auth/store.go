// internal/auth/store.go
//
// User queries against the per-account DB.
//
// Context
// -------
// Thin sqlx helpers in the same shape as internal/acl: callers hand in a
// context and get explicit errors back.  `TouchLastAccess` implements the
// “update last_access if stale” behavior: the WHERE clause makes the
// write a no-op when the current value is fresh, so one query both checks
// and updates without a read-modify-write race.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// TouchInterval is the staleness window for last-access updates.  Within
// the window repeated requests do not touch the row.
const TouchInterval = 5 * time.Minute

// ResetTTL is how long a password-reset token stays usable.
const ResetTTL = 2 * time.Hour

// ErrUnknownUser is returned by lookups that find no matching row.
var ErrUnknownUser = errors.New("unknown user")

// Store wraps the per-account DB pool for user queries.
type Store struct {
	DB *sqlx.DB
}

// ByID fetches one user row.
func (s *Store) ByID(ctx context.Context, id int64) (*User, error) {
	const q = `
        SELECT id, email, password_digest, is_admin,
               last_access_at, created_at, updated_at
        FROM   user
        WHERE  id = ?
        LIMIT  1`
	var u User
	if err := s.DB.GetContext(ctx, &u, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	return &u, nil
}

// ByEmail fetches one user row by email.
func (s *Store) ByEmail(ctx context.Context, email string) (*User, error) {
	const q = `
        SELECT id, email, password_digest, is_admin,
               last_access_at, created_at, updated_at
        FROM   user
        WHERE  email = ?
        LIMIT  1`
	var u User
	if err := s.DB.GetContext(ctx, &u, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	return &u, nil
}

// VerifyPassword checks a candidate password against the stored digest.
func (s *Store) VerifyPassword(u *User, password string) bool {
	if u == nil || u.PasswordDigest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordDigest), []byte(password)) == nil
}

// TouchLastAccess updates last_access_at to now, but only when the stored
// value is older than TouchInterval.  Signed-in traffic calls this once
// per request; the guard keeps write volume bounded.
func (s *Store) TouchLastAccess(ctx context.Context, id int64) error {
	const q = `
        UPDATE user
        SET    last_access_at = ?
        WHERE  id = ?
          AND  (last_access_at IS NULL OR last_access_at < ?)`
	now := time.Now().UTC()
	_, err := s.DB.ExecContext(ctx, q, now, id, now.Add(-TouchInterval))
	return err
}

// SetResetToken stores a fresh password-reset token on the user row,
// replacing any earlier one.
func (s *Store) SetResetToken(ctx context.Context, id int64, token string, sentAt time.Time) error {
	const q = `
        UPDATE user
        SET    reset_token = ?, reset_sent_at = ?
        WHERE  id = ?`
	_, err := s.DB.ExecContext(ctx, q, token, sentAt.UTC(), id)
	return err
}

// ByResetToken fetches the user holding an unexpired reset token.
// Expired or unknown tokens come back as ErrUnknownUser; the caller
// cannot tell the two apart, which is the point.
func (s *Store) ByResetToken(ctx context.Context, token string) (*User, error) {
	const q = `
        SELECT id, email, password_digest, is_admin,
               last_access_at, created_at, updated_at
        FROM   user
        WHERE  reset_token = ?
          AND  reset_sent_at > ?
        LIMIT  1`
	var u User
	cutoff := time.Now().UTC().Add(-ResetTTL)
	if err := s.DB.GetContext(ctx, &u, q, token, cutoff); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	return &u, nil
}

// UpdatePassword replaces the stored digest and burns the reset token in
// the same statement, so a used link cannot be replayed.
func (s *Store) UpdatePassword(ctx context.Context, id int64, digest string) error {
	const q = `
        UPDATE user
        SET    password_digest = ?, reset_token = NULL, reset_sent_at = NULL
        WHERE  id = ?`
	_, err := s.DB.ExecContext(ctx, q, digest, id)
	return err
}

// HashPassword produces a bcrypt digest for storage.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
