// internal/auth/store_test.go
//
// Unit-tests for user lookups and the last-access guard using sqlmock.
//
// Run: go test ./internal/auth -v

package auth

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func newStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()
	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { rawDB.Close() })
	return Store{DB: sqlx.NewDb(rawDB, "mysql")}, mock
}

func userRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "email", "password_digest", "is_admin",
		"last_access_at", "created_at", "updated_at",
	}).AddRow(int64(42), "amy@example.com", "$2a$10$digest", true, nil, now, now)
}

func TestByID(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM   user")).
		WithArgs(int64(42)).
		WillReturnRows(userRows())

	u, err := store.ByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if u.Email != "amy@example.com" || !u.Admin() {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestByIDUnknown(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM   user")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := store.ByID(context.Background(), 99); !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("err = %v, want ErrUnknownUser", err)
	}
}

func TestByEmail(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM   user")).
		WithArgs("amy@example.com").
		WillReturnRows(userRows())

	u, err := store.ByEmail(context.Background(), "amy@example.com")
	if err != nil {
		t.Fatalf("ByEmail: %v", err)
	}
	if u.ID != 42 {
		t.Fatalf("id = %d", u.ID)
	}
}

func TestVerifyPassword(t *testing.T) {
	digest, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	u := &User{PasswordDigest: string(digest)}

	var store Store
	if !store.VerifyPassword(u, "s3cret") {
		t.Fatal("correct password rejected")
	}
	if store.VerifyPassword(u, "wrong") {
		t.Fatal("wrong password accepted")
	}
	if store.VerifyPassword(nil, "s3cret") {
		t.Fatal("nil user accepted")
	}
	if store.VerifyPassword(&User{}, "s3cret") {
		t.Fatal("empty digest accepted")
	}
}

func TestTouchLastAccessGuarded(t *testing.T) {
	store, mock := newStore(t)

	// The WHERE clause carries the staleness cutoff; a fresh row matches
	// zero rows and the write is a no-op.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE user")).
		WithArgs(sqlmock.AnyArg(), int64(42), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.TouchLastAccess(context.Background(), 42); err != nil {
		t.Fatalf("TouchLastAccess: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSetResetToken(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec(regexp.QuoteMeta("SET    reset_token = ?, reset_sent_at = ?")).
		WithArgs("tok-abc", sqlmock.AnyArg(), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.SetResetToken(context.Background(), 42, "tok-abc", time.Now()); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestByResetToken(t *testing.T) {
	store, mock := newStore(t)

	// The cutoff argument carries the TTL; an expired row simply does
	// not match.
	mock.ExpectQuery(regexp.QuoteMeta("WHERE  reset_token = ?")).
		WithArgs("tok-abc", sqlmock.AnyArg()).
		WillReturnRows(userRows())

	u, err := store.ByResetToken(context.Background(), "tok-abc")
	if err != nil {
		t.Fatalf("ByResetToken: %v", err)
	}
	if u.ID != 42 {
		t.Fatalf("id = %d", u.ID)
	}
}

func TestByResetTokenExpiredOrUnknown(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE  reset_token = ?")).
		WithArgs("stale", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := store.ByResetToken(context.Background(), "stale"); !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("err = %v, want ErrUnknownUser", err)
	}
}

func TestUpdatePasswordBurnsToken(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec(regexp.QuoteMeta("password_digest = ?, reset_token = NULL, reset_sent_at = NULL")).
		WithArgs("$2a$10$newdigest", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.UpdatePassword(context.Background(), 42, "$2a$10$newdigest"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestHashPasswordRoundTrip(t *testing.T) {
	digest, err := HashPassword("s3cret-enough")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	var store Store
	if !store.VerifyPassword(&User{PasswordDigest: digest}, "s3cret-enough") {
		t.Fatal("fresh digest does not verify")
	}
}

func TestAdminNilSafe(t *testing.T) {
	var u *User
	if u.Admin() {
		t.Fatal("nil user is admin")
	}
}
