// internal/acl/store_test.go
//
// Unit-tests for acl store helpers using sqlmock.
//
// Run: go test ./internal/acl -v

package acl

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUserRoles(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT r.name FROM user_role ur JOIN role r ON r.id = ur.role_id WHERE ur.user_id = ? AND r.enabled = TRUE`,
	)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("beta").AddRow("editor"))

	got, err := UserRoles(context.Background(), db, 42)
	if err != nil {
		t.Fatalf("UserRoles error: %v", err)
	}
	if len(got) != 2 || got[0] != "beta" || got[1] != "editor" {
		t.Fatalf("unexpected result: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestHasRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	q := `SELECT 1 FROM user_role ur JOIN role r ON r.id = ur.role_id WHERE ur.user_id = ? AND r.name = ? AND r.enabled = TRUE LIMIT 1`

	mock.ExpectQuery(regexp.QuoteMeta(q)).
		WithArgs(int64(7), RoleBeta).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	ok, err := HasRole(context.Background(), db, 7, RoleBeta)
	if err != nil {
		t.Fatalf("HasRole error: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok = true, got false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestHasRole_Miss(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	q := `SELECT 1 FROM user_role ur JOIN role r ON r.id = ur.role_id WHERE ur.user_id = ? AND r.name = ? AND r.enabled = TRUE LIMIT 1`

	mock.ExpectQuery(regexp.QuoteMeta(q)).
		WithArgs(int64(7), "editor").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	ok, err := HasRole(context.Background(), db, 7, "editor")
	if err != nil {
		t.Fatalf("HasRole error: %v", err)
	}
	if ok {
		t.Fatalf("expected ok = false for missing role")
	}
}
