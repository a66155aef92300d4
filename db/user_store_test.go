package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	cerr "github.com/seabattlehq/seabattle-backend/internal/error"
)

func TestPostgresUserStoreCreatesUnknownName(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	mock.ExpectQuery(`SELECT uuid, password_hash FROM users WHERE name = \$1`).
		WithArgs("alice").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectExec(`INSERT INTO users \(uuid, name, password_hash\) VALUES \(\$1, \$2, \$3\)`).
		WithArgs(sqlmock.AnyArg(), "alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPostgresUserStore(database)
	user, err := store.Authenticate(context.Background(), "alice", "sekret-pass")
	if err != nil {
		t.Fatal(err)
	}
	if user.Name != "alice" || user.Uuid == "" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

func TestPostgresUserStoreVerifiesPassword(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("right-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"uuid", "password_hash"}).AddRow("alice-uuid", string(hash))
	}

	store := NewPostgresUserStore(database)

	mock.ExpectQuery(`SELECT uuid, password_hash FROM users WHERE name = \$1`).
		WithArgs("alice").WillReturnRows(rows())
	if _, err := store.Authenticate(context.Background(), "alice", "wrong-pass"); !errors.Is(err, cerr.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	mock.ExpectQuery(`SELECT uuid, password_hash FROM users WHERE name = \$1`).
		WithArgs("alice").WillReturnRows(rows())
	user, err := store.Authenticate(context.Background(), "alice", "right-pass")
	if err != nil {
		t.Fatal(err)
	}
	if user.Uuid != "alice-uuid" {
		t.Fatalf("unexpected uuid: %s", user.Uuid)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

func TestMemoryUserStore(t *testing.T) {
	store := NewMemoryUserStore()
	ctx := context.Background()

	created, err := store.Authenticate(ctx, "alice", "sekret-pass")
	if err != nil {
		t.Fatal(err)
	}

	// Same name and password logs into the same account.
	again, err := store.Authenticate(ctx, "alice", "sekret-pass")
	if err != nil {
		t.Fatal(err)
	}
	if again.Uuid != created.Uuid {
		t.Fatal("returning user must keep their identity")
	}

	if _, err := store.Authenticate(ctx, "alice", "wrong-pass"); !errors.Is(err, cerr.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	other, err := store.Authenticate(ctx, "bob", "sekret-pass")
	if err != nil {
		t.Fatal(err)
	}
	if other.Uuid == created.Uuid {
		t.Fatal("distinct names must get distinct identities")
	}
}
