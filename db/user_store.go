package db

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	cerr "github.com/seabattlehq/seabattle-backend/internal/error"
)

type User struct {
	Uuid string
	Name string
}

// UserStore is the identity collaborator. Authenticate is
// find-or-create: an unknown name registers a new account, a known
// name must come with the matching password.
type UserStore interface {
	Authenticate(ctx context.Context, name, password string) (User, error)
}

type PostgresUserStore struct {
	db *sql.DB
}

var _ UserStore = (*PostgresUserStore)(nil)

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (ps *PostgresUserStore) Authenticate(ctx context.Context, name, password string) (User, error) {
	var (
		userUuid string
		hash     string
	)

	err := ps.db.QueryRowContext(ctx, `SELECT uuid, password_hash FROM users WHERE name = $1`, name).Scan(&userUuid, &hash)
	switch err {
	case nil:
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
			return User{}, cerr.ErrWrongPassword
		}
		return User{Uuid: userUuid, Name: name}, nil

	case sql.ErrNoRows:
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}

		newUuid := uuid.NewString()
		if _, err := ps.db.ExecContext(ctx,
			`INSERT INTO users (uuid, name, password_hash) VALUES ($1, $2, $3)`,
			newUuid, name, string(hashed),
		); err != nil {
			return User{}, err
		}
		return User{Uuid: newUuid, Name: name}, nil

	default:
		return User{}, err
	}
}

type memoryUser struct {
	uuid string
	hash []byte
}

// MemoryUserStore is the default store when no database is configured.
// Accounts live for the lifetime of the process.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]memoryUser
}

var _ UserStore = (*MemoryUserStore)(nil)

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users: make(map[string]memoryUser, 10),
	}
}

func (ms *MemoryUserStore) Authenticate(_ context.Context, name, password string) (User, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if u, prs := ms.users[name]; prs {
		if bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
			return User{}, cerr.ErrWrongPassword
		}
		return User{Uuid: u.uuid, Name: name}, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	u := memoryUser{uuid: uuid.NewString(), hash: hashed}
	ms.users[name] = u
	return User{Uuid: u.uuid, Name: name}, nil
}
