package store

import (
	"context"
	"errors"

	"github.com/scl-platform/ssobridge/internal/lms/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface for the LMS side.
type Store interface {
	Users() Users
	Grants() Grants

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and rolling
	// back on error. Reconciliation must run through this: a user row without
	// its role grants is not allowed to become visible.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByEmail returns a local user by unique email, without grants.
	GetUserByEmail(ctx context.Context, email string) (domain.LocalUser, error)

	// CreateUser inserts a new local user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.LocalUser) error

	// UpdateUserName overwrites first/last name and bumps updated_at.
	UpdateUserName(ctx context.Context, userID, firstName, lastName string) error
}

type Grants interface {
	// ListRoles returns the user's current role grants.
	ListRoles(ctx context.Context, userID string) ([]domain.LocalRole, error)

	// ReplaceRoles replaces the user's grants with exactly roles. Idempotent:
	// re-granting an identical set leaves one grant per role; a role change
	// revokes the previous grants in the same statement sequence. Run inside
	// a transaction with the user mutation.
	ReplaceRoles(ctx context.Context, userID string, roles []domain.LocalRole) error
}
