package store

import (
	"context"
	"errors"
	"time"

	"github.com/scl-platform/ssobridge/internal/admissions/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface for the admissions side. Concrete
// drivers (sqlite today) implement it. Sub-repositories keep concerns tidy
// and let services stay driver-agnostic.
type Store interface {
	Tokens() Tokens
	Directory() Directory

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and rolling
	// back on error. Preferred over Tx for multi-step operations.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Tokens is the outstanding-token table. It is the only shared mutable
// resource in the SSO core: the issuer inserts, the verifier takes.
type Tokens interface {
	// InsertToken persists a freshly minted token record.
	InsertToken(ctx context.Context, t domain.SSOToken) error

	// TakeToken atomically deletes and returns the token record, enforcing
	// one-time use. Lookup is by exact token first, then by hyphen-normalized
	// token as a fallback. Only tokens created at or after issuedAfter are
	// eligible; older rows are left for the sweeper. Returns ErrNotFound when
	// no eligible row matched - callers must not distinguish never-existed,
	// consumed, and expired.
	//
	// TakeToken MUST be a single conditional delete-and-return against the
	// database: given N concurrent calls with the same token, exactly one
	// succeeds and the rest observe ErrNotFound.
	TakeToken(ctx context.Context, token string, issuedAfter time.Time) (domain.SSOToken, error)

	// DeleteTokensIssuedBefore sweeps rows older than cutoff and reports how
	// many were removed. Housekeeping only; expired rows are already
	// unredeemable via TakeToken's window.
	DeleteTokensIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// CountTokens returns the number of outstanding tokens.
	CountTokens(ctx context.Context) (int64, error)
}

// Directory is the admissions user directory.
type Directory interface {
	// GetUserByEmail returns a directory user by unique email.
	GetUserByEmail(ctx context.Context, email string) (domain.DirectoryUser, error)

	// CreateUser inserts a new directory user.
	CreateUser(ctx context.Context, u domain.DirectoryUser) error

	// IsEmpty returns true if the directory holds no users.
	IsEmpty(ctx context.Context) (bool, error)
}
