package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/scl-platform/ssobridge/internal/admissions/domain"
)

type tokensRepo struct {
	db dbtx
}

func (r *tokensRepo) InsertToken(ctx context.Context, t domain.SSOToken) error {
	// created_at is stored as unix seconds so the TTL window compare in
	// TakeToken is an exact integer comparison.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sso_tokens (token, email, first_name, last_name, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.Token, t.Email, t.FirstName, t.LastName, string(t.Role), t.CreatedAt.Unix(),
	)
	return mapConflict(err)
}

// TakeToken enforces one-time use with a single conditional DELETE RETURNING
// per lookup strategy. SQLite serializes the writes, so of N concurrent calls
// with the same token exactly one row comes back; everyone else sees
// ErrNotFound. A read-then-delete here would be a redemption race.
func (r *tokensRepo) TakeToken(
	ctx context.Context,
	token string,
	issuedAfter time.Time,
) (domain.SSOToken, error) {
	// Exact match first.
	t, err := r.takeWhere(ctx, `token = ?`, token, issuedAfter)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.SSOToken{}, err
	}

	// Fallback: hyphen-normalized match, tolerating tokens reformatted by
	// intermediate systems. Never matches beyond hyphen differences.
	t, err = r.takeWhere(ctx, `replace(token, '-', '') = replace(?, '-', '')`, token, issuedAfter)
	if err != nil {
		return domain.SSOToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tokensRepo) takeWhere(
	ctx context.Context,
	cond string,
	token string,
	issuedAfter time.Time,
) (domain.SSOToken, error) {
	row := r.db.QueryRowContext(ctx, `
		DELETE FROM sso_tokens
		WHERE `+cond+` AND created_at >= ?
		RETURNING token, email, first_name, last_name, role, created_at`,
		token, issuedAfter.Unix(),
	)
	return scanToken(row)
}

func (r *tokensRepo) DeleteTokensIssuedBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sso_tokens WHERE created_at < ?`, cutoff.Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *tokensRepo) CountTokens(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sso_tokens`).Scan(&n)
	return n, err
}

func scanToken(row *sql.Row) (domain.SSOToken, error) {
	var (
		t         domain.SSOToken
		role      string
		createdAt int64
	)
	if err := row.Scan(&t.Token, &t.Email, &t.FirstName, &t.LastName, &role, &createdAt); err != nil {
		return domain.SSOToken{}, err
	}
	t.Role = domain.ExternalRole(role)
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	return t, nil
}
