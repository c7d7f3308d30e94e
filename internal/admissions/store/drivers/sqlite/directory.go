package sqlite

import (
	"context"
	"time"

	"github.com/scl-platform/ssobridge/internal/admissions/domain"
)

type directoryRepo struct {
	db dbtx
}

func (r *directoryRepo) GetUserByEmail(
	ctx context.Context,
	email string,
) (domain.DirectoryUser, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT email, first_name, last_name, role, password_hash, created_at, updated_at
		FROM directory_users
		WHERE email = ?`,
		email,
	)

	var (
		u    domain.DirectoryUser
		role string
	)
	err := row.Scan(&u.Email, &u.FirstName, &u.LastName, &role, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.DirectoryUser{}, mapNotFound(err)
	}
	u.Role = domain.ExternalRole(role)
	return u, nil
}

func (r *directoryRepo) CreateUser(ctx context.Context, u domain.DirectoryUser) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO directory_users (email, first_name, last_name, role, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.FirstName, u.LastName, string(u.Role), u.PasswordHash, now, now,
	)
	return mapConflict(err)
}

func (r *directoryRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM directory_users`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}
