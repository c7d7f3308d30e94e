package sqlite

import (
	"context"
	"time"

	"github.com/scl-platform/ssobridge/internal/lms/domain"
	"github.com/scl-platform/ssobridge/internal/lms/store"
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) GetUserByEmail(
	ctx context.Context,
	email string,
) (domain.LocalUser, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, created_at, updated_at
		FROM lms_users
		WHERE email = ?`,
		email,
	)

	var u domain.LocalUser
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.LocalUser{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.LocalUser) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lms_users (id, email, first_name, last_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.FirstName, u.LastName, now, now,
	)
	return mapConflict(err)
}

func (r *usersRepo) UpdateUserName(
	ctx context.Context,
	userID, firstName, lastName string,
) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE lms_users
		SET first_name = ?, last_name = ?, updated_at = ?
		WHERE id = ?`,
		firstName, lastName, time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
