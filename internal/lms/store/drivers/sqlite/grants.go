package sqlite

import (
	"context"
	"time"

	"github.com/scl-platform/ssobridge/internal/lms/domain"
)

type grantsRepo struct {
	db dbtx
}

func (r *grantsRepo) ListRoles(ctx context.Context, userID string) ([]domain.LocalRole, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT role
		FROM role_grants
		WHERE user_id = ?
		ORDER BY role`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.LocalRole
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, domain.LocalRole(role))
	}
	return roles, rows.Err()
}

// ReplaceRoles clears the user's grants and inserts exactly roles. Callers
// run this inside a transaction together with the user mutation so a user
// never becomes visible without grants.
func (r *grantsRepo) ReplaceRoles(
	ctx context.Context,
	userID string,
	roles []domain.LocalRole,
) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM role_grants WHERE user_id = ?`, userID,
	); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, role := range roles {
		if _, err := r.db.ExecContext(ctx, `
			INSERT INTO role_grants (user_id, role, granted_at)
			VALUES (?, ?, ?)`,
			userID, string(role), now,
		); err != nil {
			return mapConflict(err)
		}
	}
	return nil
}
