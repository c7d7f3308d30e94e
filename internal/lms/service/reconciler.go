package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/scl-platform/ssobridge/internal/lms/domain"
	"github.com/scl-platform/ssobridge/internal/lms/store"
	"github.com/scl-platform/ssobridge/pkg/idx"
	"github.com/scl-platform/ssobridge/pkg/metricsx"
	"github.com/scl-platform/ssobridge/pkg/slogx"
	"github.com/scl-platform/ssobridge/pkg/ssoapi"
)

// ErrReconcileFailed means the verified identity could not be materialized
// as a local account. The login must not proceed on a partial account.
var ErrReconcileFailed = errors.New("identity reconciliation failed")

// ReconcilerService materializes verified admissions identities as local LMS
// accounts. The admissions directory is authoritative: names and roles are
// overwritten on every login, so local edits to either do not survive the
// next SSO login.
type ReconcilerService struct {
	Store   store.Store
	Metrics *metricsx.Collector // optional
}

// Reconcile finds or creates the local account for the verified identity,
// synchronizes its name fields, and replaces its role grants with exactly
// the mapped role. Runs in one transaction; a user row never becomes
// visible without its grants.
func (s *ReconcilerService) Reconcile(
	ctx context.Context,
	identity ssoapi.UserPayload,
) (domain.LocalUser, error) {
	log := slogx.FromContext(ctx)

	// 1. Map the external role onto the local vocabulary. Unknown roles
	//    downgrade to student rather than failing the login: the identity
	//    itself is already verified, only its privilege level is in doubt.
	role, ok := domain.MapExternalRole(identity.Role)
	if !ok {
		log.Warn("unknown external role, downgrading to student",
			slog.String("role", identity.Role),
			slog.String("email", identity.Email),
		)
		role = domain.RoleStudent
	}

	var user domain.LocalUser
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 2. Find or create the account, keyed by email.
		existing, err := tx.Users().GetUserByEmail(ctx, identity.Email)
		switch {
		case err == nil:
			user = existing
			// 3. Overwrite the name fields from the authoritative identity.
			if user.FirstName != identity.Firstname || user.LastName != identity.Lastname {
				if err := tx.Users().UpdateUserName(ctx, user.ID,
					identity.Firstname, identity.Lastname); err != nil {
					return fmt.Errorf("update user name: %w", err)
				}
				user.FirstName = identity.Firstname
				user.LastName = identity.Lastname
			}
		case errors.Is(err, store.ErrNotFound):
			user = domain.LocalUser{
				ID:        idx.New().String(),
				Email:     identity.Email,
				FirstName: identity.Firstname,
				LastName:  identity.Lastname,
			}
			if err := tx.Users().CreateUser(ctx, user); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			log.Info("local account created",
				slog.String("user_id", user.ID),
				slog.String("email", user.Email),
			)
		default:
			return fmt.Errorf("get user by email: %w", err)
		}

		// 4. Replace the grants with exactly the mapped role. Re-granting the
		//    same role is a no-op; a role change revokes the previous grant.
		if err := tx.Grants().ReplaceRoles(ctx, user.ID, []domain.LocalRole{role}); err != nil {
			return fmt.Errorf("replace roles: %w", err)
		}
		user.Roles = []domain.LocalRole{role}
		return nil
	})
	if err != nil {
		log.Error("identity reconciliation failed", slog.Any("error", err))
		s.record(metricsx.ResultError)
		return domain.LocalUser{}, fmt.Errorf("%w: %v", ErrReconcileFailed, err)
	}

	s.record(metricsx.ResultOK)
	log.Info("identity reconciled",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
		slog.String("role", role.String()),
	)
	return user, nil
}

func (s *ReconcilerService) record(result string) {
	if s.Metrics != nil {
		s.Metrics.RecordReconciliation(result)
	}
}
