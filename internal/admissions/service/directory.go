package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/scl-platform/ssobridge/internal/admissions/domain"
	"github.com/scl-platform/ssobridge/internal/admissions/store"
	"github.com/scl-platform/ssobridge/pkg/cryptox"
	"github.com/scl-platform/ssobridge/pkg/slogx"
)

// ErrInvalidCredentials covers both unknown email and wrong password so the
// login endpoint cannot be used to enumerate directory accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// DirectoryService authenticates directory users for the admissions frontend.
type DirectoryService struct {
	Store store.Store
}

// Authenticate verifies email/password against the directory and returns the
// account's identity.
func (s *DirectoryService) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (domain.Identity, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Directory().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Identity{}, ErrInvalidCredentials
		}
		log.Error("directory lookup failed", slog.Any("error", err))
		return domain.Identity{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Warn("login with wrong password", slog.String("email", email))
		return domain.Identity{}, ErrInvalidCredentials
	}

	return user.Identity(), nil
}
