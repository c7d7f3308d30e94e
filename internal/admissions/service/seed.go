package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/scl-platform/ssobridge/internal/admissions/domain"
	"github.com/scl-platform/ssobridge/internal/admissions/store"
	"github.com/scl-platform/ssobridge/pkg/cryptox"
)

// seedAccount is a directory account created on first boot.
type seedAccount struct {
	Email     string
	FirstName string
	LastName  string
	Role      domain.ExternalRole
	Password  string
}

// SeedService populates an empty directory with the known dev accounts.
// A non-empty directory is left untouched, so reseeding is a no-op.
type SeedService struct {
	Store  store.Store
	Logger *slog.Logger
}

var defaultAccounts = []seedAccount{
	{Email: "admin@scl.com", FirstName: "SCL", LastName: "Admin", Role: domain.RoleAdmin, Password: "password"},
	{Email: "faculty@scl.com", FirstName: "Grace", LastName: "Hopper", Role: domain.RoleFaculty, Password: "password"},
	{Email: "student@scl.com", FirstName: "John", LastName: "Doe", Role: domain.RoleStudent, Password: "password"},
}

// Seed creates the default accounts if the directory is empty.
func (s *SeedService) Seed(ctx context.Context) error {
	empty, err := s.Store.Directory().IsEmpty(ctx)
	if err != nil {
		return fmt.Errorf("check directory: %w", err)
	}
	if !empty {
		return nil
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, acct := range defaultAccounts {
			hash, err := cryptox.HashPassword(acct.Password)
			if err != nil {
				return fmt.Errorf("hash seed password: %w", err)
			}

			u := domain.DirectoryUser{
				Email:        acct.Email,
				FirstName:    acct.FirstName,
				LastName:     acct.LastName,
				Role:         acct.Role,
				PasswordHash: hash,
			}
			if err := tx.Directory().CreateUser(ctx, u); err != nil {
				return fmt.Errorf("create seed user %s: %w", acct.Email, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Logger.Info("directory seeded", "accounts", len(defaultAccounts))
	return nil
}
