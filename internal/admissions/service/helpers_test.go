package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/scl-platform/ssobridge/internal/admissions/domain"
	"github.com/scl-platform/ssobridge/internal/admissions/store"
	"github.com/scl-platform/ssobridge/internal/admissions/store/drivers/sqlite"

	"github.com/stretchr/testify/require"
)

// newTestStore opens a fresh migrated sqlite store on a per-test temp file.
func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "admissions.db")
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedDirectoryUser(t *testing.T, st store.Store, email string, role domain.ExternalRole) {
	t.Helper()

	err := st.Directory().CreateUser(context.Background(), domain.DirectoryUser{
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		PasswordHash: "unused",
	})
	require.NoError(t, err)
}

func insertToken(t *testing.T, st store.Store, token string, createdAt time.Time) {
	t.Helper()

	err := st.Tokens().InsertToken(context.Background(), domain.SSOToken{
		Token:     token,
		Email:     "student@scl.com",
		FirstName: "John",
		LastName:  "Doe",
		Role:      domain.RoleStudent,
		CreatedAt: createdAt,
	})
	require.NoError(t, err)
}
