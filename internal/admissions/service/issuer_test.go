package service

import (
	"context"
	"net/url"
	"testing"

	"github.com/scl-platform/ssobridge/internal/admissions/domain"

	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T) *IssuerService {
	t.Helper()
	return &IssuerService{
		Store:        newTestStore(t),
		LMSBaseURL:   "http://lms.local:8080",
		CallbackPath: "/sso/login",
	}
}

func TestIssuerIssue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown email is not found", func(t *testing.T) {
		svc := newIssuer(t)

		_, _, err := svc.Issue(ctx, "nobody@scl.com")
		require.ErrorIs(t, err, ErrIdentityNotFound)
	})

	t.Run("mints, persists, and returns the callback URL", func(t *testing.T) {
		svc := newIssuer(t)
		seedDirectoryUser(t, svc.Store, "faculty@scl.com", domain.RoleFaculty)

		token, redirect, err := svc.Issue(ctx, "faculty@scl.com")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		u, err := url.Parse(redirect)
		require.NoError(t, err)
		require.Equal(t, "/sso/login", u.Path)
		require.Equal(t, token, u.Query().Get("token"))

		// The token must be redeemable and bound to the directory identity.
		verifier := &VerifierService{Store: svc.Store, Secret: testSecret}
		identity, err := verifier.Verify(ctx, token, testSecret)
		require.NoError(t, err)
		require.Equal(t, "faculty@scl.com", identity.Email)
		require.Equal(t, domain.RoleFaculty, identity.Role)
	})

	t.Run("each issuance mints a distinct token", func(t *testing.T) {
		svc := newIssuer(t)
		seedDirectoryUser(t, svc.Store, "student@scl.com", domain.RoleStudent)

		first, _, err := svc.Issue(ctx, "student@scl.com")
		require.NoError(t, err)
		second, _, err := svc.Issue(ctx, "student@scl.com")
		require.NoError(t, err)
		require.NotEqual(t, first, second)

		count, err := svc.Store.Tokens().CountTokens(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 2, count)
	})
}
