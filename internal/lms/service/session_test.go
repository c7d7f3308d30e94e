package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scl-platform/ssobridge/internal/lms/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func testUser() domain.LocalUser {
	return domain.LocalUser{
		ID:        "01TESTULID000000000000000",
		Email:     "student@scl.com",
		FirstName: "John",
		LastName:  "Doe",
		Roles:     []domain.LocalRole{domain.RoleStudent},
	}
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	svc := &SessionService{Secret: []byte("session-secret"), TTL: time.Hour}

	cookie, err := svc.Issue(testUser())
	require.NoError(t, err)
	require.Equal(t, SessionCookieName, cookie.Name)
	require.True(t, cookie.HttpOnly)

	claims, err := svc.Parse(cookie.Value)
	require.NoError(t, err)
	require.Equal(t, "01TESTULID000000000000000", claims.Subject)
	require.Equal(t, "student@scl.com", claims.Email)
	require.Equal(t, "John Doe", claims.Name)
	require.Equal(t, []string{"student"}, claims.Roles)
}

func TestSessionRejectsForgedTokens(t *testing.T) {
	t.Parallel()

	svc := &SessionService{Secret: []byte("session-secret"), TTL: time.Hour}

	t.Run("wrong signing key", func(t *testing.T) {
		other := &SessionService{Secret: []byte("different-secret"), TTL: time.Hour}
		cookie, err := other.Issue(testUser())
		require.NoError(t, err)

		_, err = svc.Parse(cookie.Value)
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("tampered payload", func(t *testing.T) {
		cookie, err := svc.Issue(testUser())
		require.NoError(t, err)

		_, err = svc.Parse(cookie.Value + "x")
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("expired session", func(t *testing.T) {
		now := time.Now().UTC()
		claims := SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    sessionIssuer,
				Subject:   "expired",
				IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString(svc.Secret)
		require.NoError(t, err)

		_, err = svc.Parse(signed)
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("alg none rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: sessionIssuer, Subject: "x"},
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Parse(signed)
		require.ErrorIs(t, err, ErrInvalidSession)
	})
}

func TestSessionFromRequest(t *testing.T) {
	t.Parallel()

	svc := &SessionService{Secret: []byte("session-secret"), TTL: time.Hour}

	t.Run("missing cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/my", nil)
		_, err := svc.FromRequest(r)
		require.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("valid cookie", func(t *testing.T) {
		cookie, err := svc.Issue(testUser())
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/my", nil)
		r.AddCookie(cookie)

		claims, err := svc.FromRequest(r)
		require.NoError(t, err)
		require.Equal(t, "student@scl.com", claims.Email)
	})
}
