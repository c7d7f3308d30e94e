package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/scl-platform/ssobridge/internal/admissions/domain"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-shared-secret"

func newVerifier(t *testing.T) *VerifierService {
	t.Helper()
	return &VerifierService{
		Store:    newTestStore(t),
		Secret:   testSecret,
		TokenTTL: time.Hour,
	}
}

func TestVerifierVerify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("consumes a valid token exactly once", func(t *testing.T) {
		svc := newVerifier(t)
		insertToken(t, svc.Store, "token-one", time.Now().UTC())

		identity, err := svc.Verify(ctx, "token-one", testSecret)
		require.NoError(t, err)
		require.Equal(t, "student@scl.com", identity.Email)
		require.Equal(t, domain.RoleStudent, identity.Role)

		_, err = svc.Verify(ctx, "token-one", testSecret)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects bad caller secret without consuming the token", func(t *testing.T) {
		svc := newVerifier(t)
		insertToken(t, svc.Store, "token-two", time.Now().UTC())

		_, err := svc.Verify(ctx, "token-two", "wrong-secret")
		require.ErrorIs(t, err, ErrForbidden)

		// The token must survive the rejected attempt.
		identity, err := svc.Verify(ctx, "token-two", testSecret)
		require.NoError(t, err)
		require.Equal(t, "student@scl.com", identity.Email)
	})

	t.Run("rejects empty and unknown tokens", func(t *testing.T) {
		svc := newVerifier(t)

		_, err := svc.Verify(ctx, "", testSecret)
		require.ErrorIs(t, err, ErrInvalidToken)

		_, err = svc.Verify(ctx, "never-issued", testSecret)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects tokens past the TTL window", func(t *testing.T) {
		svc := newVerifier(t)
		insertToken(t, svc.Store, "stale", time.Now().UTC().Add(-2*time.Hour))

		_, err := svc.Verify(ctx, "stale", testSecret)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("matches hyphen-reformatted tokens", func(t *testing.T) {
		svc := newVerifier(t)
		insertToken(t, svc.Store, "abcd1234efgh", time.Now().UTC())

		identity, err := svc.Verify(ctx, "abcd-1234-efgh", testSecret)
		require.NoError(t, err)
		require.Equal(t, "student@scl.com", identity.Email)

		// Normalized consumption is still one-time.
		_, err = svc.Verify(ctx, "abcd1234efgh", testSecret)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("only hyphens are normalized", func(t *testing.T) {
		svc := newVerifier(t)
		insertToken(t, svc.Store, "abcd1234", time.Now().UTC())

		_, err := svc.Verify(ctx, "ABCD1234", testSecret)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestVerifierConcurrentRedemption(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newVerifier(t)
	insertToken(t, svc.Store, "contested", time.Now().UTC())

	const attempts = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Verify(ctx, "contested", testSecret); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes, "exactly one concurrent verify may win")

	count, err := svc.Store.Tokens().CountTokens(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}
