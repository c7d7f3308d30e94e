package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/scl-platform/ssobridge/internal/admissions/domain"
	"github.com/scl-platform/ssobridge/internal/admissions/store"
	"github.com/scl-platform/ssobridge/pkg/metricsx"
	"github.com/scl-platform/ssobridge/pkg/slogx"
)

var (
	// ErrForbidden means the caller secret did not match. Configuration or
	// security fault on the LMS side; logged distinctly from token failures.
	ErrForbidden = errors.New("caller secret mismatch")

	// ErrInvalidToken covers absent, already-consumed, and expired tokens.
	// Deliberately opaque: distinguishing the sub-cases would hand a probing
	// caller a token lifecycle oracle.
	ErrInvalidToken = errors.New("invalid token")
)

// DefaultTokenTTL bounds token validity independent of consumption. The
// original deployment never settled on a window; one hour is the policy here.
const DefaultTokenTTL = time.Hour

// VerifierService validates and consumes SSO tokens on behalf of the LMS
// backend. The shared secret authenticates the caller; the token
// authenticates the subject.
type VerifierService struct {
	Store    store.Store
	Secret   string
	TokenTTL time.Duration
	Metrics  *metricsx.Collector // optional
}

// Verify checks the caller secret, atomically consumes the token, and
// returns the bound identity. The secret check happens before any token
// lookup; a secret mismatch never consumes the token.
func (s *VerifierService) Verify(
	ctx context.Context,
	token string,
	callerSecret string,
) (domain.Identity, error) {
	log := slogx.FromContext(ctx)

	if subtle.ConstantTimeCompare([]byte(callerSecret), []byte(s.Secret)) != 1 {
		log.Warn("token verification with bad caller secret")
		s.record(metricsx.ResultForbidden)
		return domain.Identity{}, ErrForbidden
	}

	if token == "" {
		s.record(metricsx.ResultInvalid)
		return domain.Identity{}, ErrInvalidToken
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	// Atomic take: delete-and-return in one statement, so concurrent verify
	// calls for the same token cannot both succeed. Tokens outside the TTL
	// window are ineligible even if unconsumed.
	record, err := s.Store.Tokens().TakeToken(ctx, token, time.Now().UTC().Add(-ttl))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("token verification failed") // no token detail in logs
			s.record(metricsx.ResultInvalid)
			return domain.Identity{}, ErrInvalidToken
		}
		log.Error("token store unavailable during verification", slog.Any("error", err))
		s.record(metricsx.ResultError)
		return domain.Identity{}, fmt.Errorf("take token: %w", err)
	}

	s.record(metricsx.ResultOK)
	log.Info("sso token verified",
		slog.String("email", record.Email),
		slog.String("role", record.Role.String()),
	)

	return record.Identity(), nil
}

func (s *VerifierService) record(result string) {
	if s.Metrics != nil {
		s.Metrics.RecordVerification(result)
	}
}
