package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/scl-platform/ssobridge/internal/admissions/domain"
	"github.com/scl-platform/ssobridge/internal/admissions/store"
	"github.com/scl-platform/ssobridge/pkg/cryptox"
	"github.com/scl-platform/ssobridge/pkg/metricsx"
	"github.com/scl-platform/ssobridge/pkg/slogx"
)

var (
	// ErrIdentityNotFound means the issuance email resolves to no directory
	// user. Surfaced as 404; not retryable without correcting input.
	ErrIdentityNotFound = errors.New("identity not found")
)

// IssuerService mints one-time SSO tokens bound to a directory identity.
// The caller's session vouches for the identity; this service does not
// authenticate.
type IssuerService struct {
	Store        store.Store
	LMSBaseURL   string
	CallbackPath string
	Metrics      *metricsx.Collector // optional
}

// Issue resolves the identity behind email, mints and persists a token, and
// returns the token plus the LMS callback URL carrying it. If persistence
// fails no redirect URL is returned - a token the store never saw must not
// reach a browser.
func (s *IssuerService) Issue(ctx context.Context, email string) (string, string, error) {
	log := slogx.FromContext(ctx)

	// 1. Resolve the identity from the directory; email is only a lookup key.
	user, err := s.Store.Directory().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("token issuance for unknown identity", slog.String("email", email))
			return "", "", ErrIdentityNotFound
		}
		log.Error("failed to resolve identity", slog.Any("error", err))
		return "", "", fmt.Errorf("resolve identity: %w", err)
	}

	// 2. Mint a 256-bit random opaque token. Never sequential, never derived
	// from user data.
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate token", slog.Any("error", err))
		return "", "", err
	}

	// 3. Persist before building the redirect.
	record := domain.SSOToken{
		Token:     token,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Tokens().InsertToken(ctx, record); err != nil {
		log.Error("failed to persist token", slog.Any("error", err))
		return "", "", fmt.Errorf("persist token: %w", err)
	}

	if s.Metrics != nil {
		s.Metrics.RecordTokenIssued()
	}

	// Log the issuance, never the token or the full redirect URL.
	log.Info("sso token issued",
		slog.String("email", user.Email),
		slog.String("role", user.Role.String()),
	)

	return token, s.redirectURL(token), nil
}

func (s *IssuerService) redirectURL(token string) string {
	q := url.Values{}
	q.Set("token", token)
	return s.LMSBaseURL + s.CallbackPath + "?" + q.Encode()
}
