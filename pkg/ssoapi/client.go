package ssoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Verification failure modes surfaced by VerifyClient. Anything else is a
// transport or server error and comes back wrapped.
var (
	// ErrSecretRejected means the admissions service rejected our caller
	// secret (403). Configuration fault, not retryable.
	ErrSecretRejected = errors.New("ssoapi: caller secret rejected")

	// ErrTokenRejected means the token is absent, already consumed, or
	// expired (400). The verifier deliberately does not say which.
	ErrTokenRejected = errors.New("ssoapi: token rejected")
)

// DefaultVerifyTimeout bounds the server-to-server verify call. Verification
// is never retried on timeout: a retry after a successful-but-unacknowledged
// verify would fail as already-consumed anyway.
const DefaultVerifyTimeout = 5 * time.Second

// VerifyClient calls the admissions verify endpoint server-to-server. The
// caller secret comes from environment configuration, never from a user.
type VerifyClient struct {
	BaseURL    string
	Secret     string
	HTTPClient *http.Client
}

// NewVerifyClient creates a client with the default timeout.
func NewVerifyClient(baseURL, secret string) *VerifyClient {
	return &VerifyClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Secret:  secret,
		HTTPClient: &http.Client{
			Timeout: DefaultVerifyTimeout,
		},
	}
}

// Verify redeems a one-time SSO token and returns the bound identity.
func (c *VerifyClient) Verify(ctx context.Context, token string) (UserPayload, error) {
	body, err := json.Marshal(VerifyRequest{Token: token, Secret: c.Secret})
	if err != nil {
		return UserPayload{}, fmt.Errorf("ssoapi: encode verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.BaseURL+"/sso/verify",
		bytes.NewReader(body),
	)
	if err != nil {
		return UserPayload{}, fmt.Errorf("ssoapi: build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return UserPayload{}, fmt.Errorf("ssoapi: verify call failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		// Fall through to decode below.
	case http.StatusForbidden:
		return UserPayload{}, ErrSecretRejected
	case http.StatusBadRequest:
		return UserPayload{}, ErrTokenRejected
	default:
		return UserPayload{}, fmt.Errorf("ssoapi: verify returned HTTP %d", resp.StatusCode)
	}

	var vr VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return UserPayload{}, fmt.Errorf("ssoapi: decode verify response: %w", err)
	}
	if !vr.Success || vr.User == nil {
		return UserPayload{}, fmt.Errorf("ssoapi: verify returned malformed success response")
	}

	return *vr.User, nil
}
