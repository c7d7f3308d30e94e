package service

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/scl-platform/ssobridge/internal/lms/domain"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookieName is the cookie carrying the signed session token.
	SessionCookieName = "lms_session"

	// DefaultSessionTTL is the session lifetime when none is configured.
	DefaultSessionTTL = 12 * time.Hour

	sessionIssuer = "lms"
)

var (
	ErrNoSession      = errors.New("no session")
	ErrInvalidSession = errors.New("invalid session")
)

// SessionClaims are the claims carried by the LMS session cookie.
type SessionClaims struct {
	jwt.RegisteredClaims

	Email string   `json:"email"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`
}

// SessionService mints and validates browser sessions as HS256-signed JWTs
// in an HttpOnly cookie. Sessions are stateless: revocation is by expiry
// only, which the short TTL bounds.
type SessionService struct {
	Secret []byte
	TTL    time.Duration
	Secure bool // set the Secure cookie attribute; off for local http
}

// Issue mints a session cookie for the user.
func (s *SessionService) Issue(user domain.LocalUser) (*http.Cookie, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	now := time.Now().UTC()
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.String())
	}

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: user.Email,
		Name:  user.FirstName + " " + user.LastName,
		Roles: roles,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Parse validates a signed session token and returns its claims.
func (s *SessionService) Parse(token string) (SessionClaims, error) {
	var claims SessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return s.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return SessionClaims{}, ErrInvalidSession
	}
	return claims, nil
}

// FromRequest extracts and validates the session from the request cookie.
func (s *SessionService) FromRequest(r *http.Request) (SessionClaims, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return SessionClaims{}, ErrNoSession
	}
	return s.Parse(cookie.Value)
}

// ClearCookie returns a cookie that removes the session on the client.
func (s *SessionService) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
