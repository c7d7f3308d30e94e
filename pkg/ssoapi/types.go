// Package ssoapi defines the wire contract between the admissions service and
// the LMS, and a server-to-server client for the verify endpoint.
package ssoapi

// GenerateRequest is the body of POST /sso/generate. The email is only a
// lookup key into the server-side directory; nothing else is trusted from the
// caller.
type GenerateRequest struct {
	Email string `json:"email"`
}

// GenerateResponse is returned by POST /sso/generate.
type GenerateResponse struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	Message     string `json:"message,omitempty"`
}

// VerifyRequest is the body of POST /sso/verify. The secret is the pre-shared
// caller secret known only to the LMS backend; it authenticates the caller,
// the token authenticates the subject.
type VerifyRequest struct {
	Token  string `json:"token"`
	Secret string `json:"secret"`
}

// UserPayload is the identity bound to a verified token.
type UserPayload struct {
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Role      string `json:"role"`
}

// VerifyResponse is returned by POST /sso/verify.
type VerifyResponse struct {
	Success bool         `json:"success"`
	User    *UserPayload `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
}

// LoginRequest is the body of POST /api/login on the admissions service.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /api/login.
type LoginResponse struct {
	Success bool         `json:"success"`
	User    *UserPayload `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
}

// HealthResponse is returned by the livez/readyz endpoints of both services.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}
