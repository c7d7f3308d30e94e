package http

import (
	"net/http"
	"slices"

	"github.com/scl-platform/ssobridge/internal/lms/domain"
	"github.com/scl-platform/ssobridge/internal/lms/service"
	"github.com/scl-platform/ssobridge/pkg/httpx"
)

// sessionView is the identity echoed back to an authenticated browser.
type sessionView struct {
	UserID string   `json:"userId"`
	Email  string   `json:"email"`
	Name   string   `json:"name,omitempty"`
	Roles  []string `json:"roles"`
}

// HomeHandler serves GET /my for any authenticated session.
type HomeHandler struct {
	Sessions *service.SessionService
}

func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Sessions.FromRequest(r)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionView{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
		Roles:  claims.Roles,
	})
}

// AdminHandler serves GET /admin; manager role required.
type AdminHandler struct {
	Sessions *service.SessionService
}

func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Sessions.FromRequest(r)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if !slices.Contains(claims.Roles, domain.RoleManager.String()) {
		httpx.WriteJSON(w, http.StatusForbidden, map[string]any{
			"success": false,
			"message": "manager role required",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionView{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
		Roles:  claims.Roles,
	})
}

// LoginPageHandler serves GET /login, the generic landing for unauthenticated
// browsers and failed SSO attempts.
type LoginPageHandler struct{}

func (h *LoginPageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "login required"}
	if reason := r.URL.Query().Get("reason"); reason != "" {
		body["reason"] = reason
	}
	httpx.WriteJSON(w, http.StatusOK, body)
}

// LogoutHandler serves POST /logout and clears the session cookie.
type LogoutHandler struct {
	Sessions *service.SessionService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.Sessions.ClearCookie())
	http.Redirect(w, r, "/login", http.StatusFound)
}
