package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/scl-platform/ssobridge/internal/admissions/service"
	"github.com/scl-platform/ssobridge/pkg/httpx"
	"github.com/scl-platform/ssobridge/pkg/slogx"
	"github.com/scl-platform/ssobridge/pkg/ssoapi"
)

// LoginHandler serves POST /api/login for the admissions frontend.
type LoginHandler struct {
	DirectoryService *service.DirectoryService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req ssoapi.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Email == "" || req.Password == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ssoapi.LoginResponse{
			Success: false,
			Message: "email and password are required",
		})
		return
	}

	identity, err := h.DirectoryService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteJSON(w, http.StatusUnauthorized, ssoapi.LoginResponse{
				Success: false,
				Message: "invalid credentials",
			})
			return
		}
		log.Error("login failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, ssoapi.LoginResponse{
			Success: false,
			Message: "login unavailable",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ssoapi.LoginResponse{
		Success: true,
		User: &ssoapi.UserPayload{
			Email:     identity.Email,
			Firstname: identity.FirstName,
			Lastname:  identity.LastName,
			Role:      identity.Role.String(),
		},
	})
}
