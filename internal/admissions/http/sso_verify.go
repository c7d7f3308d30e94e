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

// VerifyHandler serves POST /sso/verify for the LMS backend. Responses never
// say whether a rejected token was unknown, consumed, or expired.
type VerifyHandler struct {
	VerifierService *service.VerifierService
}

func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req ssoapi.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, ssoapi.VerifyResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	identity, err := h.VerifierService.Verify(ctx, req.Token, req.Secret)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			httpx.WriteJSON(w, http.StatusForbidden, ssoapi.VerifyResponse{
				Success: false,
				Message: "invalid secret",
			})
		case errors.Is(err, service.ErrInvalidToken):
			httpx.WriteJSON(w, http.StatusBadRequest, ssoapi.VerifyResponse{
				Success: false,
				Message: "invalid or expired token",
			})
		default:
			log.Error("token verification failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, ssoapi.VerifyResponse{
				Success: false,
				Message: "verification unavailable",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ssoapi.VerifyResponse{
		Success: true,
		User: &ssoapi.UserPayload{
			Email:     identity.Email,
			Firstname: identity.FirstName,
			Lastname:  identity.LastName,
			Role:      identity.Role.String(),
		},
	})
}
