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

// GenerateHandler serves POST /sso/generate. The admissions frontend calls it
// for its own already-authenticated user; the email in the body is only a
// directory lookup key.
type GenerateHandler struct {
	IssuerService *service.IssuerService
}

func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req ssoapi.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, ssoapi.GenerateResponse{
			Success: false,
			Message: "email is required",
		})
		return
	}

	_, redirectURL, err := h.IssuerService.Issue(ctx, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIdentityNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, ssoapi.GenerateResponse{
				Success: false,
				Message: "user not found",
			})
		default:
			log.Error("token issuance failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, ssoapi.GenerateResponse{
				Success: false,
				Message: "failed to generate sso token",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ssoapi.GenerateResponse{
		Success:     true,
		RedirectURL: redirectURL,
	})
}
