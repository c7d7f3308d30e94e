package http

import (
	"net/http"

	"github.com/scl-platform/ssobridge/internal/lms/domain"
	"github.com/scl-platform/ssobridge/internal/lms/service"
	"github.com/scl-platform/ssobridge/pkg/slogx"
	"github.com/scl-platform/ssobridge/pkg/ssoapi"
)

// loginFailurePath is where every failed SSO attempt lands. The reason code
// is generic on purpose; the specific failure lives only in the server logs.
const loginFailurePath = "/login?reason=sso_failed"

// SSOLoginHandler serves GET /sso/login, the browser landing for admissions
// redirects. It verifies the token server-to-server, reconciles the identity
// into a local account, and establishes the session.
type SSOLoginHandler struct {
	VerifyClient *ssoapi.VerifyClient
	Reconciler   *service.ReconcilerService
	Sessions     *service.SessionService
}

func (h *SSOLoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.URL.Query().Get("token")
	if token == "" {
		log.Warn("sso login without token")
		http.Redirect(w, r, loginFailurePath, http.StatusFound)
		return
	}

	// 1. Server-to-server verification. The token is consumed on the
	//    admissions side whether or not the rest of this handler succeeds.
	identity, err := h.VerifyClient.Verify(ctx, token)
	if err != nil {
		log.Warn("sso token verification rejected", "err", err)
		http.Redirect(w, r, loginFailurePath, http.StatusFound)
		return
	}

	// 2. Materialize the identity as a local account.
	user, err := h.Reconciler.Reconcile(ctx, identity)
	if err != nil {
		log.Error("sso reconciliation failed", "err", err)
		http.Redirect(w, r, loginFailurePath, http.StatusFound)
		return
	}

	// 3. Establish the browser session.
	cookie, err := h.Sessions.Issue(user)
	if err != nil {
		log.Error("session issuance failed", "err", err)
		http.Redirect(w, r, loginFailurePath, http.StatusFound)
		return
	}
	http.SetCookie(w, cookie)

	target := "/my"
	if user.HasRole(domain.RoleManager) {
		target = "/admin"
	}
	http.Redirect(w, r, target, http.StatusFound)
}
