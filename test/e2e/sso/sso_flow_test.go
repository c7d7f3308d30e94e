package sso_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	admissionshttp "github.com/scl-platform/ssobridge/internal/admissions/http"
	admissionsservice "github.com/scl-platform/ssobridge/internal/admissions/service"
	admissionssqlite "github.com/scl-platform/ssobridge/internal/admissions/store/drivers/sqlite"
	lmshttp "github.com/scl-platform/ssobridge/internal/lms/http"
	lmsservice "github.com/scl-platform/ssobridge/internal/lms/service"
	lmssqlite "github.com/scl-platform/ssobridge/internal/lms/store/drivers/sqlite"
	"github.com/scl-platform/ssobridge/pkg/cryptox"
	"github.com/scl-platform/ssobridge/pkg/ssoapi"

	"github.com/stretchr/testify/require"
)

/*
 * In-process end-to-end test of the full SSO exchange: admissions login,
 * token generation, browser redirect, server-to-server verification,
 * identity reconciliation, and LMS session establishment.
 */

const sharedSecret = "e2e-shared-secret"

type bridge struct {
	admissions *httptest.Server
	lms        *httptest.Server
	issuer     *admissionsservice.IssuerService
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupBridge wires both services against each other over loopback HTTP.
func setupBridge(t *testing.T) *bridge {
	t.Helper()

	logger := quietLogger()
	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	// Admissions side.
	admStore, err := admissionssqlite.NewStore(
		"file:" + filepath.Join(t.TempDir(), "admissions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = admStore.Close() })
	require.NoError(t, admStore.ApplyMigrations())

	seed := &admissionsservice.SeedService{Store: admStore, Logger: logger}
	require.NoError(t, seed.Seed(t.Context()))

	issuer := &admissionsservice.IssuerService{
		Store:        admStore,
		CallbackPath: "/sso/login",
		// LMSBaseURL is filled in once the LMS server URL is known.
	}

	admRouter := admissionshttp.NewRouter("e2e", admStore, logger, nil, nil)
	admRouter.IssuerService = issuer
	admRouter.VerifierService = &admissionsservice.VerifierService{
		Store:  admStore,
		Secret: sharedSecret,
	}
	admRouter.DirectoryService = &admissionsservice.DirectoryService{Store: admStore}
	admRouter.ApplyRoutes()

	admSrv := httptest.NewServer(admRouter)
	t.Cleanup(admSrv.Close)

	// LMS side.
	lmsStore, err := lmssqlite.NewStore("file:" + filepath.Join(t.TempDir(), "lms.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lmsStore.Close() })
	require.NoError(t, lmsStore.ApplyMigrations())

	sessions := &lmsservice.SessionService{Secret: []byte("e2e-session-secret")}

	lmsRouter := lmshttp.NewRouter("e2e", lmsStore, logger, nil, nil)
	lmsRouter.VerifyClient = ssoapi.NewVerifyClient(admSrv.URL, sharedSecret)
	lmsRouter.Reconciler = &lmsservice.ReconcilerService{Store: lmsStore}
	lmsRouter.Sessions = sessions
	lmsRouter.ApplyRoutes()

	lmsSrv := httptest.NewServer(lmsRouter)
	t.Cleanup(lmsSrv.Close)

	issuer.LMSBaseURL = lmsSrv.URL

	return &bridge{
		admissions: admSrv,
		lms:        lmsSrv,
		issuer:     issuer,
	}
}

// noRedirectClient observes 302s instead of following them, like a test
// double for the browser address bar.
func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()

	buf, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := client.Post(url, "application/json", bytes.NewReader(buf))
	require.NoError(t, err)
	return resp
}

func generateToken(t *testing.T, b *bridge, client *http.Client, email string) string {
	t.Helper()

	resp := postJSON(t, client, b.admissions.URL+"/sso/generate",
		ssoapi.GenerateRequest{Email: email})
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var gen ssoapi.GenerateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&gen))
	require.True(t, gen.Success)
	require.Contains(t, gen.RedirectURL, b.lms.URL+"/sso/login?token=")
	return gen.RedirectURL
}

func TestFullSSOExchange(t *testing.T) {
	b := setupBridge(t)
	client := noRedirectClient()

	// The admissions frontend authenticates its user first.
	resp := postJSON(t, client, b.admissions.URL+"/api/login",
		ssoapi.LoginRequest{Email: "student@scl.com", Password: "password"})
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	redirectURL := generateToken(t, b, client, "student@scl.com")

	// The browser follows the redirect to the LMS callback.
	resp, err := client.Get(redirectURL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/my", resp.Header.Get("Location"))

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == lmsservice.SessionCookieName {
			session = c
		}
	}
	require.NotNil(t, session, "callback must set the session cookie")

	// The session is usable against the LMS.
	req, err := http.NewRequest(http.MethodGet, b.lms.URL+"/my", nil)
	require.NoError(t, err)
	req.AddCookie(session)
	resp, err = client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view struct {
		Email string   `json:"email"`
		Roles []string `json:"roles"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	require.Equal(t, "student@scl.com", view.Email)
	require.Equal(t, []string{"student"}, view.Roles)
}

func TestTokenReplayFailsGenerically(t *testing.T) {
	b := setupBridge(t)
	client := noRedirectClient()

	redirectURL := generateToken(t, b, client, "student@scl.com")

	resp, err := client.Get(redirectURL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/my", resp.Header.Get("Location"))

	// Replaying the consumed link must not mint a second session.
	resp, err = client.Get(redirectURL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login?reason=sso_failed", resp.Header.Get("Location"))
	require.Empty(t, resp.Cookies())
}

func TestManagerLandsOnAdmin(t *testing.T) {
	b := setupBridge(t)
	client := noRedirectClient()

	redirectURL := generateToken(t, b, client, "admin@scl.com")

	resp, err := client.Get(redirectURL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin", resp.Header.Get("Location"))
}

func TestUnknownUserGets404(t *testing.T) {
	b := setupBridge(t)
	client := noRedirectClient()

	resp := postJSON(t, client, b.admissions.URL+"/sso/generate",
		ssoapi.GenerateRequest{Email: "ghost@scl.com"})
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var gen ssoapi.GenerateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&gen))
	require.False(t, gen.Success)
	require.Empty(t, gen.RedirectURL)
}
