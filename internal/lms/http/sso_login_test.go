package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/scl-platform/ssobridge/internal/lms/service"
	"github.com/scl-platform/ssobridge/internal/lms/store"
	"github.com/scl-platform/ssobridge/internal/lms/store/drivers/sqlite"
	"github.com/scl-platform/ssobridge/pkg/ssoapi"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "lms.db")
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// fakeAdmissions serves /sso/verify, accepting each token in users exactly
// once.
func fakeAdmissions(t *testing.T, secret string, users map[string]ssoapi.UserPayload) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ssoapi.VerifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Secret != secret {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		user, ok := users[req.Token]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		delete(users, req.Token)
		_ = json.NewEncoder(w).Encode(ssoapi.VerifyResponse{Success: true, User: &user})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newLoginHandler(t *testing.T, admissionsURL, secret string) *SSOLoginHandler {
	t.Helper()

	return &SSOLoginHandler{
		VerifyClient: ssoapi.NewVerifyClient(admissionsURL, secret),
		Reconciler:   &service.ReconcilerService{Store: newTestStore(t)},
		Sessions:     &service.SessionService{Secret: []byte("session-secret")},
	}
}

func TestSSOLoginHandler(t *testing.T) {
	t.Parallel()

	t.Run("student lands on /my with a session cookie", func(t *testing.T) {
		admissions := fakeAdmissions(t, "shh", map[string]ssoapi.UserPayload{
			"tok-student": {Email: "student@scl.com", Firstname: "John", Lastname: "Doe", Role: "student"},
		})
		handler := newLoginHandler(t, admissions.URL, "shh")

		r := httptest.NewRequest(http.MethodGet, "/sso/login?token=tok-student", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, "/my", w.Header().Get("Location"))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, service.SessionCookieName, cookies[0].Name)

		claims, err := handler.Sessions.Parse(cookies[0].Value)
		require.NoError(t, err)
		require.Equal(t, "student@scl.com", claims.Email)
		require.Equal(t, []string{"student"}, claims.Roles)
	})

	t.Run("admin lands on /admin", func(t *testing.T) {
		admissions := fakeAdmissions(t, "shh", map[string]ssoapi.UserPayload{
			"tok-admin": {Email: "admin@scl.com", Firstname: "SCL", Lastname: "Admin", Role: "admin"},
		})
		handler := newLoginHandler(t, admissions.URL, "shh")

		r := httptest.NewRequest(http.MethodGet, "/sso/login?token=tok-admin", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, "/admin", w.Header().Get("Location"))
	})

	t.Run("missing token fails generically", func(t *testing.T) {
		admissions := fakeAdmissions(t, "shh", nil)
		handler := newLoginHandler(t, admissions.URL, "shh")

		r := httptest.NewRequest(http.MethodGet, "/sso/login", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, loginFailurePath, w.Header().Get("Location"))
		require.Empty(t, w.Result().Cookies())
	})

	t.Run("rejected token fails generically without a session", func(t *testing.T) {
		admissions := fakeAdmissions(t, "shh", nil)
		handler := newLoginHandler(t, admissions.URL, "shh")

		r := httptest.NewRequest(http.MethodGet, "/sso/login?token=unknown", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, loginFailurePath, w.Header().Get("Location"))
		require.Empty(t, w.Result().Cookies())
	})

	t.Run("verified identity creates the local account", func(t *testing.T) {
		admissions := fakeAdmissions(t, "shh", map[string]ssoapi.UserPayload{
			"tok": {Email: "faculty@scl.com", Firstname: "Grace", Lastname: "Hopper", Role: "faculty"},
		})
		handler := newLoginHandler(t, admissions.URL, "shh")

		r := httptest.NewRequest(http.MethodGet, "/sso/login?token=tok", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		require.Equal(t, http.StatusFound, w.Code)

		user, err := handler.Reconciler.Store.Users().GetUserByEmail(
			context.Background(), "faculty@scl.com")
		require.NoError(t, err)
		require.Equal(t, "Grace", user.FirstName)
	})
}
