package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hrm/meridian-hrm/internal/auth"
	"github.com/meridian-hrm/meridian-hrm/internal/authz"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

func newHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	service := auth.NewService(repo, auth.NewTokenIssuer("jwtsecret", 15*time.Minute))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	csrf := shared.NewCSRFManager("csrf-secret")
	return auth.NewHandler(logger, service, sessionManager, csrf, 30*24*time.Hour), sessionManager
}

func doLogin(t *testing.T, handler *auth.Handler, sessions *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res, sess
}

func TestLoginSuccess(t *testing.T) {
	user := hashedUser(t, "correct-horse", true)
	handler, sessions := newHandler(t, &stubRepo{user: user})

	res, sess := doLogin(t, handler, sessions, `{"email":"user@test.local","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var resp struct {
		User struct {
			ID     string `json:"id"`
			RoleID string `json:"role_id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &resp))
	require.Equal(t, "1", resp.User.ID)
	require.Equal(t, authz.RoleEmployee, resp.User.RoleID)
	require.NotEmpty(t, resp.AccessToken)

	require.Equal(t, "1", sess.User())
	require.Equal(t, authz.RoleEmployee, sess.RoleID())
	require.False(t, sess.LoginPending())
}

func TestLoginInvalidCredentials(t *testing.T) {
	user := hashedUser(t, "correct-horse", true)
	handler, sessions := newHandler(t, &stubRepo{user: user})

	res, sess := doLogin(t, handler, sessions, `{"email":"user@test.local","password":"wrong-password"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Empty(t, sess.User())
	require.False(t, sess.LoginPending(), "pending flag must clear on error")
}

func TestLoginPendingVisibleAcrossRequests(t *testing.T) {
	user := hashedUser(t, "correct-horse", true)
	repo := &stubRepo{user: user}
	handler, sessions := newHandler(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"user@test.local","password":"correct-horse"}`))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sessions.Load(context.Background(), req)
	require.NoError(t, err)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	sameCookie := func() *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "test_session", Value: sess.ID})
		return r
	}

	// A request racing the credential check shares the session cookie
	// and must observe the in-flight flag so its guard does not bounce
	// the user back to the login page.
	var pendingDuringExchange bool
	repo.onFindByEmail = func() {
		other, err := sessions.Load(context.Background(), sameCookie())
		require.NoError(t, err)
		pendingDuringExchange = other.LoginPending()
	}

	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	require.True(t, pendingDuringExchange)

	after, err := sessions.Load(context.Background(), sameCookie())
	require.NoError(t, err)
	require.False(t, after.LoginPending())
	require.Equal(t, "1", after.User())
}

func TestLoginPendingClearedInStoreOnFailure(t *testing.T) {
	user := hashedUser(t, "correct-horse", true)
	handler, sessions := newHandler(t, &stubRepo{user: user})

	res, sess := doLogin(t, handler, sessions, `{"email":"user@test.local","password":"wrong-password"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "test_session", Value: sess.ID})
	stored, err := sessions.Load(context.Background(), r)
	require.NoError(t, err)
	require.False(t, stored.LoginPending())
	require.Empty(t, stored.User())
}

func TestLoginValidationFailure(t *testing.T) {
	handler, sessions := newHandler(t, &stubRepo{})

	res, _ := doLogin(t, handler, sessions, `{"email":"not-an-email","password":"short"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestSuggestEndpoint(t *testing.T) {
	handler, _ := newHandler(t, &stubRepo{})
	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/auth/suggest?email=hr.manager@company.com", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var suggestion authz.Suggestion
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &suggestion))
	require.Equal(t, authz.RoleHRManager, suggestion.RoleID)
	require.GreaterOrEqual(t, suggestion.Confidence, 85)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/auth/suggest?email=", nil))
	require.Equal(t, http.StatusNoContent, res.Code)
}

func TestMeUnauthenticatedReturnsGuest(t *testing.T) {
	handler, _ := newHandler(t, &stubRepo{})
	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var resp struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			RoleID string `json:"role_id"`
			Level  int    `json:"level"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &resp))
	require.False(t, resp.Authenticated)
	require.Equal(t, authz.RoleGuest, resp.User.RoleID)
	require.Equal(t, 0, resp.User.Level)
}

func TestMeAuthenticated(t *testing.T) {
	handler, _ := newHandler(t, &stubRepo{})
	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	p := authz.NewPrincipal("9", "hr@test.local", authz.RoleHRManager)
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(authz.ContextWithPrincipal(req.Context(), &p))

	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"authenticated":true`)
	require.Contains(t, res.Body.String(), authz.RoleHRManager)
}
