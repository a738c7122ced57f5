package authz_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-hrm/meridian-hrm/internal/authz"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
	_ "github.com/meridian-hrm/meridian-hrm/testing"
)

func protectedHandler(t *testing.T, hit *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("protected"))
	})
}

func requestAs(roleID string, target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if roleID != "" {
		p := authz.NewPrincipal("7", "user@test.local", roleID)
		req = req.WithContext(authz.ContextWithPrincipal(req.Context(), &p))
	}
	return req
}

func TestMiddlewareUnauthenticatedJSON(t *testing.T) {
	mw := authz.Middleware{LoginPath: "/auth/login"}
	hit := false
	handler := mw.Require(authz.Requirements{})(protectedHandler(t, &hit))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestAs("", "/employees"))

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.False(t, hit)
}

func TestMiddlewareUnauthenticatedHTMLRedirect(t *testing.T) {
	mw := authz.Middleware{LoginPath: "/auth/login"}
	hit := false
	handler := mw.Require(authz.Requirements{})(protectedHandler(t, &hit))

	req := requestAs("", "/leave/pending?page=2")
	req.Header.Set("Accept", "text/html")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	location := res.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/auth/login?next="))
	require.Contains(t, location, "leave%2Fpending")
	require.False(t, hit)
}

func TestMiddlewareLoginPendingSuppressesRedirect(t *testing.T) {
	mw := authz.Middleware{LoginPath: "/auth/login"}
	hit := false
	handler := mw.Require(authz.Requirements{})(protectedHandler(t, &hit))

	sess := &shared.Session{}
	sess.SetLoginPending(true)
	req := requestAs("", "/employees")
	req.Header.Set("Accept", "text/html")
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Empty(t, res.Header().Get("Location"))
}

func TestMiddlewareRoleDenialWording(t *testing.T) {
	mw := authz.Middleware{}
	hit := false
	handler := mw.Require(authz.Requirements{Role: authz.RoleAdmin})(protectedHandler(t, &hit))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestAs(authz.RoleEmployee, "/admin"))

	require.Equal(t, http.StatusForbidden, res.Code)
	require.Contains(t, res.Body.String(), "Insufficient Role")
	require.NotContains(t, res.Body.String(), "Insufficient Permissions")
	require.False(t, hit)
}

func TestMiddlewarePermissionDenialWording(t *testing.T) {
	mw := authz.Middleware{}
	hit := false
	handler := mw.RequirePermissions(shared.PermUsersEdit)(protectedHandler(t, &hit))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestAs(authz.RoleEmployee, "/users"))

	require.Equal(t, http.StatusForbidden, res.Code)
	require.Contains(t, res.Body.String(), "Insufficient Permissions")
	require.NotContains(t, res.Body.String(), "Insufficient Role")
}

func TestMiddlewareLevelAllows(t *testing.T) {
	mw := authz.Middleware{}
	hit := false
	handler := mw.RequireLevel(3)(protectedHandler(t, &hit))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestAs(authz.RoleAdmin, "/reports"))

	require.Equal(t, http.StatusOK, res.Code)
	require.True(t, hit)
	require.Equal(t, "protected", res.Body.String())
}

func TestMiddlewareFallbackRendersOnDenial(t *testing.T) {
	fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("custom denial page"))
	})
	mw := authz.Middleware{Fallback: fallback}
	hit := false
	handler := mw.Require(authz.Requirements{MinLevel: 5})(protectedHandler(t, &hit))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestAs(authz.RoleEmployee, "/settings"))

	require.Equal(t, http.StatusForbidden, res.Code)
	require.Equal(t, "custom denial page", res.Body.String())
	require.False(t, hit)
}

func TestMiddlewareRequireAnyPermission(t *testing.T) {
	mw := authz.Middleware{}
	hit := false
	handler := mw.RequireAnyPermission(shared.PermAttendanceViewTeam, shared.PermAttendanceViewAll)(protectedHandler(t, &hit))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, requestAs(authz.RoleDeptManager, "/attendance/team"))
	require.Equal(t, http.StatusOK, res.Code)

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, requestAs(authz.RoleEmployee, "/attendance/team"))
	require.Equal(t, http.StatusForbidden, res.Code)
}
