package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hrm/meridian-hrm/internal/shared"
	_ "github.com/meridian-hrm/meridian-hrm/testing"
)

func newManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func requestWithCookie(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: id})
	return req
}

func TestCommitThenLoadRoundTrip(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetPrincipal("7", "user@test.local", "employee")
	sess.Set("theme", "dark")

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, httptest.NewRequest(http.MethodGet, "/", nil), sess))
	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "test_session", cookies[0].Name)

	reloaded, err := sm.Load(ctx, requestWithCookie(cookies[0].Value))
	require.NoError(t, err)
	require.Equal(t, "7", reloaded.User())
	require.Equal(t, "user@test.local", reloaded.Email())
	require.Equal(t, "employee", reloaded.RoleID())
	require.Equal(t, "dark", reloaded.Get("theme"))
}

func TestSaveVisibleToConcurrentLoad(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetLoginPending(true)
	require.NoError(t, sm.Save(ctx, sess))

	// A second request sharing the cookie must observe the in-flight
	// flag before the first request's response is written.
	other, err := sm.Load(ctx, requestWithCookie(sess.ID))
	require.NoError(t, err)
	require.True(t, other.LoginPending())

	sess.SetLoginPending(false)
	require.NoError(t, sm.Save(ctx, sess))

	other, err = sm.Load(ctx, requestWithCookie(sess.ID))
	require.NoError(t, err)
	require.False(t, other.LoginPending())
}

func TestDestroyedSessionIsNotSaved(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Set("k", "v")
	require.NoError(t, sm.Save(ctx, sess))

	sm.Destroy(sess)
	require.NoError(t, sm.Save(ctx, sess))

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, httptest.NewRequest(http.MethodGet, "/", nil), sess))

	reloaded, err := sm.Load(ctx, requestWithCookie(sess.ID))
	require.NoError(t, err)
	require.Empty(t, reloaded.Get("k"))
}
