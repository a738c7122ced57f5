package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/meridian-hrm/meridian-hrm/internal/authz"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// PrincipalResolver restores the verified principal for every request:
// first from the redis-backed session, then from a Bearer token. A
// restoration failure is treated as "no session"; requests proceed
// unauthenticated, never allowed.
type PrincipalResolver struct {
	Logger  *slog.Logger
	Service *Service
}

// Middleware attaches the resolved principal to the request context.
func (pr PrincipalResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := pr.resolve(r); p != nil {
			r = r.WithContext(authz.ContextWithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

func (pr PrincipalResolver) resolve(r *http.Request) *authz.Principal {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && sess.User() != "" {
		p := authz.NewPrincipal(sess.User(), sess.Email(), sess.RoleID())
		return &p
	}

	raw := bearerToken(r)
	if raw == "" {
		return nil
	}
	user, err := pr.Service.VerifyToken(r.Context(), raw)
	if err != nil {
		if pr.Logger != nil {
			pr.Logger.Debug("bearer token rejected", slog.Any("error", err))
		}
		return nil
	}
	p := authz.NewPrincipal(strconv.FormatInt(user.ID, 10), user.Email, user.RoleID)
	return &p
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
