package authz

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// Middleware adapts the access guard to chi routes. Browser requests
// are redirected to the login page with the originating path preserved;
// API requests receive RFC7807 problems.
type Middleware struct {
	Logger    *slog.Logger
	LoginPath string
	// Fallback, when set, renders in place of the generic denial body.
	Fallback http.Handler
}

// Require gates the wrapped handler with the given requirements.
func (m Middleware) Require(req Requirements) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guard := NewGuard(req)
			input := GuardInput{Principal: PrincipalFromContext(r.Context())}
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				input.LoginInProgress = sess.LoginPending()
			}

			decision := guard.Evaluate(input)
			switch decision.State {
			case StateAllowed:
				next.ServeHTTP(w, r)
			case StateUnauthenticated:
				m.unauthenticated(w, r, decision)
			case StateDenied:
				m.denied(w, r, decision)
			default:
				// Loading never occurs on the synchronous request path.
				httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "session restoration in progress")
			}
		})
	}
}

// RequirePermissions gates a route on holding every listed permission.
func (m Middleware) RequirePermissions(perms ...string) func(http.Handler) http.Handler {
	return m.Require(Requirements{Permissions: perms})
}

// RequireAnyPermission gates a route on holding at least one of the
// listed permissions.
func (m Middleware) RequireAnyPermission(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				input := GuardInput{}
				if sess := shared.SessionFromContext(r.Context()); sess != nil {
					input.LoginInProgress = sess.LoginPending()
				}
				m.unauthenticated(w, r, NewGuard(Requirements{}).Evaluate(input))
				return
			}
			if !NewEvaluator(p).HasAnyPermission(perms...) {
				m.denied(w, r, Decision{State: StateDenied, Reason: DenialPermission})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireLevel gates a route on a minimum role level.
func (m Middleware) RequireLevel(level int) func(http.Handler) http.Handler {
	return m.Require(Requirements{MinLevel: level})
}

func (m Middleware) unauthenticated(w http.ResponseWriter, r *http.Request, decision Decision) {
	if decision.Redirect && m.LoginPath != "" && wantsHTML(r) {
		target := m.LoginPath
		if next := r.URL.RequestURI(); next != "" && next != "/" {
			target += "?next=" + url.QueryEscape(next)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	if m.Logger != nil {
		m.Logger.Debug("guard unauthenticated", slog.String("path", r.URL.Path))
	}
	httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
}

func (m Middleware) denied(w http.ResponseWriter, r *http.Request, decision Decision) {
	if m.Logger != nil {
		m.Logger.Warn("guard denied",
			slog.String("path", r.URL.Path),
			slog.String("state", decision.State.String()),
		)
	}
	if m.Fallback != nil {
		m.Fallback.ServeHTTP(w, r)
		return
	}
	switch decision.Reason {
	case DenialRole:
		httpx.Problem(w, http.StatusForbidden, "Insufficient Role", decision.Reason.Message())
	case DenialLevel:
		httpx.Problem(w, http.StatusForbidden, "Insufficient Level", decision.Reason.Message())
	default:
		httpx.Problem(w, http.StatusForbidden, "Insufficient Permissions", decision.Reason.Message())
	}
}

func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}
