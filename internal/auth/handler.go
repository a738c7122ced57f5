package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-hrm/meridian-hrm/internal/authz"
	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrf           *shared.CSRFManager
	rememberTTL    time.Duration
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager, rememberTTL time.Duration) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrf:           csrf,
		rememberTTL:    rememberTTL,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
	r.Get("/suggest", h.handleSuggest)
	r.Get("/csrf", h.handleCSRF)
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	RememberMe bool   `json:"remember_me"`
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	RoleID      string `json:"role_id"`
	RoleName    string `json:"role_name"`
	Level       int    `json:"level"`
	Permissions any    `json:"permissions"`
	Wildcard    bool   `json:"wildcard"`
}

type loginResponse struct {
	User        userResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	sess := shared.SessionFromContext(r.Context())
	// Guards mounted while this exchange is in flight must not bounce
	// the user back to the login page. The flag is written through to
	// the store so concurrent requests sharing the cookie observe it
	// before this response commits.
	h.setLoginPending(r.Context(), sess, true)

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.setLoginPending(r.Context(), sess, false)
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
		return
	}

	token, expiresAt, err := h.service.IssueToken(user)
	if err != nil {
		h.setLoginPending(r.Context(), sess, false)
		h.logger.Error("issue token", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	sessionTTL := h.sessionManager.TTL()
	if req.RememberMe && h.rememberTTL > sessionTTL {
		sessionTTL = h.rememberTTL
	}
	if sess != nil {
		sess.SetPrincipal(strconv.FormatInt(user.ID, 10), user.Email, user.RoleID)
		if req.RememberMe {
			sess.ExtendTTL(sessionTTL)
		}
		h.setLoginPending(r.Context(), sess, false)
		if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, time.Now().Add(sessionTTL), r.RemoteAddr, r.UserAgent()); err != nil {
			h.logger.Warn("register session", slog.Any("error", err))
		}
	} else {
		h.logger.Error("session missing during login")
	}

	httpx.JSON(w, http.StatusOK, loginResponse{
		User:        toUserResponse(user),
		AccessToken: token,
		ExpiresAt:   expiresAt,
	})
}

// setLoginPending flips the in-flight flag and persists the session
// immediately so the change is visible outside this request.
func (h *Handler) setLoginPending(ctx context.Context, sess *shared.Session, pending bool) {
	if sess == nil {
		return
	}
	sess.SetLoginPending(pending)
	if err := h.sessionManager.Save(ctx, sess); err != nil {
		h.logger.Warn("persist session", slog.Any("error", err))
	}
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

type meResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          userResponse `json:"user"`
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p := authz.PrincipalFromContext(r.Context())
	eval := authz.NewEvaluator(p)
	resp := meResponse{
		Authenticated: p != nil,
		User: userResponse{
			RoleID:      eval.Role().ID,
			RoleName:    eval.Role().DisplayName,
			Level:       eval.Role().Level,
			Permissions: eval.Role().Permissions(),
			Wildcard:    eval.Role().Wildcard(),
		},
	}
	if p != nil {
		resp.User.ID = p.UserID
		resp.User.Email = p.Email
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCSRF(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || h.csrf == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	token, err := h.csrf.EnsureToken(r.Context(), sess)
	if err != nil {
		h.logger.Error("ensure csrf token", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}

// handleSuggest classifies a free-text email into a probable role for
// login-screen display. The result is advisory only; nothing here
// grants access.
func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	suggestion, ok := authz.Suggest(r.URL.Query().Get("email"))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httpx.JSON(w, http.StatusOK, suggestion)
}

func toUserResponse(user *User) userResponse {
	role, ok := authz.Lookup(user.RoleID)
	if !ok {
		role = authz.Guest()
	}
	return userResponse{
		ID:          strconv.FormatInt(user.ID, 10),
		Email:       user.Email,
		Name:        user.Name,
		RoleID:      role.ID,
		RoleName:    role.DisplayName,
		Level:       role.Level,
		Permissions: role.Permissions(),
		Wildcard:    role.Wildcard(),
	}
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Error()
	}
	return err.Error()
}
