// Package roles exposes the static role catalog as a read-only API
// surface. Roles are defined in code; there is nothing to create or
// edit at runtime.
package roles

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-hrm/meridian-hrm/internal/authz"
	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// Handler serves the role catalog.
type Handler struct {
	guard authz.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(guard authz.Middleware) *Handler {
	return &Handler{guard: guard}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermissions(shared.PermRolesView))
		r.Get("/", h.list)
		r.Get("/permissions", h.permissions)
		r.Get("/{id}", h.show)
	})
}

type roleResponse struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Level       int      `json:"level"`
	Group       string   `json:"group"`
	Color       string   `json:"color"`
	Wildcard    bool     `json:"wildcard"`
	Permissions []string `json:"permissions"`
}

func toRoleResponse(role authz.Role) roleResponse {
	return roleResponse{
		ID:          role.ID,
		DisplayName: role.DisplayName,
		Level:       role.Level,
		Group:       role.Group,
		Color:       role.Color,
		Wildcard:    role.Wildcard(),
		Permissions: role.Permissions(),
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	roles := authz.Roles()
	out := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, toRoleResponse(role))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	role, ok := authz.Lookup(chi.URLParam(r, "id"))
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, toRoleResponse(role))
}

func (h *Handler) permissions(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string][]string{"permissions": shared.CoreScopes()})
}
