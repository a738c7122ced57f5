package employees

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-hrm/meridian-hrm/internal/authz"
	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// Handler exposes the employee directory as JSON endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers employee routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermissions(shared.PermProfileView))
		r.Get("/me", h.showSelf)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermissions(shared.PermReportsView))
		r.Get("/overview", h.showOverview)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermissions(shared.PermEmployeesView))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermissions(shared.PermEmployeesEdit))
		r.Post("/", h.create)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.deactivate)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListEmployeesRequest{
		Department: r.URL.Query().Get("department"),
		Search:     r.URL.Query().Get("search"),
		ActiveOnly: r.URL.Query().Get("include_inactive") != "true",
	}
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		req.Page = p
	}
	if pp, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && pp > 0 && pp <= 200 {
		req.PerPage = pp
	}

	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list employees", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	p := shared.NewPagination(req.Page, req.PerPage, total)
	responses := make([]employeeResponse, 0, len(items))
	for _, e := range items {
		responses = append(responses, toResponse(e))
	}
	httpx.JSON(w, http.StatusOK, httpx.ListEnvelope{
		Items:      responses,
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid employee id")
		return
	}
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) showSelf(w http.ResponseWriter, r *http.Request) {
	p := authz.PrincipalFromContext(r.Context())
	if p == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	e, err := h.service.GetByEmail(r.Context(), p.Email)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) showOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		h.logger.Error("employee overview", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", firstValidationError(err))
		return
	}
	created, err := h.service.Create(r.Context(), actorID(r), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid employee id")
		return
	}
	var req UpdateEmployeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", firstValidationError(err))
		return
	}
	updated, err := h.service.Update(r.Context(), actorID(r), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid employee id")
		return
	}
	if err := h.service.Deactivate(r.Context(), actorID(r), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func actorID(r *http.Request) int64 {
	p := authz.PrincipalFromContext(r.Context())
	if p == nil {
		return 0
	}
	id, _ := strconv.ParseInt(p.UserID, 10, 64)
	return id
}

func firstValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Error()
	}
	return err.Error()
}
