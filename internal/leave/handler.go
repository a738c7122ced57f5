package leave

import (
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

// SelfLookup resolves the employee record behind the calling principal.
type SelfLookup func(r *http.Request) (int64, error)

// Handler exposes leave request endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	lookup    SelfLookup
	guard     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, lookup SelfLookup, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, lookup: lookup, guard: guard, validator: validator.New()}
}

// MountRoutes registers leave routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermissions(shared.PermLeaveRequest))
		r.Post("/", h.submit)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermissions(shared.PermLeaveViewOwn))
		r.Get("/", h.listOwn)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermissions(shared.PermLeaveApprove))
		r.Get("/pending", h.listPending)
		r.Post("/{id}/approve", h.approve)
		r.Post("/{id}/reject", h.reject)
	})
}

type submitRequest struct {
	Type     string `json:"type" validate:"required"`
	FromDate string `json:"from_date" validate:"required,datetime=2006-01-02"`
	ToDate   string `json:"to_date" validate:"required,datetime=2006-01-02"`
	Reason   string `json:"reason" validate:"max=500"`
}

type decisionRequest struct {
	Note string `json:"note" validate:"max=500"`
}

type requestResponse struct {
	ID           int64  `json:"id"`
	EmployeeID   int64  `json:"employee_id"`
	Type         string `json:"type"`
	FromDate     string `json:"from_date"`
	ToDate       string `json:"to_date"`
	Days         int    `json:"days"`
	Reason       string `json:"reason,omitempty"`
	Status       string `json:"status"`
	DeciderID    *int64 `json:"decider_id,omitempty"`
	DecisionNote string `json:"decision_note,omitempty"`
	DecidedAt    string `json:"decided_at,omitempty"`
}

func toRequestResponse(req Request) requestResponse {
	resp := requestResponse{
		ID:           req.ID,
		EmployeeID:   req.EmployeeID,
		Type:         req.Type,
		FromDate:     req.FromDate.Format("2006-01-02"),
		ToDate:       req.ToDate.Format("2006-01-02"),
		Days:         req.Days(),
		Reason:       req.Reason,
		Status:       req.Status,
		DeciderID:    req.DeciderID,
		DecisionNote: req.DecisionNote,
	}
	if req.DecidedAt != nil {
		resp.DecidedAt = req.DecidedAt.Format(time.RFC3339)
	}
	return resp
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.lookup(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", firstValidationError(err))
		return
	}
	from, _ := time.Parse("2006-01-02", req.FromDate)
	to, _ := time.Parse("2006-01-02", req.ToDate)

	created, err := h.service.Submit(r.Context(), employeeID, req.Type, from, to, req.Reason)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toRequestResponse(created))
}

func (h *Handler) listOwn(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.lookup(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	requests, err := h.service.ListOwn(r.Context(), employeeID)
	if err != nil {
		h.logger.Error("list own leave", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRequestResponses(requests))
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.ListPending(r.Context())
	if err != nil {
		h.logger.Error("list pending leave", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRequestResponses(requests))
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	deciderID, err := h.lookup(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request id must be numeric")
		return
	}
	var req decisionRequest
	_ = httpx.DecodeJSON(r, &req)
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", firstValidationError(err))
		return
	}

	var decided Request
	if approve {
		decided, err = h.service.Approve(r.Context(), deciderID, id, req.Note)
	} else {
		decided, err = h.service.Reject(r.Context(), deciderID, id, req.Note)
	}
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRequestResponse(decided))
}

func toRequestResponses(requests []Request) []requestResponse {
	out := make([]requestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toRequestResponse(req))
	}
	return out
}

func firstValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Error()
	}
	return err.Error()
}
