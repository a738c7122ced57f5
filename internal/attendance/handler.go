package attendance

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-hrm/meridian-hrm/internal/authz"
	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// SelfLookup resolves the employee record behind the calling principal.
type SelfLookup func(r *http.Request) (int64, error)

// Handler exposes attendance endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	lookup  SelfLookup
	guard   authz.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, lookup SelfLookup, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, lookup: lookup, guard: guard}
}

// MountRoutes registers attendance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermissions(shared.PermAttendanceCheckIn))
		r.Post("/check-in", h.checkIn)
		r.Post("/check-out", h.checkOut)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermissions(shared.PermAttendanceViewOwn))
		r.Get("/", h.listOwn)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAnyPermission(shared.PermAttendanceViewTeam, shared.PermAttendanceViewAll))
		r.Get("/all", h.listAll)
	})
}

type noteRequest struct {
	Note string `json:"note"`
}

type recordResponse struct {
	ID         int64      `json:"id"`
	EmployeeID int64      `json:"employee_id"`
	WorkDate   string     `json:"work_date"`
	CheckIn    time.Time  `json:"check_in"`
	CheckOut   *time.Time `json:"check_out,omitempty"`
	Minutes    int        `json:"minutes_worked"`
	Note       string     `json:"note,omitempty"`
}

func toRecordResponse(rec Record) recordResponse {
	return recordResponse{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		WorkDate:   rec.WorkDate.Format("2006-01-02"),
		CheckIn:    rec.CheckIn,
		CheckOut:   rec.CheckOut,
		Minutes:    int(rec.Duration().Minutes()),
		Note:       rec.Note,
	}
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.lookup(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req noteRequest
	_ = httpx.DecodeJSON(r, &req)

	rec, err := h.service.CheckIn(r.Context(), employeeID, req.Note)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toRecordResponse(rec))
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.lookup(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req noteRequest
	_ = httpx.DecodeJSON(r, &req)

	rec, err := h.service.CheckOut(r.Context(), employeeID, req.Note)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRecordResponse(rec))
}

func (h *Handler) listOwn(w http.ResponseWriter, r *http.Request) {
	employeeID, err := h.lookup(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	from, to := parseRange(r)
	records, err := h.service.ListOwn(r.Context(), employeeID, from, to)
	if err != nil {
		h.logger.Error("list own attendance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRecordResponses(records))
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	from, to := parseRange(r)
	records, err := h.service.ListAll(r.Context(), from, to)
	if err != nil {
		h.logger.Error("list all attendance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRecordResponses(records))
}

func toRecordResponses(records []Record) []recordResponse {
	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	return out
}

func parseRange(r *http.Request) (time.Time, time.Time) {
	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		if parsed, err := time.Parse("2006-01-02", v); err == nil {
			from = parsed
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if parsed, err := time.Parse("2006-01-02", v); err == nil {
			to = parsed
		}
	}
	return from, to
}
