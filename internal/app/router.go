package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-hrm/meridian-hrm/internal/attendance"
	"github.com/meridian-hrm/meridian-hrm/internal/auth"
	"github.com/meridian-hrm/meridian-hrm/internal/employees"
	"github.com/meridian-hrm/meridian-hrm/internal/leave"
	"github.com/meridian-hrm/meridian-hrm/internal/observability"
	"github.com/meridian-hrm/meridian-hrm/internal/roles"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
	"github.com/meridian-hrm/meridian-hrm/internal/users"
	"github.com/meridian-hrm/meridian-hrm/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	CSRFManager       *shared.CSRFManager
	Principals        auth.PrincipalResolver
	AuthHandler       *auth.Handler
	EmployeesHandler  *employees.Handler
	AttendanceHandler *attendance.Handler
	LeaveHandler      *leave.Handler
	UsersHandler      *users.Handler
	RolesHandler      *roles.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(params.Principals.Middleware)
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.EmployeesHandler != nil {
		r.Route("/employees", params.EmployeesHandler.MountRoutes)
	}
	if params.AttendanceHandler != nil {
		r.Route("/attendance", params.AttendanceHandler.MountRoutes)
	}
	if params.LeaveHandler != nil {
		r.Route("/leave", params.LeaveHandler.MountRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.RolesHandler != nil {
		r.Route("/roles", params.RolesHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
