package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-hrm/meridian-hrm/internal/app"
	"github.com/meridian-hrm/meridian-hrm/internal/attendance"
	"github.com/meridian-hrm/meridian-hrm/internal/auth"
	"github.com/meridian-hrm/meridian-hrm/internal/authz"
	"github.com/meridian-hrm/meridian-hrm/internal/employees"
	"github.com/meridian-hrm/meridian-hrm/internal/leave"
	"github.com/meridian-hrm/meridian-hrm/internal/observability"
	"github.com/meridian-hrm/meridian-hrm/internal/platform/cache"
	"github.com/meridian-hrm/meridian-hrm/internal/platform/db"
	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
	"github.com/meridian-hrm/meridian-hrm/internal/roles"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
	"github.com/meridian-hrm/meridian-hrm/internal/users"
	"github.com/meridian-hrm/meridian-hrm/jobs"
)

// overviewCounters joins attendance and leave counts for the overview.
type overviewCounters struct {
	attendance *attendance.Repository
	leave      *leave.Service
}

func (c overviewCounters) CountCheckedInToday(ctx context.Context) (int, error) {
	return c.attendance.CountCheckedInToday(ctx)
}

func (c overviewCounters) CountPendingLeave(ctx context.Context) (int, error) {
	return c.leave.CountPending(ctx)
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "meridian_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, cfg.RememberTTL)
	principals := auth.PrincipalResolver{Logger: logger, Service: authService}

	guard := authz.Middleware{Logger: logger, LoginPath: cfg.LoginPath}

	queueClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init queue client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			logger.Warn("queue client close", slog.Any("error", err))
		}
	}()

	attendanceRepo := attendance.NewRepository(dbpool)
	attendanceService := attendance.NewService(attendanceRepo, nil)

	leaveRepo := leave.NewRepository(dbpool)

	employeesRepo := employees.NewRepository(dbpool)

	notifier := jobs.LeaveNotifier{
		Client: queueClient,
		Resolve: func(ctx context.Context, employeeID int64) (string, error) {
			e, err := employeesRepo.Get(ctx, employeeID)
			if err != nil {
				return "", err
			}
			return e.Email, nil
		},
	}
	leaveService := leave.NewService(leaveRepo, notifier, logger)

	employeesService := employees.NewService(employeesRepo, overviewCounters{
		attendance: attendanceRepo,
		leave:      leaveService,
	}, auditLogger)

	selfLookup := func(r *http.Request) (int64, error) {
		p := authz.PrincipalFromContext(r.Context())
		if p == nil {
			return 0, httpx.ErrUnauthorized
		}
		e, err := employeesService.GetByEmail(r.Context(), p.Email)
		if err != nil {
			return 0, err
		}
		return e.ID, nil
	}

	employeesHandler := employees.NewHandler(logger, employeesService, guard)
	attendanceHandler := attendance.NewHandler(logger, attendanceService, attendance.SelfLookup(selfLookup), guard)
	leaveHandler := leave.NewHandler(logger, leaveService, leave.SelfLookup(selfLookup), guard)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, auditLogger)
	usersHandler := users.NewHandler(logger, usersService, guard)

	rolesHandler := roles.NewHandler(guard)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		Principals:        principals,
		AuthHandler:       authHandler,
		EmployeesHandler:  employeesHandler,
		AttendanceHandler: attendanceHandler,
		LeaveHandler:      leaveHandler,
		UsersHandler:      usersHandler,
		RolesHandler:      rolesHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
