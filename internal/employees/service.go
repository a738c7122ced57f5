package employees

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
	"github.com/meridian-hrm/meridian-hrm/internal/shared"
)

// OverviewCounters supplies the non-directory counts for the overview.
type OverviewCounters interface {
	CountCheckedInToday(ctx context.Context) (int, error)
	CountPendingLeave(ctx context.Context) (int, error)
}

// Service handles employee business logic.
type Service struct {
	repo     RepositoryPort
	counters OverviewCounters
	audit    *shared.AuditLogger
	titler   cases.Caser
	overview singleflight.Group
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, counters OverviewCounters, audit *shared.AuditLogger) *Service {
	return &Service{
		repo:     repo,
		counters: counters,
		audit:    audit,
		titler:   cases.Title(language.English, cases.NoLower),
	}
}

// List returns a page of employees with the total count.
func (s *Service) List(ctx context.Context, req ListEmployeesRequest) ([]Employee, int, error) {
	return s.repo.List(ctx, req)
}

// Get fetches one employee.
func (s *Service) Get(ctx context.Context, id int64) (Employee, error) {
	return s.repo.Get(ctx, id)
}

// GetByEmail fetches the employee record behind an account email.
func (s *Service) GetByEmail(ctx context.Context, email string) (Employee, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Create validates and inserts a new employee.
func (s *Service) Create(ctx context.Context, actorID int64, req CreateEmployeeRequest) (Employee, error) {
	hireDate, err := time.Parse("2006-01-02", req.HireDate)
	if err != nil {
		return Employee{}, fmt.Errorf("%w: hire_date must be YYYY-MM-DD", httpx.ErrValidation)
	}
	e := Employee{
		Number:     strings.ToUpper(strings.TrimSpace(req.Number)),
		Name:       s.normalizeName(req.Name),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Department: strings.TrimSpace(req.Department),
		Position:   strings.TrimSpace(req.Position),
		HireDate:   hireDate,
		ManagerID:  req.ManagerID,
	}
	created, err := s.repo.Insert(ctx, e)
	if err != nil {
		return Employee{}, err
	}
	s.record(ctx, actorID, "employee.create", created.ID)
	return created, nil
}

// Update applies the provided fields to an existing employee.
func (s *Service) Update(ctx context.Context, actorID, id int64, req UpdateEmployeeRequest) (Employee, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	if req.Name != nil {
		current.Name = s.normalizeName(*req.Name)
	}
	if req.Department != nil {
		current.Department = strings.TrimSpace(*req.Department)
	}
	if req.Position != nil {
		current.Position = strings.TrimSpace(*req.Position)
	}
	if req.ManagerID != nil {
		current.ManagerID = req.ManagerID
	}
	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return Employee{}, err
	}
	s.record(ctx, actorID, "employee.update", updated.ID)
	return updated, nil
}

// Deactivate archives an employee record.
func (s *Service) Deactivate(ctx context.Context, actorID, id int64) error {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.record(ctx, actorID, "employee.deactivate", id)
	return nil
}

// Overview fans out the three headline counts in parallel. Concurrent
// callers collapse onto a single in-flight computation.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	v, err, _ := s.overview.Do("overview", func() (any, error) {
		var out Overview
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			n, err := s.repo.CountActive(gctx)
			out.Headcount = n
			return err
		})
		g.Go(func() error {
			n, err := s.counters.CountCheckedInToday(gctx)
			out.CheckedInToday = n
			return err
		})
		g.Go(func() error {
			n, err := s.counters.CountPendingLeave(gctx)
			out.PendingLeave = n
			return err
		})
		if err := g.Wait(); err != nil {
			return Overview{}, err
		}
		return out, nil
	})
	if err != nil {
		return Overview{}, err
	}
	return v.(Overview), nil
}

// normalizeName trims and title-cases a display name, collapsing
// internal runs of whitespace.
func (s *Service) normalizeName(raw string) string {
	fields := strings.Fields(raw)
	for i, f := range fields {
		// Preserve already-capitalized particles like "McDonald".
		if f == strings.ToLower(f) {
			fields[i] = s.titler.String(f)
		}
	}
	return strings.Join(fields, " ")
}

func (s *Service) record(ctx context.Context, actorID int64, action string, entityID int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "employee",
		EntityID: fmt.Sprintf("%d", entityID),
	})
}
