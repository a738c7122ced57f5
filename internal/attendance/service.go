package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
)

// Clock abstracts time for testability.
type Clock func() time.Time

// Service handles attendance business logic.
type Service struct {
	repo RepositoryPort
	now  Clock
}

// NewService builds Service instance. A nil clock defaults to UTC now.
func NewService(repo RepositoryPort, clock Clock) *Service {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Service{repo: repo, now: clock}
}

// CheckIn opens today's attendance record. A second check-in on the
// same day conflicts.
func (s *Service) CheckIn(ctx context.Context, employeeID int64, note string) (Record, error) {
	now := s.now()
	workDate := truncateToDay(now)

	if _, err := s.repo.OpenRecord(ctx, employeeID, workDate); err == nil {
		return Record{}, fmt.Errorf("%w: already checked in today", httpx.ErrConflict)
	} else if !errors.Is(err, httpx.ErrNotFound) {
		return Record{}, err
	}

	return s.repo.Insert(ctx, Record{
		EmployeeID: employeeID,
		WorkDate:   workDate,
		CheckIn:    now,
		Note:       note,
	})
}

// CheckOut closes today's open record and stamps the duration.
func (s *Service) CheckOut(ctx context.Context, employeeID int64, note string) (Record, error) {
	now := s.now()
	open, err := s.repo.OpenRecord(ctx, employeeID, truncateToDay(now))
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return Record{}, fmt.Errorf("%w: no open check-in today", httpx.ErrConflict)
		}
		return Record{}, err
	}
	return s.repo.Close(ctx, open.ID, now, note)
}

// ListOwn returns the employee's records for the date range, defaulting
// to the last 30 days.
func (s *Service) ListOwn(ctx context.Context, employeeID int64, from, to time.Time) ([]Record, error) {
	from, to = s.defaultRange(from, to)
	return s.repo.ListByEmployee(ctx, employeeID, from, to)
}

// ListAll returns everyone's records for the date range.
func (s *Service) ListAll(ctx context.Context, from, to time.Time) ([]Record, error) {
	from, to = s.defaultRange(from, to)
	return s.repo.ListAll(ctx, from, to)
}

// CountCheckedInToday proxies the repository count for the overview.
func (s *Service) CountCheckedInToday(ctx context.Context) (int, error) {
	return s.repo.CountCheckedInToday(ctx)
}

func (s *Service) defaultRange(from, to time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = truncateToDay(s.now())
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	return from, to
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
