package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
)

// DecisionNotifier enqueues a notification after a request is decided.
// Failures are logged, never surfaced to the approver.
type DecisionNotifier interface {
	NotifyDecision(ctx context.Context, req Request) error
}

// Service handles leave business logic.
type Service struct {
	repo     RepositoryPort
	notifier DecisionNotifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, notifier DecisionNotifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var validTypes = map[string]struct{}{
	TypeAnnual: {},
	TypeSick:   {},
	TypeUnpaid: {},
}

// Submit validates and stores a new leave request.
func (s *Service) Submit(ctx context.Context, employeeID int64, leaveType string, from, to time.Time, reason string) (Request, error) {
	if _, ok := validTypes[leaveType]; !ok {
		return Request{}, fmt.Errorf("%w: unknown leave type %q", httpx.ErrValidation, leaveType)
	}
	if to.Before(from) {
		return Request{}, fmt.Errorf("%w: to_date before from_date", httpx.ErrValidation)
	}
	today := s.today()
	if from.Before(today) {
		return Request{}, fmt.Errorf("%w: leave cannot start in the past", httpx.ErrValidation)
	}
	return s.repo.Insert(ctx, Request{
		EmployeeID: employeeID,
		Type:       leaveType,
		FromDate:   from,
		ToDate:     to,
		Reason:     reason,
	})
}

// ListOwn returns the employee's requests.
func (s *Service) ListOwn(ctx context.Context, employeeID int64) ([]Request, error) {
	return s.repo.ListByEmployee(ctx, employeeID)
}

// ListPending returns all undecided requests.
func (s *Service) ListPending(ctx context.Context) ([]Request, error) {
	return s.repo.ListPending(ctx)
}

// Approve marks a pending request approved.
func (s *Service) Approve(ctx context.Context, deciderEmployeeID, id int64, note string) (Request, error) {
	return s.decide(ctx, deciderEmployeeID, id, StatusApproved, note)
}

// Reject marks a pending request rejected.
func (s *Service) Reject(ctx context.Context, deciderEmployeeID, id int64, note string) (Request, error) {
	return s.decide(ctx, deciderEmployeeID, id, StatusRejected, note)
}

// CountPending proxies the repository count for the overview.
func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}

func (s *Service) decide(ctx context.Context, deciderEmployeeID, id int64, status, note string) (Request, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if current.EmployeeID == deciderEmployeeID {
		return Request{}, fmt.Errorf("%w: cannot decide your own leave request", httpx.ErrForbidden)
	}
	if current.Status != StatusPending {
		return Request{}, fmt.Errorf("%w: request already decided", httpx.ErrConflict)
	}

	decided, err := s.repo.Decide(ctx, id, status, deciderEmployeeID, note, s.now())
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			// Lost the race with another approver.
			return Request{}, fmt.Errorf("%w: request already decided", httpx.ErrConflict)
		}
		return Request{}, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyDecision(ctx, decided); err != nil && s.logger != nil {
			s.logger.Warn("enqueue leave decision notification", slog.Any("error", err))
		}
	}
	return decided, nil
}

func (s *Service) today() time.Time {
	t := s.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
