package leave

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
)

type memRepo struct {
	nextID   int64
	requests map[int64]Request
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, requests: map[int64]Request{}}
}

func (m *memRepo) Insert(_ context.Context, req Request) (Request, error) {
	req.ID = m.nextID
	req.Status = StatusPending
	req.CreatedAt = time.Now().UTC()
	m.nextID++
	m.requests[req.ID] = req
	return req, nil
}

func (m *memRepo) Get(_ context.Context, id int64) (Request, error) {
	req, ok := m.requests[id]
	if !ok {
		return Request{}, httpx.ErrNotFound
	}
	return req, nil
}

func (m *memRepo) ListByEmployee(_ context.Context, employeeID int64) ([]Request, error) {
	var out []Request
	for _, req := range m.requests {
		if req.EmployeeID == employeeID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *memRepo) ListPending(_ context.Context) ([]Request, error) {
	var out []Request
	for _, req := range m.requests {
		if req.Status == StatusPending {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *memRepo) Decide(_ context.Context, id int64, status string, deciderID int64, note string, at time.Time) (Request, error) {
	req, ok := m.requests[id]
	if !ok || req.Status != StatusPending {
		return Request{}, httpx.ErrNotFound
	}
	req.Status = status
	req.DeciderID = &deciderID
	req.DecisionNote = note
	req.DecidedAt = &at
	m.requests[id] = req
	return req, nil
}

func (m *memRepo) CountPending(_ context.Context) (int, error) {
	n := 0
	for _, req := range m.requests {
		if req.Status == StatusPending {
			n++
		}
	}
	return n, nil
}

type stubNotifier struct {
	notified []Request
	err      error
}

func (s *stubNotifier) NotifyDecision(_ context.Context, req Request) error {
	s.notified = append(s.notified, req)
	return s.err
}

func newTestService(repo RepositoryPort, notifier DecisionNotifier) *Service {
	svc := NewService(repo, notifier, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time {
		return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSubmitValidation(t *testing.T) {
	svc := newTestService(newMemRepo(), &stubNotifier{})
	ctx := context.Background()

	_, err := svc.Submit(ctx, 1, "sabbatical", day(2025, 3, 11), day(2025, 3, 12), "")
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Submit(ctx, 1, TypeAnnual, day(2025, 3, 12), day(2025, 3, 11), "")
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Submit(ctx, 1, TypeAnnual, day(2025, 3, 9), day(2025, 3, 11), "")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSubmitSameDayAllowed(t *testing.T) {
	svc := newTestService(newMemRepo(), &stubNotifier{})

	req, err := svc.Submit(context.Background(), 1, TypeSick, day(2025, 3, 10), day(2025, 3, 10), "flu")
	require.NoError(t, err)
	require.Equal(t, StatusPending, req.Status)
	require.Equal(t, 1, req.Days())
}

func TestApproveNotifies(t *testing.T) {
	repo := newMemRepo()
	notifier := &stubNotifier{}
	svc := newTestService(repo, notifier)
	ctx := context.Background()

	req, err := svc.Submit(ctx, 1, TypeAnnual, day(2025, 3, 17), day(2025, 3, 21), "holiday")
	require.NoError(t, err)

	decided, err := svc.Approve(ctx, 2, req.ID, "enjoy")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, decided.Status)
	require.NotNil(t, decided.DeciderID)
	require.Equal(t, int64(2), *decided.DeciderID)
	require.Equal(t, "enjoy", decided.DecisionNote)
	require.Len(t, notifier.notified, 1)
	require.Equal(t, req.ID, notifier.notified[0].ID)
}

func TestDecideOwnRequestForbidden(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &stubNotifier{})
	ctx := context.Background()

	req, err := svc.Submit(ctx, 1, TypeAnnual, day(2025, 3, 17), day(2025, 3, 18), "")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, 1, req.ID, "")
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestDecideTwiceConflicts(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &stubNotifier{})
	ctx := context.Background()

	req, err := svc.Submit(ctx, 1, TypeUnpaid, day(2025, 3, 17), day(2025, 3, 18), "")
	require.NoError(t, err)

	_, err = svc.Reject(ctx, 2, req.ID, "short notice")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, 3, req.ID, "")
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestNotifierFailureDoesNotFailDecision(t *testing.T) {
	repo := newMemRepo()
	notifier := &stubNotifier{err: errors.New("queue down")}
	svc := newTestService(repo, notifier)
	ctx := context.Background()

	req, err := svc.Submit(ctx, 1, TypeSick, day(2025, 3, 11), day(2025, 3, 12), "")
	require.NoError(t, err)

	decided, err := svc.Approve(ctx, 2, req.ID, "")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, decided.Status)
}

func TestCountPending(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &stubNotifier{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(ctx, int64(i+1), TypeAnnual, day(2025, 3, 17), day(2025, 3, 18), "")
		require.NoError(t, err)
	}
	_, err := svc.Approve(ctx, 9, 1, "")
	require.NoError(t, err)

	n, err := svc.CountPending(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
