package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
	_ "github.com/meridian-hrm/meridian-hrm/testing"
)

type memRepo struct {
	records map[int64]Record
	nextID  int64
}

func newMemRepo() *memRepo {
	return &memRepo{records: make(map[int64]Record), nextID: 1}
}

func (m *memRepo) OpenRecord(ctx context.Context, employeeID int64, workDate time.Time) (Record, error) {
	for _, rec := range m.records {
		if rec.EmployeeID == employeeID && rec.WorkDate.Equal(workDate) && rec.CheckOut == nil {
			return rec, nil
		}
	}
	return Record{}, httpx.ErrNotFound
}

func (m *memRepo) Insert(ctx context.Context, rec Record) (Record, error) {
	rec.ID = m.nextID
	m.nextID++
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memRepo) Close(ctx context.Context, id int64, checkOut time.Time, note string) (Record, error) {
	rec, ok := m.records[id]
	if !ok || rec.CheckOut != nil {
		return Record{}, httpx.ErrNotFound
	}
	rec.CheckOut = &checkOut
	if note != "" {
		rec.Note = note
	}
	m.records[id] = rec
	return rec, nil
}

func (m *memRepo) ListByEmployee(ctx context.Context, employeeID int64, from, to time.Time) ([]Record, error) {
	var out []Record
	for _, rec := range m.records {
		if rec.EmployeeID == employeeID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memRepo) ListAll(ctx context.Context, from, to time.Time) ([]Record, error) {
	var out []Record
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

func (m *memRepo) CountCheckedInToday(ctx context.Context) (int, error) {
	return len(m.records), nil
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestCheckInThenOut(t *testing.T) {
	repo := newMemRepo()
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	svc := NewService(repo, fixedClock(start))

	rec, err := svc.CheckIn(context.Background(), 7, "on site")
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if rec.CheckOut != nil {
		t.Fatalf("fresh record must be open")
	}
	if !rec.WorkDate.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("work date not truncated: %v", rec.WorkDate)
	}

	svc.now = fixedClock(start.Add(8 * time.Hour))
	closed, err := svc.CheckOut(context.Background(), 7, "")
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if closed.CheckOut == nil {
		t.Fatalf("record must be closed")
	}
	if got := closed.Duration(); got != 8*time.Hour {
		t.Fatalf("expected 8h worked, got %v", got)
	}
}

func TestDoubleCheckInConflicts(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, fixedClock(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)))

	if _, err := svc.CheckIn(context.Background(), 7, ""); err != nil {
		t.Fatalf("first check in: %v", err)
	}
	_, err := svc.CheckIn(context.Background(), 7, "")
	if !errors.Is(err, httpx.ErrConflict) {
		t.Fatalf("expected conflict on second check in, got %v", err)
	}
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	svc := NewService(newMemRepo(), fixedClock(time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC)))
	_, err := svc.CheckOut(context.Background(), 7, "")
	if !errors.Is(err, httpx.ErrConflict) {
		t.Fatalf("expected conflict without an open check in, got %v", err)
	}
}

func TestCheckInNextDayAllowed(t *testing.T) {
	repo := newMemRepo()
	day1 := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	svc := NewService(repo, fixedClock(day1))

	if _, err := svc.CheckIn(context.Background(), 7, ""); err != nil {
		t.Fatalf("day one check in: %v", err)
	}
	svc.now = fixedClock(day1.AddDate(0, 0, 1))
	if _, err := svc.CheckIn(context.Background(), 7, ""); err != nil {
		t.Fatalf("next-day check in should not conflict: %v", err)
	}
}
