package leave

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
)

// RepositoryPort defines data access methods for leave requests.
type RepositoryPort interface {
	Insert(ctx context.Context, req Request) (Request, error)
	Get(ctx context.Context, id int64) (Request, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]Request, error)
	ListPending(ctx context.Context) ([]Request, error)
	Decide(ctx context.Context, id int64, status string, deciderID int64, note string, at time.Time) (Request, error)
	CountPending(ctx context.Context) (int, error)
}

// Repository persists leave requests in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const requestColumns = `id, employee_id, type, from_date, to_date, COALESCE(reason, ''), status, decider_id, COALESCE(decision_note, ''), created_at, decided_at`

// Insert stores a new pending request.
func (r *Repository) Insert(ctx context.Context, req Request) (Request, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO leave_requests (employee_id, type, from_date, to_date, reason, status, created_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), 'pending', NOW())
		 RETURNING `+requestColumns,
		req.EmployeeID, req.Type, req.FromDate, req.ToDate, req.Reason)
	return scanRequest(row)
}

// Get fetches a request by ID.
func (r *Repository) Get(ctx context.Context, id int64) (Request, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM leave_requests WHERE id = $1`, id)
	return scanRequest(row)
}

// ListByEmployee returns an employee's requests, newest first.
func (r *Repository) ListByEmployee(ctx context.Context, employeeID int64) ([]Request, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+requestColumns+` FROM leave_requests WHERE employee_id = $1 ORDER BY created_at DESC`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListPending returns all undecided requests, oldest first.
func (r *Repository) ListPending(ctx context.Context) ([]Request, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+requestColumns+` FROM leave_requests WHERE status = 'pending' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// Decide stamps a decision on a still-pending request.
func (r *Repository) Decide(ctx context.Context, id int64, status string, deciderID int64, note string, at time.Time) (Request, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE leave_requests SET status = $2, decider_id = $3, decision_note = NULLIF($4, ''), decided_at = $5
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+requestColumns,
		id, status, deciderID, note, at)
	return scanRequest(row)
}

// CountPending reports the number of undecided requests.
func (r *Repository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests WHERE status = 'pending'`).Scan(&n)
	return n, err
}

func collectRequests(rows pgx.Rows) ([]Request, error) {
	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	err := row.Scan(
		&req.ID,
		&req.EmployeeID,
		&req.Type,
		&req.FromDate,
		&req.ToDate,
		&req.Reason,
		&req.Status,
		&req.DeciderID,
		&req.DecisionNote,
		&req.CreatedAt,
		&req.DecidedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, httpx.ErrNotFound
		}
		return Request{}, err
	}
	return req, nil
}

var _ RepositoryPort = (*Repository)(nil)
