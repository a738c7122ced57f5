package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hrm/meridian-hrm/internal/platform/db"
	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
)

// RepositoryPort defines data access methods for attendance.
type RepositoryPort interface {
	OpenRecord(ctx context.Context, employeeID int64, workDate time.Time) (Record, error)
	Insert(ctx context.Context, rec Record) (Record, error)
	Close(ctx context.Context, id int64, checkOut time.Time, note string) (Record, error)
	ListByEmployee(ctx context.Context, employeeID int64, from, to time.Time) ([]Record, error)
	ListAll(ctx context.Context, from, to time.Time) ([]Record, error)
	CountCheckedInToday(ctx context.Context) (int, error)
}

// Repository persists attendance in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `id, employee_id, work_date, check_in, check_out, COALESCE(note, '')`

// OpenRecord returns the not-yet-closed record for the day, if any.
func (r *Repository) OpenRecord(ctx context.Context, employeeID int64, workDate time.Time) (Record, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM attendance WHERE employee_id = $1 AND work_date = $2 AND check_out IS NULL`,
		employeeID, workDate)
	return scanRecord(row)
}

// Insert stores a fresh check-in. The open-record check and the insert
// run in one transaction so concurrent check-ins cannot both land.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	var out Record
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var openID int64
		err := tx.QueryRow(ctx,
			`SELECT id FROM attendance WHERE employee_id = $1 AND work_date = $2 AND check_out IS NULL FOR UPDATE`,
			rec.EmployeeID, rec.WorkDate).Scan(&openID)
		if err == nil {
			return httpx.ErrConflict
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		row := tx.QueryRow(ctx,
			`INSERT INTO attendance (employee_id, work_date, check_in, note) VALUES ($1, $2, $3, NULLIF($4, ''))
			 RETURNING `+recordColumns,
			rec.EmployeeID, rec.WorkDate, rec.CheckIn, rec.Note)
		out, err = scanRecord(row)
		return err
	})
	if err != nil {
		return Record{}, err
	}
	return out, nil
}

// Close stamps the check-out time on an open record.
func (r *Repository) Close(ctx context.Context, id int64, checkOut time.Time, note string) (Record, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE attendance SET check_out = $2, note = COALESCE(NULLIF($3, ''), note) WHERE id = $1 AND check_out IS NULL
		 RETURNING `+recordColumns,
		id, checkOut, note)
	return scanRecord(row)
}

// ListByEmployee returns records for one employee in a date range.
func (r *Repository) ListByEmployee(ctx context.Context, employeeID int64, from, to time.Time) ([]Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM attendance WHERE employee_id = $1 AND work_date BETWEEN $2 AND $3 ORDER BY work_date DESC`,
		employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListAll returns every record in a date range.
func (r *Repository) ListAll(ctx context.Context, from, to time.Time) ([]Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM attendance WHERE work_date BETWEEN $1 AND $2 ORDER BY work_date DESC, employee_id`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// CountCheckedInToday reports how many employees have checked in today.
func (r *Repository) CountCheckedInToday(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(DISTINCT employee_id) FROM attendance WHERE work_date = CURRENT_DATE`).Scan(&n)
	return n, err
}

func collectRecords(rows pgx.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.WorkDate, &rec.CheckIn, &rec.CheckOut, &rec.Note)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, httpx.ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

var _ RepositoryPort = (*Repository)(nil)
