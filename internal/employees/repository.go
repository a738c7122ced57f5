package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-hrm/meridian-hrm/internal/platform/httpx"
)

// RepositoryPort defines data access methods for employees.
type RepositoryPort interface {
	List(ctx context.Context, req ListEmployeesRequest) ([]Employee, int, error)
	Get(ctx context.Context, id int64) (Employee, error)
	GetByEmail(ctx context.Context, email string) (Employee, error)
	Insert(ctx context.Context, e Employee) (Employee, error)
	Update(ctx context.Context, e Employee) (Employee, error)
	SetActive(ctx context.Context, id int64, active bool) error
	CountActive(ctx context.Context) (int, error)
}

// Repository persists employees in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const employeeColumns = `id, number, name, email, department, position, hire_date, manager_id, is_active, created_at, updated_at`

// List returns a page of employees plus the unfiltered total.
func (r *Repository) List(ctx context.Context, req ListEmployeesRequest) ([]Employee, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	if req.ActiveOnly {
		where = append(where, "is_active")
	}
	if req.Department != "" {
		args = append(args, req.Department)
		where = append(where, fmt.Sprintf("department = $%d", len(args)))
	}
	if req.Search != "" {
		args = append(args, "%"+strings.ToLower(req.Search)+"%")
		where = append(where, fmt.Sprintf("(lower(name) LIKE $%d OR lower(email) LIKE $%d)", len(args), len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE %s ORDER BY name LIMIT $%d OFFSET $%d`,
		employeeColumns, cond, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// Get fetches an employee by ID.
func (r *Repository) Get(ctx context.Context, id int64) (Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	return scanEmployee(row)
}

// GetByEmail fetches an employee by email, used for self-profile lookups.
func (r *Repository) GetByEmail(ctx context.Context, email string) (Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE lower(email) = lower($1)`, email)
	return scanEmployee(row)
}

// Insert creates a new employee record.
func (r *Repository) Insert(ctx context.Context, e Employee) (Employee, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO employees (number, name, email, department, position, hire_date, manager_id, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW(), NOW())
		 RETURNING `+employeeColumns,
		e.Number, e.Name, e.Email, e.Department, e.Position, e.HireDate, e.ManagerID)
	created, err := scanEmployee(row)
	if err != nil {
		return Employee{}, mapUniqueViolation(err)
	}
	return created, nil
}

// Update rewrites the mutable employee fields.
func (r *Repository) Update(ctx context.Context, e Employee) (Employee, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE employees SET name = $2, department = $3, position = $4, manager_id = $5, updated_at = NOW()
		 WHERE id = $1 RETURNING `+employeeColumns,
		e.ID, e.Name, e.Department, e.Position, e.ManagerID)
	return scanEmployee(row)
}

// SetActive toggles the active flag.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE employees SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// CountActive reports the active headcount.
func (r *Repository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE is_active`).Scan(&n)
	return n, err
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID,
		&e.Number,
		&e.Name,
		&e.Email,
		&e.Department,
		&e.Position,
		&e.HireDate,
		&e.ManagerID,
		&e.IsActive,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, httpx.ErrNotFound
		}
		return Employee{}, err
	}
	return e, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httpx.ErrDuplicate
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
