package staff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/joao-fontenele/restaurant-pos/internal/domain"
)

const employeeColumns = `id, employee_number, name, email, phone, position, department, hourly_rate,
	to_char(hire_date, 'YYYY-MM-DD'), status, created_at, updated_at`

// Filter narrows a roster listing. Empty fields match everything.
type Filter struct {
	Department string
	Status     domain.EmployeeStatus
}

type EmployeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(&e.ID, &e.EmployeeNumber, &e.Name, &e.Email, &e.Phone, &e.Position, &e.Department,
		&e.HourlyRate, &e.HireDate, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	e.ID = uuid.New().String()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO staff.employees (id, employee_number, name, email, phone, position, department, hourly_rate,
			hire_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, e.ID, e.EmployeeNumber, e.Name, e.Email, e.Phone, e.Position, e.Department, e.HourlyRate,
		e.HireDate, e.Status, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}

	return nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NotFound("employee", id)
	}

	e, err := scanEmployee(r.db.QueryRowContext(ctx, `
		SELECT `+employeeColumns+`
		FROM staff.employees
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("employee", id)
		}
		return nil, err
	}

	return &e, nil
}

func (r *EmployeeRepository) List(ctx context.Context, f Filter) ([]domain.Employee, error) {
	var (
		where []string
		args  []any
	)
	if f.Department != "" {
		args = append(args, f.Department)
		where = append(where, fmt.Sprintf("department = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + employeeColumns + ` FROM staff.employees`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY department, name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	employees := []domain.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}

	return employees, rows.Err()
}

func (r *EmployeeRepository) Update(ctx context.Context, e *domain.Employee) error {
	if _, err := uuid.Parse(e.ID); err != nil {
		return domain.NotFound("employee", e.ID)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE staff.employees
		SET name = $2, email = $3, phone = $4, position = $5, department = $6, hourly_rate = $7,
			hire_date = $8, status = $9, updated_at = $10
		WHERE id = $1
	`, e.ID, e.Name, e.Email, e.Phone, e.Position, e.Department, e.HourlyRate, e.HireDate, e.Status, e.UpdatedAt)
	if err != nil {
		return err
	}

	return requireRow(result, e.ID)
}

func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.NotFound("employee", id)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM staff.employees WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return requireRow(result, id)
}

func requireRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.NotFound("employee", id)
	}

	return nil
}
