package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/nadmax/tasktracker/internal/employee"
	"github.com/nadmax/tasktracker/internal/repository/models"
)

const employeeColumns = `id, name, email, role, created_at, updated_at`

func (r *PostgresRepository) CreateEmployee(ctx context.Context, e *employee.Employee) error {
	query := `
		INSERT INTO employees (id, name, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query, e.ID, e.Name, e.Email, e.Role, e.CreatedAt, e.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}

	return err
}

func (r *PostgresRepository) GetEmployee(ctx context.Context, employeeID string) (*employee.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, employeeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return e, nil
}

func (r *PostgresRepository) UpdateEmployee(ctx context.Context, e *employee.Employee) error {
	query := `
		UPDATE employees
		SET name = $2, email = $3, role = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, e.ID, e.Name, e.Email, e.Role, e.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (r *PostgresRepository) DeleteEmployee(ctx context.Context, employeeID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, employeeID)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (r *PostgresRepository) FindEmployees(ctx context.Context, q models.EmployeeQuery) ([]*employee.Employee, int, error) {
	filter := ""
	var args []any
	if q.Search != "" {
		args = append(args, likePattern(q.Search))
		filter = ` WHERE name ILIKE $1`
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`+filter, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + employeeColumns + ` FROM employees` + filter + ` ORDER BY created_at DESC`
	query, args = withPage(query, args, q.Limit, q.Offset)

	employees, err := r.queryEmployees(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

func (r *PostgresRepository) ListEmployees(ctx context.Context) ([]*employee.Employee, error) {
	return r.queryEmployees(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY created_at DESC`)
}

func (r *PostgresRepository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`, employeeID).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) queryEmployees(ctx context.Context, query string, args ...any) ([]*employee.Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}

		employees = append(employees, e)
	}

	return employees, rows.Err()
}

func scanEmployee(row rowScanner) (*employee.Employee, error) {
	var e employee.Employee
	if err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}

	return &e, nil
}
