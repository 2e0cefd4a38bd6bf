package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/nadmax/tasktracker/internal/repository/models"
	"github.com/nadmax/tasktracker/internal/task"
)

const taskColumns = `
	id, title, description, status, priority,
	assigned_to, due_date, completed_at, created_at, updated_at`

type PostgresRepository struct {
	db *sql.DB
}

var (
	_ TaskRepository     = (*PostgresRepository)(nil)
	_ EmployeeRepository = (*PostgresRepository)(nil)
)

func NewPostgresRepository(connectionString string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) CreateTask(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (
			id, title, description, status, priority,
			assigned_to, due_date, completed_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		t.ID,
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		t.AssignedTo,
		t.DueDate,
		t.CompletedAt,
		t.CreatedAt,
		t.UpdatedAt,
	)

	return err
}

func (r *PostgresRepository) GetTask(ctx context.Context, taskID string) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, taskID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (r *PostgresRepository) UpdateTask(ctx context.Context, t *task.Task) error {
	query := `
		UPDATE tasks
		SET title = $2,
		    description = $3,
		    status = $4,
		    priority = $5,
		    assigned_to = $6,
		    due_date = $7,
		    completed_at = $8,
		    updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		t.ID,
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		t.AssignedTo,
		t.DueDate,
		t.CompletedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

func (r *PostgresRepository) DeleteTask(ctx context.Context, taskID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return err
	}

	return requireAffected(result)
}

// FindTasks returns one page of tasks matching q, newest first, along with
// the total number of matching tasks.
func (r *PostgresRepository) FindTasks(ctx context.Context, q models.TaskQuery) ([]*task.Task, int, error) {
	var where []string
	var args []any

	if q.Search != "" {
		args = append(args, likePattern(q.Search))
		where = append(where, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	if q.Status != "" {
		args = append(args, string(q.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.Priority != "" {
		args = append(args, string(q.Priority))
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	if q.AssignedTo != "" {
		args = append(args, q.AssignedTo)
		where = append(where, fmt.Sprintf("assigned_to = $%d", len(args)))
	}

	filter := ""
	if len(where) > 0 {
		filter = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+filter, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + filter + ` ORDER BY created_at DESC`
	query, args = withPage(query, args, q.Limit, q.Offset)

	tasks, err := r.queryTasks(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListTasks returns every task. Rows with an unknown status or priority are skipped.
func (r *PostgresRepository) ListTasks(ctx context.Context) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at DESC`
	return r.queryTasks(ctx, query)
}

func (r *PostgresRepository) ListTasksByAssignee(ctx context.Context, employeeID string) ([]*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE assigned_to = $1 ORDER BY created_at DESC`
	return r.queryTasks(ctx, query, employeeID)
}

func (r *PostgresRepository) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	tasks := make([]*task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}

		if !t.Status.Valid() || !t.Priority.Valid() {
			slog.Warn("Skipping malformed task record",
				"task_id", t.ID,
				"status", t.Status,
				"priority", t.Priority)
			continue
		}

		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresRepository) DB() *sql.DB {
	return r.db
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var t task.Task
	var status, priority string
	var assignedTo sql.NullString
	var dueDate, completedAt sql.NullTime

	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&status,
		&priority,
		&assignedTo,
		&dueDate,
		&completedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	t.Status = task.TaskStatus(status)
	t.Priority = task.TaskPriority(priority)

	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.String
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}

	return &t, nil
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func withPage(query string, args []any, limit, offset int) (string, []any) {
	if limit <= 0 {
		return query, args
	}

	args = append(args, limit, offset)
	return query + fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
