// Package repository provides PostgreSQL persistence for tasks and employees.
package repository

import (
	"context"
	"errors"

	"github.com/nadmax/tasktracker/internal/employee"
	"github.com/nadmax/tasktracker/internal/repository/models"
	"github.com/nadmax/tasktracker/internal/task"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

type TaskRepository interface {
	CreateTask(ctx context.Context, t *task.Task) error
	GetTask(ctx context.Context, taskID string) (*task.Task, error)
	UpdateTask(ctx context.Context, t *task.Task) error
	DeleteTask(ctx context.Context, taskID string) error
	FindTasks(ctx context.Context, q models.TaskQuery) ([]*task.Task, int, error)
	ListTasks(ctx context.Context) ([]*task.Task, error)
	ListTasksByAssignee(ctx context.Context, employeeID string) ([]*task.Task, error)
}

type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, e *employee.Employee) error
	GetEmployee(ctx context.Context, employeeID string) (*employee.Employee, error)
	UpdateEmployee(ctx context.Context, e *employee.Employee) error
	DeleteEmployee(ctx context.Context, employeeID string) error
	FindEmployees(ctx context.Context, q models.EmployeeQuery) ([]*employee.Employee, int, error)
	ListEmployees(ctx context.Context) ([]*employee.Employee, error)
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
}
