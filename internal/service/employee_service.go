package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nadmax/tasktracker/internal/employee"
	"github.com/nadmax/tasktracker/internal/repository"
	"github.com/nadmax/tasktracker/internal/repository/models"
	"github.com/nadmax/tasktracker/internal/task"
)

type EmployeeFilter struct {
	PageRequest
	Search string
}

type CreateEmployeeInput struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"max=50"`
}

type UpdateEmployeeInput struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role" validate:"omitempty,max=50"`
}

// EmployeeDetail is an employee together with the tasks assigned to them.
type EmployeeDetail struct {
	*employee.Employee
	Tasks []*task.Task `json:"tasks"`
}

// EmployeeService manages employee records. Its writes do not invalidate the
// dashboard metrics, so a renamed employee can show under the old name until
// the cached snapshot expires.
type EmployeeService struct {
	employees repository.EmployeeRepository
	tasks     repository.TaskRepository
	now       func() time.Time
	logger    *slog.Logger
}

func NewEmployeeService(employees repository.EmployeeRepository, tasks repository.TaskRepository, logger *slog.Logger) *EmployeeService {
	if logger == nil {
		logger = slog.Default()
	}

	return &EmployeeService{
		employees: employees,
		tasks:     tasks,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "employee_service")),
	}
}

func (s *EmployeeService) List(ctx context.Context, filter EmployeeFilter) ([]*employee.Employee, Pagination, error) {
	if err := filter.validate(); err != nil {
		return nil, Pagination{}, err
	}

	employees, total, err := s.employees.FindEmployees(ctx, models.EmployeeQuery{
		Search: filter.Search,
		Limit:  filter.Limit,
		Offset: filter.offset(),
	})
	if err != nil {
		s.logger.Error("Error fetching employees", "error", err)
		return nil, Pagination{}, fmt.Errorf("failed to list employees: %w", err)
	}

	s.logger.Info("Employees fetched",
		"page", filter.Page,
		"limit", filter.Limit,
		"total_items", total)

	return employees, newPagination(filter.PageRequest, total), nil
}

func (s *EmployeeService) Get(ctx context.Context, employeeID string) (*EmployeeDetail, error) {
	e, err := s.employees.GetEmployee(ctx, employeeID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	tasks, err := s.tasks.ListTasksByAssignee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee tasks: %w", err)
	}

	return &EmployeeDetail{Employee: e, Tasks: tasks}, nil
}

func (s *EmployeeService) Create(ctx context.Context, in CreateEmployeeInput) (*employee.Employee, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Role = strings.TrimSpace(in.Role)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	e := employee.NewEmployee(in.Name, in.Email, in.Role)
	now := s.now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.employees.CreateEmployee(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}

		s.logger.Error("Error creating employee", "error", err)
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	s.logger.Info("Employee created", "employee_id", e.ID)
	return e, nil
}

func (s *EmployeeService) Update(ctx context.Context, employeeID string, in UpdateEmployeeInput) (*employee.Employee, error) {
	if in.Name == nil && in.Email == nil && in.Role == nil {
		return nil, noFieldsError()
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}

	if err := validateInput(in); err != nil {
		return nil, err
	}

	e, err := s.employees.GetEmployee(ctx, employeeID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	if in.Name != nil {
		e.Name = *in.Name
	}
	if in.Email != nil {
		e.Email = *in.Email
	}
	if in.Role != nil {
		e.Role = strings.TrimSpace(*in.Role)
	}
	e.UpdatedAt = s.now().UTC()

	err = s.employees.UpdateEmployee(ctx, e)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrEmployeeNotFound
	case errors.Is(err, repository.ErrDuplicateEmail):
		return nil, ErrDuplicateEmail
	case err != nil:
		s.logger.Error("Error updating employee", "employee_id", employeeID, "error", err)
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}

	s.logger.Info("Employee updated", "employee_id", employeeID)
	return e, nil
}

// Delete removes the employee record. Tasks assigned to the employee are kept
// and drop out of the per-employee dashboard breakdown.
func (s *EmployeeService) Delete(ctx context.Context, employeeID string) error {
	err := s.employees.DeleteEmployee(ctx, employeeID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrEmployeeNotFound
	}
	if err != nil {
		s.logger.Error("Error deleting employee", "employee_id", employeeID, "error", err)
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	s.logger.Info("Employee deleted", "employee_id", employeeID)
	return nil
}

func (s *EmployeeService) Exists(ctx context.Context, employeeID string) (bool, error) {
	exists, err := s.employees.EmployeeExists(ctx, employeeID)
	if err != nil {
		return false, fmt.Errorf("failed to check employee: %w", err)
	}

	return exists, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
