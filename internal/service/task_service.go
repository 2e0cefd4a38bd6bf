package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nadmax/tasktracker/internal/employee"
	"github.com/nadmax/tasktracker/internal/metrics"
	"github.com/nadmax/tasktracker/internal/repository"
	"github.com/nadmax/tasktracker/internal/repository/models"
	"github.com/nadmax/tasktracker/internal/task"
)

type EmployeeLookup interface {
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	GetEmployee(ctx context.Context, employeeID string) (*employee.Employee, error)
}

// TaskFilter selects one page of tasks. Unknown status or priority values are
// ignored rather than rejected.
type TaskFilter struct {
	PageRequest
	Search     string
	Status     task.TaskStatus
	Priority   task.TaskPriority
	AssignedTo string
}

func (f TaskFilter) validate() error {
	if err := f.PageRequest.validate(); err != nil {
		return err
	}
	if f.AssignedTo == "" {
		return nil
	}

	return validateEmployeeRef(&f.AssignedTo)
}

// Assignee is the employee summary embedded in task responses.
type Assignee struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskView is a task with its assignee resolved. Assignee is nil when the
// task is unassigned or the employee no longer exists.
type TaskView struct {
	*task.Task
	Assignee *Assignee `json:"assignee"`
}

type CreateTaskInput struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description string     `json:"description" validate:"max=1000"`
	Status      string     `json:"status" validate:"omitempty,oneof=todo in_progress completed"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo  *string    `json:"assignedTo"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTaskInput carries a partial update. Nil pointers and unset optionals
// leave the stored value unchanged; an explicit null clears assignedTo or dueDate.
type UpdateTaskInput struct {
	Title       *string             `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string             `json:"description" validate:"omitempty,max=1000"`
	Status      *string             `json:"status" validate:"omitempty,oneof=todo in_progress completed"`
	Priority    *string             `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo  Optional[string]    `json:"assignedTo"`
	DueDate     Optional[time.Time] `json:"dueDate"`
}

func (in UpdateTaskInput) empty() bool {
	return in.Title == nil &&
		in.Description == nil &&
		in.Status == nil &&
		in.Priority == nil &&
		!in.AssignedTo.Set &&
		!in.DueDate.Set
}

type TaskService struct {
	tasks       repository.TaskRepository
	employees   EmployeeLookup
	invalidator Invalidator
	now         func() time.Time
	logger      *slog.Logger
}

func NewTaskService(tasks repository.TaskRepository, employees EmployeeLookup, invalidator Invalidator, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskService{
		tasks:       tasks,
		employees:   employees,
		invalidator: invalidator,
		now:         time.Now,
		logger:      logger.With(slog.String("component", "task_service")),
	}
}

func (s *TaskService) List(ctx context.Context, filter TaskFilter) ([]*task.Task, Pagination, error) {
	if err := filter.validate(); err != nil {
		return nil, Pagination{}, err
	}

	q := models.TaskQuery{
		Search:     filter.Search,
		AssignedTo: filter.AssignedTo,
		Limit:      filter.Limit,
		Offset:     filter.offset(),
	}
	if filter.Status.Valid() {
		q.Status = filter.Status
	}
	if filter.Priority.Valid() {
		q.Priority = filter.Priority
	}

	tasks, total, err := s.tasks.FindTasks(ctx, q)
	if err != nil {
		s.logger.Error("Error fetching tasks", "error", err)
		return nil, Pagination{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	s.logger.Info("Tasks fetched",
		"page", filter.Page,
		"limit", filter.Limit,
		"total_items", total)

	return tasks, newPagination(filter.PageRequest, total), nil
}

func (s *TaskService) Get(ctx context.Context, taskID string) (*task.Task, error) {
	t, err := s.tasks.GetTask(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return t, nil
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*task.Task, error) {
	if in.AssignedTo != nil && *in.AssignedTo == "" {
		in.AssignedTo = nil
	}

	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := validateEmployeeRef(in.AssignedTo); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, in.AssignedTo); err != nil {
		return nil, err
	}

	priority := task.MediumPriority
	if in.Priority != "" {
		priority = task.TaskPriority(in.Priority)
	}

	status := task.TodoStatus
	if in.Status != "" {
		status = task.TaskStatus(in.Status)
	}

	now := s.now().UTC()
	t := task.NewTask(in.Title, priority)
	t.Description = in.Description
	t.AssignedTo = in.AssignedTo
	t.DueDate = in.DueDate
	t.CreatedAt = now
	t.UpdatedAt = now
	t.SetStatus(status, now)

	if err := s.tasks.CreateTask(ctx, t); err != nil {
		s.logger.Error("Error creating task", "error", err)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	metrics.RecordTaskMutation("create")
	s.logger.Info("Task created", "task_id", t.ID)

	if err := s.invalidate(ctx, t.ID); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *TaskService) Update(ctx context.Context, taskID string, in UpdateTaskInput) (*task.Task, error) {
	if in.empty() {
		return nil, noFieldsError()
	}

	if in.AssignedTo.Value != nil && *in.AssignedTo.Value == "" {
		in.AssignedTo.Value = nil
	}

	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := validateEmployeeRef(in.AssignedTo.Value); err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, in.AssignedTo.Value); err != nil {
		return nil, err
	}

	t, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Priority != nil {
		t.Priority = task.TaskPriority(*in.Priority)
	}
	if in.Status != nil {
		t.SetStatus(task.TaskStatus(*in.Status), now)
	}
	if in.AssignedTo.Set {
		t.AssignedTo = in.AssignedTo.Value
	}
	if in.DueDate.Set {
		t.DueDate = in.DueDate.Value
	}
	t.UpdatedAt = now

	err = s.tasks.UpdateTask(ctx, t)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		s.logger.Error("Error updating task", "task_id", taskID, "error", err)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	metrics.RecordTaskMutation("update")
	s.logger.Info("Task updated", "task_id", taskID)

	if err := s.invalidate(ctx, taskID); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, taskID string) error {
	err := s.tasks.DeleteTask(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTaskNotFound
	}
	if err != nil {
		s.logger.Error("Error deleting task", "task_id", taskID, "error", err)
		return fmt.Errorf("failed to delete task: %w", err)
	}

	metrics.RecordTaskMutation("delete")
	s.logger.Info("Task deleted", "task_id", taskID)

	return s.invalidate(ctx, taskID)
}

// Describe resolves the assignee of each task, looking every employee up once.
func (s *TaskService) Describe(ctx context.Context, tasks ...*task.Task) ([]TaskView, error) {
	assignees := make(map[string]*Assignee)
	views := make([]TaskView, 0, len(tasks))

	for _, t := range tasks {
		view := TaskView{Task: t}

		if t.AssignedTo != nil {
			a, seen := assignees[*t.AssignedTo]
			if !seen {
				var err error
				if a, err = s.assignee(ctx, *t.AssignedTo); err != nil {
					return nil, err
				}
				assignees[*t.AssignedTo] = a
			}
			view.Assignee = a
		}

		views = append(views, view)
	}

	return views, nil
}

func (s *TaskService) assignee(ctx context.Context, employeeID string) (*Assignee, error) {
	e, err := s.employees.GetEmployee(ctx, employeeID)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("Task assignee not found", "employee_id", employeeID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignee: %w", err)
	}

	return &Assignee{ID: e.ID, Name: e.Name, Email: e.Email}, nil
}

func (s *TaskService) checkAssignee(ctx context.Context, employeeID *string) error {
	if employeeID == nil {
		return nil
	}

	exists, err := s.employees.EmployeeExists(ctx, *employeeID)
	if err != nil {
		return fmt.Errorf("failed to check assignee: %w", err)
	}
	if !exists {
		return ErrInvalidAssignee
	}

	return nil
}

// invalidate runs after the write has been persisted. A failure is returned so
// the caller knows the dashboard may be stale until the cached snapshot expires.
func (s *TaskService) invalidate(ctx context.Context, taskID string) error {
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Error("Error invalidating dashboard metrics", "task_id", taskID, "error", err)
		return err
	}

	return nil
}
