package repository

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/nadmax/tasktracker/internal/employee"
	"github.com/nadmax/tasktracker/internal/repository/models"
	"github.com/nadmax/tasktracker/internal/task"
)

// MockRepository is an in-memory TaskRepository and EmployeeRepository that
// records calls for assertions in tests.
type MockRepository struct {
	mu                  sync.Mutex
	CreateTaskCalls     []*task.Task
	UpdateTaskCalls     []*task.Task
	DeleteTaskCalls     []string
	ListTasksCalls      int
	ListEmployeesCalls  int
	Tasks               map[string]*task.Task
	Employees           map[string]*employee.Employee
	CreateTaskError     error
	GetTaskError        error
	UpdateTaskError     error
	DeleteTaskError     error
	FindTasksError      error
	ListTasksError      error
	CreateEmployeeError error
	GetEmployeeError    error
	ListEmployeesError  error
	EmployeeExistsError error
}

var (
	_ TaskRepository     = (*MockRepository)(nil)
	_ EmployeeRepository = (*MockRepository)(nil)
)

func NewMockRepository() *MockRepository {
	return &MockRepository{
		Tasks:     make(map[string]*task.Task),
		Employees: make(map[string]*employee.Employee),
	}
}

func (m *MockRepository) CreateTask(ctx context.Context, t *task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateTaskCalls = append(m.CreateTaskCalls, t)

	if m.CreateTaskError != nil {
		return m.CreateTaskError
	}

	taskCopy := *t
	m.Tasks[t.ID] = &taskCopy
	return nil
}

func (m *MockRepository) GetTask(ctx context.Context, taskID string) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetTaskError != nil {
		return nil, m.GetTaskError
	}

	t, exists := m.Tasks[taskID]
	if !exists {
		return nil, ErrNotFound
	}

	taskCopy := *t
	return &taskCopy, nil
}

func (m *MockRepository) UpdateTask(ctx context.Context, t *task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateTaskCalls = append(m.UpdateTaskCalls, t)

	if m.UpdateTaskError != nil {
		return m.UpdateTaskError
	}

	if _, exists := m.Tasks[t.ID]; !exists {
		return ErrNotFound
	}

	taskCopy := *t
	m.Tasks[t.ID] = &taskCopy
	return nil
}

func (m *MockRepository) DeleteTask(ctx context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteTaskCalls = append(m.DeleteTaskCalls, taskID)

	if m.DeleteTaskError != nil {
		return m.DeleteTaskError
	}

	if _, exists := m.Tasks[taskID]; !exists {
		return ErrNotFound
	}

	delete(m.Tasks, taskID)
	return nil
}

func (m *MockRepository) FindTasks(ctx context.Context, q models.TaskQuery) ([]*task.Task, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FindTasksError != nil {
		return nil, 0, m.FindTasksError
	}

	matched := make([]*task.Task, 0)
	for _, t := range m.sortedTasks() {
		if q.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(q.Search)) {
			continue
		}
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.Priority != "" && t.Priority != q.Priority {
			continue
		}
		if q.AssignedTo != "" && (t.AssignedTo == nil || *t.AssignedTo != q.AssignedTo) {
			continue
		}

		matched = append(matched, t)
	}

	return page(matched, q.Limit, q.Offset), len(matched), nil
}

func (m *MockRepository) ListTasks(ctx context.Context) ([]*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListTasksCalls++

	if m.ListTasksError != nil {
		return nil, m.ListTasksError
	}

	return m.sortedTasks(), nil
}

func (m *MockRepository) ListTasksByAssignee(ctx context.Context, employeeID string) ([]*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListTasksError != nil {
		return nil, m.ListTasksError
	}

	tasks := make([]*task.Task, 0)
	for _, t := range m.sortedTasks() {
		if t.AssignedTo != nil && *t.AssignedTo == employeeID {
			tasks = append(tasks, t)
		}
	}

	return tasks, nil
}

func (m *MockRepository) CreateEmployee(ctx context.Context, e *employee.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateEmployeeError != nil {
		return m.CreateEmployeeError
	}

	if m.emailTaken(e.Email, e.ID) {
		return ErrDuplicateEmail
	}

	empCopy := *e
	m.Employees[e.ID] = &empCopy
	return nil
}

func (m *MockRepository) GetEmployee(ctx context.Context, employeeID string) (*employee.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetEmployeeError != nil {
		return nil, m.GetEmployeeError
	}

	e, exists := m.Employees[employeeID]
	if !exists {
		return nil, ErrNotFound
	}

	empCopy := *e
	return &empCopy, nil
}

func (m *MockRepository) UpdateEmployee(ctx context.Context, e *employee.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Employees[e.ID]; !exists {
		return ErrNotFound
	}

	if m.emailTaken(e.Email, e.ID) {
		return ErrDuplicateEmail
	}

	empCopy := *e
	m.Employees[e.ID] = &empCopy
	return nil
}

func (m *MockRepository) DeleteEmployee(ctx context.Context, employeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Employees[employeeID]; !exists {
		return ErrNotFound
	}

	delete(m.Employees, employeeID)
	return nil
}

func (m *MockRepository) FindEmployees(ctx context.Context, q models.EmployeeQuery) ([]*employee.Employee, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]*employee.Employee, 0)
	for _, e := range m.sortedEmployees() {
		if q.Search != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(q.Search)) {
			continue
		}

		matched = append(matched, e)
	}

	return page(matched, q.Limit, q.Offset), len(matched), nil
}

func (m *MockRepository) ListEmployees(ctx context.Context) ([]*employee.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListEmployeesCalls++

	if m.ListEmployeesError != nil {
		return nil, m.ListEmployeesError
	}

	return m.sortedEmployees(), nil
}

func (m *MockRepository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EmployeeExistsError != nil {
		return false, m.EmployeeExistsError
	}

	_, exists := m.Employees[employeeID]
	return exists, nil
}

func (m *MockRepository) Ping(ctx context.Context) error {
	return nil
}

func (m *MockRepository) Close() error {
	return nil
}

func (m *MockRepository) GetListTasksCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ListTasksCalls
}

func (m *MockRepository) WasTaskSaved(taskID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.Tasks[taskID]
	return exists
}

func (m *MockRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateTaskCalls = nil
	m.UpdateTaskCalls = nil
	m.DeleteTaskCalls = nil
	m.ListTasksCalls = 0
	m.ListEmployeesCalls = 0
	m.Tasks = make(map[string]*task.Task)
	m.Employees = make(map[string]*employee.Employee)
}

func (m *MockRepository) sortedTasks() []*task.Task {
	tasks := make([]*task.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		taskCopy := *t
		tasks = append(tasks, &taskCopy)
	}

	slices.SortFunc(tasks, func(a, b *task.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return tasks
}

func (m *MockRepository) sortedEmployees() []*employee.Employee {
	employees := make([]*employee.Employee, 0, len(m.Employees))
	for _, e := range m.Employees {
		empCopy := *e
		employees = append(employees, &empCopy)
	}

	slices.SortFunc(employees, func(a, b *employee.Employee) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return employees
}

func (m *MockRepository) emailTaken(email, exceptID string) bool {
	for _, e := range m.Employees {
		if e.ID != exceptID && strings.EqualFold(e.Email, email) {
			return true
		}
	}

	return false
}

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		return items
	}
	if offset >= len(items) {
		return items[:0]
	}

	end := min(offset+limit, len(items))
	return items[offset:end]
}
