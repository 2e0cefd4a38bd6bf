package service

import (
	"context"
	"testing"
	"time"

	"github.com/nadmax/tasktracker/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestEmployeeService(t *testing.T) (*EmployeeService, *repository.MockRepository) {
	t.Helper()

	repo := repository.NewMockRepository()
	svc := NewEmployeeService(repo, repo, nil)
	svc.now = func() time.Time { return fixedNow }

	return svc, repo
}

func TestEmployeeService_Create(t *testing.T) {
	svc, repo := setupTestEmployeeService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateEmployeeInput{
		Name:  "  Ada Lovelace ",
		Email: "Ada@Example.com",
		Role:  "engineer",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Ada Lovelace", created.Name)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.Equal(t, fixedNow, created.CreatedAt)
	assert.Len(t, repo.Employees, 1)

	_, err = svc.Create(ctx, CreateEmployeeInput{Name: "Ada Again", Email: "ADA@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestEmployeeService_Create_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateEmployeeInput
		field string
		issue string
	}{
		{"missing name", CreateEmployeeInput{Email: "a@example.com"}, "name", "Name is required"},
		{"short name", CreateEmployeeInput{Name: "A", Email: "a@example.com"}, "name", "Name must be at least 2 characters long"},
		{"bad email", CreateEmployeeInput{Name: "Ada", Email: "not-an-email"}, "email", "Invalid email format"},
		{"missing email", CreateEmployeeInput{Name: "Ada"}, "email", "Email is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := setupTestEmployeeService(t)

			_, err := svc.Create(context.Background(), tt.input)

			requireValidationIssue(t, err, tt.field, tt.issue)
			assert.Empty(t, repo.Employees)
		})
	}
}

func TestEmployeeService_Get(t *testing.T) {
	svc, repo := setupTestEmployeeService(t)
	ctx := context.Background()
	taskSvc := NewTaskService(repo, repo, &recordingInvalidator{}, nil)

	emp := addEmployee(t, repo, "ada")
	_, err := taskSvc.Create(ctx, CreateTaskInput{Title: "Assigned work", AssignedTo: &emp.ID})
	require.NoError(t, err)
	_, err = taskSvc.Create(ctx, CreateTaskInput{Title: "Unassigned work"})
	require.NoError(t, err)

	detail, err := svc.Get(ctx, emp.ID)
	require.NoError(t, err)

	assert.Equal(t, emp.Email, detail.Email)
	require.Len(t, detail.Tasks, 1)
	assert.Equal(t, "Assigned work", detail.Tasks[0].Title)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestEmployeeService_Update(t *testing.T) {
	svc, repo := setupTestEmployeeService(t)
	ctx := context.Background()

	ada := addEmployee(t, repo, "ada")
	addEmployee(t, repo, "bob")

	t.Run("rename", func(t *testing.T) {
		updated, err := svc.Update(ctx, ada.ID, UpdateEmployeeInput{Name: strPtr("Ada Byron")})
		require.NoError(t, err)

		assert.Equal(t, "Ada Byron", updated.Name)
		assert.Equal(t, ada.Email, updated.Email)
	})

	t.Run("no fields", func(t *testing.T) {
		_, err := svc.Update(ctx, ada.ID, UpdateEmployeeInput{})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "At least one field must be provided for update", verr.Message)
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := svc.Update(ctx, ada.ID, UpdateEmployeeInput{Email: strPtr("bob@example.com")})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Update(ctx, "missing", UpdateEmployeeInput{Role: strPtr("manager")})
		assert.ErrorIs(t, err, ErrEmployeeNotFound)
	})
}

func TestEmployeeService_Delete_KeepsTasks(t *testing.T) {
	svc, repo := setupTestEmployeeService(t)
	ctx := context.Background()
	taskSvc := NewTaskService(repo, repo, &recordingInvalidator{}, nil)

	emp := addEmployee(t, repo, "ada")
	created, err := taskSvc.Create(ctx, CreateTaskInput{Title: "Assigned work", AssignedTo: &emp.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, emp.ID))

	exists, err := svc.Exists(ctx, emp.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.True(t, repo.WasTaskSaved(created.ID))

	assert.ErrorIs(t, svc.Delete(ctx, emp.ID), ErrEmployeeNotFound)
}

func TestEmployeeService_List(t *testing.T) {
	svc, repo := setupTestEmployeeService(t)
	ctx := context.Background()

	for _, name := range []string{"ada", "alan", "grace"} {
		addEmployee(t, repo, name)
	}

	employees, page, err := svc.List(ctx, EmployeeFilter{PageRequest: PageRequest{Page: 1, Limit: 10}, Search: "A"})
	require.NoError(t, err)
	assert.Len(t, employees, 3)
	assert.Equal(t, Pagination{Page: 1, Limit: 10, TotalItems: 3, TotalPages: 1}, page)

	employees, _, err = svc.List(ctx, EmployeeFilter{PageRequest: PageRequest{Page: 1, Limit: 10}, Search: "al"})
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "alan", employees[0].Name)

	_, _, err = svc.List(ctx, EmployeeFilter{PageRequest: PageRequest{Page: 1, Limit: 0}})
	assert.ErrorIs(t, err, ErrInvalidLimit)
}
