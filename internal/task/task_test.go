package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	task := NewTask("Write quarterly report", HighPriority)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Write quarterly report", task.Title)
	assert.Equal(t, HighPriority, task.Priority)
	assert.Equal(t, TodoStatus, task.Status)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	assert.Nil(t, task.AssignedTo)
	assert.Nil(t, task.DueDate)
	assert.Nil(t, task.CompletedAt)
}

func TestTaskStatuses(t *testing.T) {
	assert.Equal(t, TaskStatus("todo"), TodoStatus)
	assert.Equal(t, TaskStatus("in_progress"), InProgressStatus)
	assert.Equal(t, TaskStatus("completed"), CompletedStatus)

	for _, s := range Statuses {
		assert.True(t, s.Valid(), s.String())
	}
	assert.False(t, TaskStatus("pending").Valid())
}

func TestTaskPriorities(t *testing.T) {
	for _, p := range Priorities {
		assert.True(t, p.Valid(), p.String())
	}
	assert.False(t, TaskPriority("urgent").Valid())
	assert.False(t, TaskPriority("").Valid())
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		status   TaskStatus
		due      *time.Time
		expected bool
	}{
		{name: "past due todo", status: TodoStatus, due: &past, expected: true},
		{name: "past due in progress", status: InProgressStatus, due: &past, expected: true},
		{name: "past due completed", status: CompletedStatus, due: &past, expected: false},
		{name: "future due", status: TodoStatus, due: &future, expected: false},
		{name: "due exactly now", status: TodoStatus, due: &now, expected: false},
		{name: "no due date", status: TodoStatus, due: nil, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Status: tt.status, DueDate: tt.due}
			assert.Equal(t, tt.expected, task.IsOverdue(now))
		})
	}
}

func TestSetStatus(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("entering completed stamps completion time", func(t *testing.T) {
		task := NewTask("Ship release", HighPriority)
		task.SetStatus(CompletedStatus, now)

		assert.Equal(t, CompletedStatus, task.Status)
		require.NotNil(t, task.CompletedAt)
		assert.Equal(t, now, *task.CompletedAt)
	})

	t.Run("staying completed keeps original completion time", func(t *testing.T) {
		task := NewTask("Ship release", HighPriority)
		task.SetStatus(CompletedStatus, now)
		task.SetStatus(CompletedStatus, now.Add(time.Hour))

		require.NotNil(t, task.CompletedAt)
		assert.Equal(t, now, *task.CompletedAt)
	})

	t.Run("leaving completed clears completion time", func(t *testing.T) {
		task := NewTask("Ship release", HighPriority)
		task.SetStatus(CompletedStatus, now)
		task.SetStatus(InProgressStatus, now)

		assert.Equal(t, InProgressStatus, task.Status)
		assert.Nil(t, task.CompletedAt)
	})
}
