// Package task defines the task domain model tracked by the application.
// It contains task metadata along with status and priority definitions.
package task

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type (
	TaskStatus   string
	TaskPriority string
	Task         struct {
		ID          string       `json:"id"`
		Title       string       `json:"title"`
		Description string       `json:"description,omitempty"`
		Status      TaskStatus   `json:"status"`
		Priority    TaskPriority `json:"priority"`
		AssignedTo  *string      `json:"assignedTo"`
		DueDate     *time.Time   `json:"dueDate"`
		CompletedAt *time.Time   `json:"completedAt"`
		CreatedAt   time.Time    `json:"createdAt"`
		UpdatedAt   time.Time    `json:"updatedAt"`
	}
)

const (
	TodoStatus       TaskStatus = "todo"
	InProgressStatus TaskStatus = "in_progress"
	CompletedStatus  TaskStatus = "completed"
)

const (
	LowPriority    TaskPriority = "low"
	MediumPriority TaskPriority = "medium"
	HighPriority   TaskPriority = "high"
)

// Statuses lists every status in display order.
var Statuses = []TaskStatus{TodoStatus, InProgressStatus, CompletedStatus}

// Priorities lists every priority in display order.
var Priorities = []TaskPriority{LowPriority, MediumPriority, HighPriority}

func (s TaskStatus) Valid() bool {
	return slices.Contains(Statuses, s)
}

func (s TaskStatus) String() string {
	return string(s)
}

func (p TaskPriority) Valid() bool {
	return slices.Contains(Priorities, p)
}

func (p TaskPriority) String() string {
	return string(p)
}

func NewTask(title string, priority TaskPriority) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:        uuid.New().String(),
		Title:     title,
		Status:    TodoStatus,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (t *Task) IsCompleted() bool {
	return t.Status == CompletedStatus
}

// IsOverdue reports whether the task is past its due date at now and not yet completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.IsCompleted()
}

// SetStatus moves the task to status and keeps CompletedAt in step:
// entering completed stamps it, leaving completed clears it.
func (t *Task) SetStatus(status TaskStatus, now time.Time) {
	switch {
	case status == CompletedStatus && t.Status != CompletedStatus:
		completedAt := now
		t.CompletedAt = &completedAt
	case status != CompletedStatus:
		t.CompletedAt = nil
	}

	t.Status = status
}
