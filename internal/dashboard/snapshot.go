package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nadmax/tasktracker/internal/task"
)

// Snapshot is one fully computed set of dashboard metrics. It is never
// modified after GetMetrics returns it.
type Snapshot struct {
	EmployeeCount         int                   `json:"employees"`
	TotalTaskCount        int                   `json:"totalTasks"`
	CompletedTaskCount    int                   `json:"completedTasks"`
	CompletionRate        int                   `json:"completionRate"`
	StatusCounts          StatusCounts          `json:"statusCounts"`
	PriorityCounts        PriorityCounts        `json:"priorityCounts"`
	TasksByEmployee       []EmployeeTaskSummary `json:"tasksByEmployee"`
	OverdueTaskCount      int                   `json:"overdueTasks"`
	AvgCompletionTime     Label                 `json:"avgCompletionTime"`
	AverageCompletionTime CompletionTime        `json:"averageCompletionTime"`
	ComputedAt            time.Time             `json:"computedAt"`
}

type StatusCounts struct {
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

func (c StatusCounts) Total() int {
	return c.Todo + c.InProgress + c.Completed
}

func (c StatusCounts) ByStatus() map[task.TaskStatus]int {
	return map[task.TaskStatus]int{
		task.TodoStatus:       c.Todo,
		task.InProgressStatus: c.InProgress,
		task.CompletedStatus:  c.Completed,
	}
}

type PriorityCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

func (c PriorityCounts) Total() int {
	return c.Low + c.Medium + c.High
}

type EmployeeTaskSummary struct {
	EmployeeID    string `json:"employeeId"`
	EmployeeName  string `json:"employeeName"`
	EmployeeEmail string `json:"employeeEmail"`
	TaskCount     int    `json:"taskCount"`
	Completed     int    `json:"completed"`
	InProgress    int    `json:"inProgress"`
	Todo          int    `json:"todo"`
}

type CompletionTime struct {
	Hours     float64 `json:"hours"`
	Days      float64 `json:"days"`
	Formatted Label   `json:"formatted"`
}

const notAvailable = "N/A"

// Label is the display value of the average completion time. It encodes as a
// JSON number, or as the string "N/A" when no task qualified.
type Label struct {
	value float64
	valid bool
}

func NumericLabel(v float64) Label {
	return Label{value: v, valid: true}
}

func (l Label) Value() (float64, bool) {
	return l.value, l.valid
}

func (l Label) String() string {
	if !l.valid {
		return notAvailable
	}

	return strconv.FormatFloat(l.value, 'f', -1, 64)
}

func (l Label) MarshalJSON() ([]byte, error) {
	if !l.valid {
		return json.Marshal(notAvailable)
	}

	return json.Marshal(l.value)
}

func (l *Label) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*l = Label{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != notAvailable {
			return fmt.Errorf("invalid completion label %q", s)
		}

		*l = Label{}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid completion label: %w", err)
	}

	*l = NumericLabel(v)
	return nil
}
