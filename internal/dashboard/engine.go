package dashboard

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/nadmax/tasktracker/internal/employee"
	"github.com/nadmax/tasktracker/internal/task"
)

const (
	msPerHour = float64(time.Hour / time.Millisecond)
	msPerDay  = 24 * msPerHour
)

func CountByStatus(tasks []*task.Task) StatusCounts {
	var counts StatusCounts
	for _, t := range tasks {
		switch t.Status {
		case task.TodoStatus:
			counts.Todo++
		case task.InProgressStatus:
			counts.InProgress++
		case task.CompletedStatus:
			counts.Completed++
		}
	}

	return counts
}

func CountByPriority(tasks []*task.Task) PriorityCounts {
	var counts PriorityCounts
	for _, t := range tasks {
		switch t.Priority {
		case task.LowPriority:
			counts.Low++
		case task.MediumPriority:
			counts.Medium++
		case task.HighPriority:
			counts.High++
		}
	}

	return counts
}

// SummarizeByEmployee rolls assigned tasks up per assignee. Assignees with no
// matching employee record are left out. Entries are ordered by task count,
// highest first; equal counts keep the order in which assignees first appear.
func SummarizeByEmployee(tasks []*task.Task, employees []*employee.Employee) []EmployeeTaskSummary {
	byID := make(map[string]*employee.Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	groups := make(map[string]*EmployeeTaskSummary)
	order := make([]string, 0)
	for _, t := range tasks {
		if t.AssignedTo == nil {
			continue
		}

		id := *t.AssignedTo
		g, ok := groups[id]
		if !ok {
			g = &EmployeeTaskSummary{EmployeeID: id}
			groups[id] = g
			order = append(order, id)
		}

		g.TaskCount++
		switch t.Status {
		case task.CompletedStatus:
			g.Completed++
		case task.InProgressStatus:
			g.InProgress++
		case task.TodoStatus:
			g.Todo++
		}
	}

	summaries := make([]EmployeeTaskSummary, 0, len(order))
	for _, id := range order {
		e, ok := byID[id]
		if !ok {
			continue
		}

		g := groups[id]
		g.EmployeeName = e.Name
		g.EmployeeEmail = e.Email
		summaries = append(summaries, *g)
	}

	slices.SortStableFunc(summaries, func(a, b EmployeeTaskSummary) int {
		return cmp.Compare(b.TaskCount, a.TaskCount)
	})

	return summaries
}

func CountOverdue(tasks []*task.Task, now time.Time) int {
	count := 0
	for _, t := range tasks {
		if t.IsOverdue(now) {
			count++
		}
	}

	return count
}

// AverageCompletion averages created-to-completed latency over completed tasks
// that carry a completion timestamp. Tasks whose completion precedes their
// creation are skipped.
func AverageCompletion(tasks []*task.Task) CompletionTime {
	var totalMs float64
	n := 0
	for _, t := range tasks {
		if !t.IsCompleted() || t.CompletedAt == nil || t.CreatedAt.IsZero() {
			continue
		}

		elapsed := t.CompletedAt.Sub(t.CreatedAt)
		if elapsed < 0 {
			continue
		}

		totalMs += float64(elapsed.Milliseconds())
		n++
	}

	if n == 0 {
		return CompletionTime{}
	}

	avgMs := totalMs / float64(n)
	hours := roundTenth(avgMs / msPerHour)
	days := roundTenth(avgMs / msPerDay)

	label := NumericLabel(hours)
	if days >= 1 {
		label = NumericLabel(days)
	}

	return CompletionTime{
		Hours:     hours,
		Days:      days,
		Formatted: label,
	}
}

func CompletionRate(counts StatusCounts) int {
	total := counts.Total()
	if total == 0 {
		return 0
	}

	return int(math.Round(float64(counts.Completed) / float64(total) * 100))
}

func CountEmployees(employees []*employee.Employee) int {
	return len(employees)
}

func CountTasks(tasks []*task.Task) int {
	return len(tasks)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
