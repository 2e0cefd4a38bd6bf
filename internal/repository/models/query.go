// Package models contains data structures used by the repository layer.
package models

import "github.com/nadmax/tasktracker/internal/task"

// TaskQuery filters and pages a task listing. Zero values mean "no filter";
// a Limit of 0 returns every matching row.
type TaskQuery struct {
	Search     string
	Status     task.TaskStatus
	Priority   task.TaskPriority
	AssignedTo string
	Limit      int
	Offset     int
}

type EmployeeQuery struct {
	Search string
	Limit  int
	Offset int
}
