// Package service holds the task and employee business rules that sit between
// the HTTP handlers and the repository.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nadmax/tasktracker/internal/repository"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrInvalidAssignee  = errors.New("assigned employee does not exist")
	ErrDuplicateEmail   = repository.ErrDuplicateEmail
	ErrInvalidPage      = errors.New("page must be greater than 0")
	ErrInvalidLimit     = fmt.Errorf("limit must be between 1 and %d", MaxLimit)
)

// Invalidator evicts derived data that depends on task records.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationError is returned when request input fails validation.
type ValidationError struct {
	Message string
	Issues  []FieldIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return e.Message
	}

	issues := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		issues = append(issues, issue.Field+": "+issue.Issue)
	}

	return e.Message + ": " + strings.Join(issues, "; ")
}

// Optional is a JSON field that tells an absent value apart from an explicit null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	o.Value = &v
	return nil
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) validate() error {
	if p.Page < 1 {
		return ErrInvalidPage
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return ErrInvalidLimit
	}

	return nil
}

func (p PageRequest) offset() int {
	return (p.Page - 1) * p.Limit
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

func newPagination(p PageRequest, totalItems int) Pagination {
	return Pagination{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalItems: totalItems,
		TotalPages: (totalItems + p.Limit - 1) / p.Limit,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	verr := &ValidationError{Message: "Validation failed"}
	for _, fe := range fieldErrs {
		verr.Issues = append(verr.Issues, FieldIssue{Field: fe.Field(), Issue: issueFor(fe)})
	}

	return verr
}

func issueFor(fe validator.FieldError) string {
	label := fe.StructField()

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(fe.Param()), ", "))
	case "email":
		return "Invalid email format"
	case "uuid":
		return "Invalid employee ID format"
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// validateEmployeeRef checks an optional assignee id. A nil id is valid.
func validateEmployeeRef(id *string) error {
	if id == nil {
		return nil
	}

	if err := validate.Var(*id, "uuid"); err != nil {
		return &ValidationError{
			Message: "Validation failed",
			Issues:  []FieldIssue{{Field: "assignedTo", Issue: "Invalid employee ID format"}},
		}
	}

	return nil
}

func noFieldsError() error {
	return &ValidationError{Message: "At least one field must be provided for update"}
}
