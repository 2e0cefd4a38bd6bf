// Package employee defines the employee record tasks are assigned to.
package employee

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewEmployee(name, email, role string) *Employee {
	now := time.Now().UTC()
	return &Employee{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
