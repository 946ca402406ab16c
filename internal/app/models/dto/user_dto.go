package dto

import "github.com/presentia/backend/internal/app/models"

// CreateUserRequest represents a request to create an actor. The scope
// identifiers are validated against the creator's scope, never taken at
// face value.
type CreateUserRequest struct {
	Name           string      `json:"name" binding:"required,min=2,max=100"`
	Email          string      `json:"email" binding:"required,email"`
	Password       string      `json:"password" binding:"required,min=6"`
	Role           models.Role `json:"role" binding:"required"`
	OrganisationID *int64      `json:"organisationId,omitempty"`
	DepartmentID   *int64      `json:"departmentId,omitempty"`
}

// UpdateUserRequest represents a request to update an actor
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Password *string `json:"password,omitempty" binding:"omitempty,min=6"`
	IsActive *bool   `json:"isActive,omitempty"`
}
