package dto

import "github.com/presentia/backend/internal/app/models"

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Platform string `json:"platform,omitempty"`
}

// LoginUser is the user payload returned on successful login
type LoginUser struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           models.Role `json:"role"`
	OrganisationID *int64      `json:"organisationId,omitempty"`
	DepartmentID   *int64      `json:"departmentId,omitempty"`
}

// LoginResponse carries the bearer token and the authenticated user
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int       `json:"expiresIn"`
	User      LoginUser `json:"user"`
}
