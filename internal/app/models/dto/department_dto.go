package dto

// CreateDepartmentRequest represents a request to create a department
type CreateDepartmentRequest struct {
	Name           string `json:"name" binding:"required,min=2,max=100"`
	OrganisationID int64  `json:"organisationId" binding:"required"`
	TotalSemesters int    `json:"totalSemesters" binding:"required,min=1"`
}

// UpdateDepartmentRequest represents a request to update a department.
// The owning organisation can never change.
type UpdateDepartmentRequest struct {
	Name           *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	TotalSemesters *int    `json:"totalSemesters,omitempty" binding:"omitempty,min=1"`
}
