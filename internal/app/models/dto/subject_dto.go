package dto

// CreateSubjectRequest represents a request to create a subject.
// DepartmentID is honored only for ORG_ADMIN callers; DEPT_ADMIN callers
// always create within their own department.
type CreateSubjectRequest struct {
	Name         string  `json:"name" binding:"required,min=2,max=100"`
	FacultyIDs   []int64 `json:"facultyIds" binding:"required,min=1"`
	Semester     int     `json:"semester" binding:"required,min=1"`
	DepartmentID *int64  `json:"departmentId,omitempty"`
}

// UpdateSubjectRequest represents a request to update a subject
type UpdateSubjectRequest struct {
	Name       *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	FacultyIDs []int64 `json:"facultyIds,omitempty"`
	Semester   *int    `json:"semester,omitempty" binding:"omitempty,min=1"`
}
