package models

import "time"

// Subject represents a taught subject within a department. Subjects are
// soft-deleted via IsActive: attendance history keeps referencing them.
type Subject struct {
	ID           int64       `json:"id" db:"id"`
	DepartmentID int64       `json:"departmentId" db:"department_id"`
	Name         string      `json:"name" db:"name"`
	Semester     int         `json:"semester" db:"semester"`
	IsActive     bool        `json:"isActive" db:"is_active"`
	FacultyIDs   []int64     `json:"facultyIds"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`
	Department   *Department `json:"department,omitempty"` // Relation, no db tag
}
