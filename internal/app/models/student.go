package models

import "time"

// Student represents an enrolled student. Images and Embeddings are stored
// as jsonb documents; embeddings may be empty when enrollment enrichment
// failed (the record is still valid without them).
type Student struct {
	ID           int64       `json:"id" db:"id"`
	DepartmentID int64       `json:"departmentId" db:"department_id"`
	Name         string      `json:"name" db:"name"`
	RollNumber   string      `json:"rollNumber" db:"roll_number"`
	Division     string      `json:"division" db:"division"`
	Batch        *string     `json:"batch,omitempty" db:"batch"`
	Email        string      `json:"email" db:"email"`
	Semester     int         `json:"semester" db:"semester"`
	IsAlumni     bool        `json:"isAlumni" db:"is_alumni"`
	Images       []ImageRef  `json:"images"`
	Embeddings   []Embedding `json:"embeddings,omitempty"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`
	Department   *Department `json:"department,omitempty"` // Relation, no db tag
}
