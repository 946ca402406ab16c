package models

import "time"

// AttendanceEntry records one student's presence in a lecture.
type AttendanceEntry struct {
	RollNumber string `json:"rollNumber"`
	Present    bool   `json:"present"`
}

// Lecture represents one captured lecture session of a subject. A lecture
// is created empty, enriched exactly once with recognition results, then
// only touched by administrative edits.
type Lecture struct {
	ID              int64             `json:"id" db:"id"`
	SubjectID       int64             `json:"subjectId" db:"subject_id"`
	Division        string            `json:"division" db:"division"`
	Batch           *string           `json:"batch,omitempty" db:"batch"`
	Attendance      []AttendanceEntry `json:"attendance"`
	Images          []ImageRef        `json:"images"`
	AnnotatedImages []ImageRef        `json:"annotatedImages"`
	CreatedAt       time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time         `json:"updatedAt" db:"updated_at"`
	Subject         *Subject          `json:"subject,omitempty"` // Relation, no db tag
}
