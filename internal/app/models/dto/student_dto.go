package dto

// CreateStudentRequest represents the multipart form fields of a student
// enrollment; the images travel as multipart files alongside it.
type CreateStudentRequest struct {
	Name       string  `form:"name" binding:"required,min=2,max=100"`
	RollNumber string  `form:"rollNumber" binding:"required,alphanum,min=1,max=20"`
	Division   string  `form:"division" binding:"required,min=1,max=10"`
	Email      string  `form:"email" binding:"required,email"`
	Semester   int     `form:"semester" binding:"required,min=1"`
	Batch      *string `form:"batch"`
}

// UpdateStudentRequest represents a request to update a student
type UpdateStudentRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Division *string `json:"division,omitempty" binding:"omitempty,min=1,max=10"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Semester *int    `json:"semester,omitempty" binding:"omitempty,min=1"`
	Batch    *string `json:"batch,omitempty"`
}

// StudentFilterRequest narrows a student listing
type StudentFilterRequest struct {
	Division *string `form:"division"`
	Batch    *string `form:"batch"`
	Semester *int    `form:"semester"`
	IsAlumni bool    `form:"isAlumni"`
}

// PromotionResponse reports the outcome of a semester promotion batch
type PromotionResponse struct {
	PromotedCount int `json:"promotedCount"`
	AlumniCount   int `json:"alumniCount"`
}
