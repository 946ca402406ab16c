package dto

// CreateLectureRequest represents the multipart form fields of a lecture
// capture; the classroom photos travel as multipart files alongside it.
type CreateLectureRequest struct {
	SubjectID int64   `form:"subjectId" binding:"required"`
	Division  string  `form:"division" binding:"required,len=1"`
	Batch     *string `form:"batch"`
}

// UpdateLectureRequest represents an administrative edit of a lecture's
// attendance list.
type UpdateLectureRequest struct {
	Attendance []AttendanceEntryRequest `json:"attendance" binding:"required,dive"`
}

// AttendanceEntryRequest is one manually edited attendance row
type AttendanceEntryRequest struct {
	RollNumber string `json:"rollNumber" binding:"required"`
	Present    bool   `json:"present"`
}

// LectureFilterRequest narrows a lecture listing
type LectureFilterRequest struct {
	SubjectID *int64  `form:"subjectId"`
	Date      *string `form:"date"` // YYYY-MM-DD
}
