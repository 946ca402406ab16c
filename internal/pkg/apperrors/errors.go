package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrConflict      = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")
	// ErrScopeViolation marks access to an entity that exists but sits
	// outside the actor's subtree of the hierarchy. Kept distinct from
	// ErrNotFound: the two map to different status codes.
	ErrScopeViolation = errors.New("entity outside actor scope")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// External collaborators
	ErrExternalService = errors.New("external service failure")
)

// Entity errors. Each wraps one of the generic categories above so the
// error-to-status mapping only has to know the categories.

// User errors
var (
	ErrUserNotFound       = NewCustomError(ErrNotFound, "user not found")
	ErrEmailAlreadyExists = NewCustomError(ErrAlreadyExists, "email already exists")
	ErrSystemAdminExists  = NewCustomError(ErrConflict, "a system admin already exists")
	ErrOrgAdminExists     = NewCustomError(ErrConflict, "an organisation admin already exists for this organisation")
)

// Organisation errors
var (
	ErrOrganisationNotFound = NewCustomError(ErrNotFound, "organisation not found")
	ErrContactAlreadyExists = NewCustomError(ErrAlreadyExists, "organisation contact already exists")
)

// Department errors
var (
	ErrDepartmentNotFound      = NewCustomError(ErrNotFound, "department not found")
	ErrDepartmentAlreadyExists = NewCustomError(ErrAlreadyExists, "department with this name already exists in the organisation")
)

// Subject errors
var (
	ErrSubjectNotFound = NewCustomError(ErrNotFound, "subject not found")
)

// Student errors
var (
	ErrStudentNotFound         = NewCustomError(ErrNotFound, "student not found")
	ErrRollNumberAlreadyExists = NewCustomError(ErrAlreadyExists, "student roll number already exists")
)

// Lecture errors
var (
	ErrLectureNotFound = NewCustomError(ErrNotFound, "lecture not found")
)

// NewNotFoundError creates a new custom error for a missing resource with a message
func NewNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewScopeViolationError creates a new custom error for an entity that exists
// outside the actor's scope
func NewScopeViolationError(message string) error {
	return &CustomError{
		Err:     ErrScopeViolation,
		Message: message,
	}
}

// NewValidationError creates a new custom error for malformed input with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewExternalServiceError creates a new custom error for a failed collaborator call
func NewExternalServiceError(message string) error {
	return &CustomError{
		Err:     ErrExternalService,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
