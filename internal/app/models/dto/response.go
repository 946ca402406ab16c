package dto

// Response types
const (
	TypeSuccess = "success"
	TypeError   = "error"
)

// APIResponse is the standard response envelope for every endpoint.
type APIResponse struct {
	Type    string      `json:"type" example:"success"`
	Message string      `json:"message" example:"Operation completed successfully"`
	Data    interface{} `json:"data,omitempty"`
}

// NewSuccessResponse creates a success envelope
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Type:    TypeSuccess,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse creates an error envelope
func NewErrorResponse(message string) APIResponse {
	return APIResponse{
		Type:    TypeError,
		Message: message,
	}
}
