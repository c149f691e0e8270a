// File: internal/dtos/response.go
package dtos

// SuccessResponse represents a successful API response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse represents an error API response. Kind carries the error
// taxonomy tag so clients can branch without parsing messages.
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Error     string      `json:"error"`
	Kind      string      `json:"kind,omitempty"`
	Retryable bool        `json:"retryable,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// CreateSuccessResponse creates a standard success response
func CreateSuccessResponse(data interface{}, message string) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// CreateErrorResponse creates a standard error response
func CreateErrorResponse(err string, kind string, retryable bool) ErrorResponse {
	return ErrorResponse{
		Success:   false,
		Error:     err,
		Kind:      kind,
		Retryable: retryable,
	}
}
