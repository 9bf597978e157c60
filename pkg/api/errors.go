package api

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of an API error.
type ErrorType string

const (
	ErrorTypeServerError        ErrorType = "server_error"
	ErrorTypeInvalidRequest     ErrorType = "invalid_request"
	ErrorTypeNotFound           ErrorType = "not_found"
	ErrorTypeBackendUnavailable ErrorType = "backend_unavailable"
)

// internalErrorDetail is the fixed detail reported for server errors.
const internalErrorDetail = "Internal server error"

// FieldError describes a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError represents a structured API error with type, param, and message.
// Backend and internal errors may carry the underlying cause, available
// through errors.Unwrap.
type APIError struct {
	Type    ErrorType    `json:"type"`
	Param   string       `json:"param,omitempty"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`

	cause error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// ErrorResponse is the uniform JSON error body written by the gateway.
type ErrorResponse struct {
	Detail string       `json:"detail"`
	Error  string       `json:"error,omitempty"`
	Errors []FieldError `json:"errors,omitempty"`
}

// NewErrorResponse renders an APIError as the wire error body. Server errors
// report a fixed detail with the cause in the error field; every other type
// reports its message as the detail.
func NewErrorResponse(e *APIError) ErrorResponse {
	if e.Type == ErrorTypeServerError {
		return ErrorResponse{Detail: internalErrorDetail, Error: e.Message}
	}
	return ErrorResponse{Detail: e.Message, Errors: e.Fields}
}

// NewInvalidRequestError creates an APIError for invalid request parameters.
func NewInvalidRequestError(param, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Param:   param,
		Message: message,
	}
}

// NewValidationError creates an invalid_request APIError listing every field
// violation. Param is set to the first offending field.
func NewValidationError(fields []FieldError) *APIError {
	e := &APIError{
		Type:    ErrorTypeInvalidRequest,
		Message: "request validation failed",
		Fields:  fields,
	}
	if len(fields) > 0 {
		e.Param = fields[0].Field
		if len(fields) == 1 {
			e.Message = fields[0].Message
		} else {
			e.Message = fmt.Sprintf("request validation failed: %s (and %d more)", fields[0].Message, len(fields)-1)
		}
	}
	return e
}

// NewNotFoundError creates an APIError for resources that cannot be found.
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewServerError creates an APIError for internal server errors.
func NewServerError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeServerError,
		Message: message,
	}
}

// NewInternalError wraps an unexpected error as a server error.
func NewInternalError(cause error) *APIError {
	return &APIError{
		Type:    ErrorTypeServerError,
		Message: fmt.Sprintf("%s: %v", internalErrorDetail, cause),
		cause:   cause,
	}
}

// NewBackendUnavailableError creates an APIError for a failed call to the
// inference backend. The cause is kept for errors.Is/As inspection.
func NewBackendUnavailableError(message string, cause error) *APIError {
	return &APIError{
		Type:    ErrorTypeBackendUnavailable,
		Message: message,
		cause:   cause,
	}
}

// IsBackendUnavailable reports whether err is a backend_unavailable APIError.
func IsBackendUnavailable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == ErrorTypeBackendUnavailable
}
