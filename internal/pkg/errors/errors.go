package errors

import "fmt"

// AppError represents a pipeline error with additional context
type AppError struct {
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Internal error       `json:"-"`
	Details  interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Common error codes
const (
	ErrCodeClassification = "CLASSIFICATION_ERROR"
	ErrCodeDelivery       = "DELIVERY_ERROR"
	ErrCodeRemediation    = "REMEDIATION_ERROR"
	ErrCodeStorage        = "STORAGE_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConfig         = "CONFIG_ERROR"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Internal: err,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// Common error constructors

// Classification creates an event classification error
func Classification(message string, details interface{}) *AppError {
	return New(ErrCodeClassification, message).WithDetails(details)
}

// Delivery creates a notification or audit delivery error
func Delivery(message string, err error) *AppError {
	return Wrap(err, ErrCodeDelivery, message)
}

// Remediation creates a remediation action error
func Remediation(message string, err error) *AppError {
	return Wrap(err, ErrCodeRemediation, message)
}

// Storage creates a storage error
func Storage(message string, err error) *AppError {
	return Wrap(err, ErrCodeStorage, message)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// Config creates a configuration error
func Config(message string) *AppError {
	return New(ErrCodeConfig, message)
}

// Internal creates an internal error
func Internal(message string, err error) *AppError {
	return Wrap(err, ErrCodeInternal, message)
}
