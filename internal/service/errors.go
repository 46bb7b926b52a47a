package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to status codes.
var (
	// ErrNoEligibleRecipients indicates the selector matched nobody inside the
	// author's scope. API layer should map this to HTTP 400 Bad Request.
	ErrNoEligibleRecipients = errors.New("no recipients match your permissions and filters")

	// ErrNotConfirmed indicates the acting curator's profile is not confirmed.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotConfirmed = errors.New("curator profile is not confirmed")

	// ErrTaskNotFound indicates the requested task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrReportNotFound indicates the report does not exist or lies outside
	// the viewer's scope.
	ErrReportNotFound = errors.New("report not found")

	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ServiceError wraps unexpected failures with the operation that produced them.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newAssignmentError(operation, message string, err error) *ServiceError {
	return &ServiceError{Service: "assignment", Operation: operation, Message: message, Err: err}
}

func newDashboardError(operation, message string, err error) *ServiceError {
	return &ServiceError{Service: "dashboard", Operation: operation, Message: message, Err: err}
}
