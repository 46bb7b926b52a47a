// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity or selector fails validation.
	// It is usually wrapped with a more specific message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTaskID is returned when a task identifier does not have the
	// <prefix>-<number> shape.
	ErrInvalidTaskID = errors.New("invalid task ID")

	// ErrMentorNotConfirmed is returned when a curator row names a mentor
	// whose profile has not been confirmed. The schema enforces it.
	ErrMentorNotConfirmed = errors.New("mentor is not confirmed")
)
