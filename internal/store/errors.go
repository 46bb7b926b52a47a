package store

import (
	"errors"
	"fmt"
)

// Sentinels returned by every store implementation. Specific errors wrap
// the generic ones so callers can match either.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or violates a database constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrNoTransaction is returned by operations that must run inside a
	// transaction when called on a store bound to a plain connection.
	ErrNoTransaction = errors.New("operation requires a transaction")

	// ErrCuratorNotFound indicates that the requested curator does not exist.
	ErrCuratorNotFound = fmt.Errorf("%w: curator", ErrNotFound)

	// ErrTaskNotFound indicates that the requested task does not exist.
	ErrTaskNotFound = fmt.Errorf("%w: task", ErrNotFound)

	// ErrReportNotFound indicates that the requested report does not exist.
	ErrReportNotFound = fmt.Errorf("%w: report", ErrNotFound)

	// ErrCatalogEntryNotFound indicates an unknown catalog id.
	ErrCatalogEntryNotFound = fmt.Errorf("%w: catalog entry", ErrNotFound)

	// ErrTaskIDTaken indicates a task id collision.
	ErrTaskIDTaken = fmt.Errorf("%w: task id", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
