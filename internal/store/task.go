package store

import (
	"context"
	"database/sql"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/policy"
)

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// NextTaskID takes the transaction-scoped allocation lock for lockKey and
	// returns the next free id for prefix. It must be called on a store bound
	// to a transaction; the lock is held until that transaction ends.
	NextTaskID(ctx context.Context, lockKey int64, prefix string) (string, error)

	// Create inserts a task. Returns ErrTaskIDTaken on id collision.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// WithTx returns a TaskStore bound to tx.
	WithTx(tx *sql.Tx) TaskStore
}

// AssignmentFlags describes how a task was assigned, as seen by one viewer.
type AssignmentFlags struct {
	// HasGroup is set when the task has a group template assignment.
	HasGroup bool
	// HasPersonal is set when the task is assigned to a curator the viewer can see.
	HasPersonal bool
}

// AssignmentStore defines the interface for assignment persistence.
type AssignmentStore interface {
	// Create inserts a, filling in its ID.
	Create(ctx context.Context, a *domain.Assignment) error

	// Flags computes AssignmentFlags for each task id.
	Flags(ctx context.Context, taskIDs []string, visible policy.Scope) (map[string]AssignmentFlags, error)

	// WithTx returns an AssignmentStore bound to tx.
	WithTx(tx *sql.Tx) AssignmentStore
}
