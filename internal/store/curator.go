package store

import (
	"context"
	"database/sql"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/policy"
)

// RecipientFilter narrows a policy scope. SingleEmail takes priority over
// Emails, and either takes priority over the group fields. Zero values mean
// "no constraint".
type RecipientFilter struct {
	SingleEmail   string
	Emails        []string
	SubjectID     int64
	DepartmentIDs []int64
	RoleIDs       []int64
}

// Explicit reports whether the filter addresses curators by email.
func (f RecipientFilter) Explicit() bool {
	return f.SingleEmail != "" || len(f.Emails) > 0
}

// CuratorStore defines the interface for curator persistence.
type CuratorStore interface {
	// GetByEmail retrieves a curator with catalog labels.
	// Returns ErrCuratorNotFound if the curator does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.Curator, error)

	// ListInScope returns curators inside scope that match filter, ordered by name.
	ListInScope(ctx context.Context, scope policy.Scope, filter RecipientFilter) ([]*domain.Curator, error)

	// NamesByChatID resolves chat handles to display names in one query.
	// Unknown handles are absent from the result.
	NamesByChatID(ctx context.Context, chatIDs []int64) (map[int64]string, error)

	// WithTx returns a CuratorStore bound to tx.
	WithTx(tx *sql.Tx) CuratorStore
}
