package store

import (
	"context"
	"database/sql"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/policy"
)

// ReportQuery selects reports visible to a viewer. Zero values mean "no
// constraint".
type ReportQuery struct {
	// Visible is the viewer's scope applied to report recipients.
	Visible policy.Scope

	// AuthorSubjectID restricts to tasks whose author belongs to the subject.
	AuthorSubjectID *int64

	TaskID                string
	CuratorEmail          string
	RecipientSubjectID    int64
	RecipientDepartmentID int64

	// NameContains is a case-insensitive substring of the task name.
	NameContains string

	// ExcludeStatusIDs drops reports with these statuses.
	ExcludeStatusIDs []int64
}

// ReportStore defines the interface for report persistence.
type ReportStore interface {
	// CreateBatch opens reports, skipping (task, curator) pairs that already
	// have one. Returns the number of rows inserted.
	CreateBatch(ctx context.Context, reports []*domain.Report) (int, error)

	// ListVisible returns joined report rows matching q.
	ListVisible(ctx context.Context, q ReportQuery) ([]domain.ReportRow, error)

	// WithTx returns a ReportStore bound to tx.
	WithTx(tx *sql.Tx) ReportStore
}
