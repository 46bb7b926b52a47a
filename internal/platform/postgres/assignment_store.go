package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/platform/logger"
	"github.com/umtracker/umtracker-api/internal/policy"
	"github.com/umtracker/umtracker-api/internal/store"
)

// PostgresAssignmentStore implements store.AssignmentStore.
type PostgresAssignmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAssignmentStore creates an assignment store over db.
func NewPostgresAssignmentStore(db store.DBTX, logger *slog.Logger) *PostgresAssignmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAssignmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "assignment_store")),
	}
}

var _ store.AssignmentStore = (*PostgresAssignmentStore)(nil)

// WithTx implements store.AssignmentStore.
func (s *PostgresAssignmentStore) WithTx(tx *sql.Tx) store.AssignmentStore {
	return &PostgresAssignmentStore{db: tx, logger: s.logger}
}

// Create implements store.AssignmentStore.
func (s *PostgresAssignmentStore) Create(ctx context.Context, a *domain.Assignment) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO assignments (task_id, subject_id, department_id, role_id, curator_email, author_email)
		VALUES ($1, NULLIF($2::bigint, 0), NULLIF($3::bigint, 0), NULLIF($4::bigint, 0), NULLIF($5, ''), $6)
		RETURNING id`,
		a.TaskID,
		a.SubjectID,
		a.DepartmentID,
		a.RoleID,
		a.CuratorEmail,
		a.AuthorEmail,
	).Scan(&a.ID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create assignment",
			slog.String("task_id", a.TaskID),
			slog.Bool("template", a.IsTemplate()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// Flags implements store.AssignmentStore. Tasks without assignments are
// absent from the result.
func (s *PostgresAssignmentStore) Flags(
	ctx context.Context,
	taskIDs []string,
	visible policy.Scope,
) (map[string]store.AssignmentFlags, error) {
	flags := make(map[string]store.AssignmentFlags, len(taskIDs))
	if len(taskIDs) == 0 {
		return flags, nil
	}

	var args queryArgs
	ids := args.add(taskIDs)
	query := `
		SELECT a.task_id,
			COALESCE(BOOL_OR(a.curator_email IS NULL), FALSE),
			COALESCE(BOOL_OR(c.email IS NOT NULL AND ` + scopePredicate(visible, "c", &args) + `), FALSE)
		FROM assignments a
		LEFT JOIN curators c ON c.email = a.curator_email
		WHERE a.task_id = ANY(` + ids + `)
		GROUP BY a.task_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load assignment flags",
			slog.Int("tasks", len(taskIDs)),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id string
		var f store.AssignmentFlags
		if err := rows.Scan(&id, &f.HasGroup, &f.HasPersonal); err != nil {
			return nil, fmt.Errorf("scan assignment flags: %w", err)
		}
		flags[id] = f
	}
	return flags, MapError(rows.Err())
}
