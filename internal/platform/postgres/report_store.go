package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/platform/logger"
	"github.com/umtracker/umtracker-api/internal/store"
)

// PostgresReportStore implements store.ReportStore.
type PostgresReportStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReportStore creates a report store over db.
func NewPostgresReportStore(db store.DBTX, logger *slog.Logger) *PostgresReportStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReportStore{
		db:     db,
		logger: logger.With(slog.String("component", "report_store")),
	}
}

var _ store.ReportStore = (*PostgresReportStore)(nil)

// WithTx implements store.ReportStore.
func (s *PostgresReportStore) WithTx(tx *sql.Tx) store.ReportStore {
	return &PostgresReportStore{db: tx, logger: s.logger}
}

// CreateBatch implements store.ReportStore.
func (s *PostgresReportStore) CreateBatch(ctx context.Context, reports []*domain.Report) (int, error) {
	if len(reports) == 0 {
		return 0, nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO reports (task_id, curator_email, status_id, started_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (task_id, curator_email) DO NOTHING`)
	if err != nil {
		log.Error("failed to prepare report insert", slog.String("error", err.Error()))
		return 0, MapError(err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, r := range reports {
		res, err := stmt.ExecContext(ctx, r.TaskID, r.CuratorEmail, r.StatusID, r.StartedAt.UTC())
		if err != nil {
			log.Error("failed to create report",
				slog.String("task_id", r.TaskID),
				slog.String("error", err.Error()))
			return inserted, MapError(err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	log.Debug("reports opened",
		slog.Int("requested", len(reports)),
		slog.Int("inserted", inserted))
	return inserted, nil
}

// ListVisible implements store.ReportStore.
func (s *PostgresReportStore) ListVisible(ctx context.Context, q store.ReportQuery) ([]domain.ReportRow, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if q.Visible.Empty() {
		return nil, nil
	}

	var args queryArgs
	conds := []string{scopePredicate(q.Visible, "c", &args)}

	if q.AuthorSubjectID != nil {
		if *q.AuthorSubjectID == 0 {
			conds = append(conds, "au.subject_id IS NULL")
		} else {
			conds = append(conds, "au.subject_id = "+args.add(*q.AuthorSubjectID))
		}
	}
	if q.TaskID != "" {
		conds = append(conds, "r.task_id = "+args.add(q.TaskID))
	}
	if q.CuratorEmail != "" {
		conds = append(conds, "LOWER(r.curator_email) = LOWER("+args.add(q.CuratorEmail)+")")
	}
	if q.RecipientSubjectID != 0 {
		conds = append(conds, "c.subject_id = "+args.add(q.RecipientSubjectID))
	}
	if q.RecipientDepartmentID != 0 {
		conds = append(conds, "c.department_id = "+args.add(q.RecipientDepartmentID))
	}
	if name := strings.TrimSpace(q.NameContains); name != "" {
		conds = append(conds, "t.name ILIKE "+args.add(containsPattern(name)))
	}
	if len(q.ExcludeStatusIDs) > 0 {
		conds = append(conds, "NOT (r.status_id = ANY("+args.add(q.ExcludeStatusIDs)+"))")
	}

	query := `
		SELECT r.id, r.task_id, t.name, t.deadline, t.description,
			r.curator_email, c.name, ro.label, r.status_id, r.started_at, r.completed_at,
			COALESCE(r.report_text, ''), COALESCE(r.report_url, '')
		FROM reports r
		JOIN tasks t ON t.id = r.task_id
		JOIN curators c ON c.email = r.curator_email
		JOIN roles ro ON ro.id = c.role_id
		JOIN curators au ON au.email = t.author_email
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY t.deadline DESC, t.id DESC, c.name, r.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list reports",
			slog.String("scope", q.Visible.Kind.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.ReportRow
	for rows.Next() {
		var r domain.ReportRow
		var completed sql.NullTime
		if err := rows.Scan(
			&r.ReportID,
			&r.TaskID,
			&r.TaskName,
			&r.TaskDeadline,
			&r.TaskDescription,
			&r.CuratorEmail,
			&r.CuratorName,
			&r.RoleLabel,
			&r.StatusID,
			&r.StartedAt,
			&completed,
			&r.Text,
			&r.URL,
		); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		if completed.Valid {
			t := completed.Time
			r.CompletedAt = &t
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}
