package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/platform/logger"
	"github.com/umtracker/umtracker-api/internal/store"
)

// prefixLockClass is the first key of the two-key advisory lock guarding a
// task id prefix. Subject locks use the single bigint key space, which does
// not overlap with two-key locks.
const prefixLockClass = 1

// PostgresTaskStore implements store.TaskStore.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store over db.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

// NextTaskID implements store.TaskStore.
//
// The subject lock serializes authors of one subject. The prefix lock
// serializes different subjects that map to the same prefix. Locks are always
// taken in that order.
func (s *PostgresTaskStore) NextTaskID(ctx context.Context, lockKey int64, prefix string) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, ok := s.db.(*sql.Tx); !ok {
		return "", store.ErrNoTransaction
	}

	if _, err := s.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
		log.Error("failed to take subject lock",
			slog.Int64("lock_key", lockKey),
			slog.String("error", err.Error()))
		return "", MapError(err)
	}
	if _, err := s.db.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock($1, hashtext($2))`, prefixLockClass, prefix); err != nil {
		log.Error("failed to take prefix lock",
			slog.String("prefix", prefix),
			slog.String("error", err.Error()))
		return "", MapError(err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM tasks WHERE id LIKE $1`, prefixPattern(prefix))
	if err != nil {
		log.Error("failed to scan task ids",
			slog.String("prefix", prefix),
			slog.String("error", err.Error()))
		return "", MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan task id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", MapError(err)
	}

	id := domain.FormatTaskID(prefix, domain.NextTaskSequence(prefix, ids))
	log.Debug("allocated task id",
		slog.String("task_id", id),
		slog.Int("existing", len(ids)))
	return id, nil
}

// Create implements store.TaskStore.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, deadline, name, description, report_template, author_email)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		task.ID,
		task.Deadline.UTC(),
		task.Name,
		task.Description,
		task.ReportTemplate,
		task.AuthorEmail,
	)
	if err != nil {
		err = MapError(err)
		if errors.Is(err, store.ErrTaskIDTaken) {
			log.Warn("task id collision", slog.String("task_id", task.ID))
			return err
		}
		log.Error("failed to create task",
			slog.String("task_id", task.ID),
			slog.String("error", err.Error()))
		return err
	}

	log.Debug("task created", slog.String("task_id", task.ID))
	return nil
}

// GetByID implements store.TaskStore.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	err := s.db.QueryRowContext(ctx, `
		SELECT id, deadline, name, description, report_template, author_email
		FROM tasks
		WHERE id = $1`, id).Scan(
		&t.ID,
		&t.Deadline,
		&t.Name,
		&t.Description,
		&t.ReportTemplate,
		&t.AuthorEmail,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			slog.String("task_id", id),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return &t, nil
}
