package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/platform/logger"
	"github.com/umtracker/umtracker-api/internal/store"
)

// PostgresDeliveryLogStore implements store.DeliveryLogStore.
type PostgresDeliveryLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeliveryLogStore creates a delivery log store over db.
func NewPostgresDeliveryLogStore(db store.DBTX, logger *slog.Logger) *PostgresDeliveryLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDeliveryLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "delivery_log_store")),
	}
}

var _ store.DeliveryLogStore = (*PostgresDeliveryLogStore)(nil)

// Record implements store.DeliveryLogStore.
func (s *PostgresDeliveryLogStore) Record(ctx context.Context, taskID string, items []domain.AssignmentDelivery) error {
	for _, it := range items {
		undelivered := it.UndeliveredIDs
		if undelivered == nil {
			undelivered = []int64{}
		}
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO delivery_log (id, assignment_id, task_id, status, error, undelivered)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`,
			uuid.New(),
			it.AssignmentID,
			taskID,
			string(it.Status),
			it.Error,
			undelivered,
		)
		if err != nil {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to record delivery",
				slog.String("task_id", taskID),
				slog.Int64("assignment_id", it.AssignmentID),
				slog.String("error", err.Error()))
			return MapError(err)
		}
	}
	return nil
}
