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

// PostgresCatalogStore implements store.CatalogStore.
type PostgresCatalogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCatalogStore creates a catalog store over db.
func NewPostgresCatalogStore(db store.DBTX, logger *slog.Logger) *PostgresCatalogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCatalogStore{
		db:     db,
		logger: logger.With(slog.String("component", "catalog_store")),
	}
}

var _ store.CatalogStore = (*PostgresCatalogStore)(nil)

func catalogTable(kind domain.CatalogKind) (string, error) {
	switch kind {
	case domain.CatalogRoles:
		return "roles", nil
	case domain.CatalogSubjects:
		return "subjects", nil
	case domain.CatalogDepartments:
		return "departments", nil
	case domain.CatalogStatuses:
		return "statuses", nil
	}
	return "", fmt.Errorf("%w: unknown catalog %q", store.ErrInvalidEntity, kind)
}

// List implements store.CatalogStore.
func (s *PostgresCatalogStore) List(ctx context.Context, kind domain.CatalogKind) ([]domain.CatalogEntry, error) {
	table, err := catalogTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, label FROM `+table+` ORDER BY id`)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list catalog",
			slog.String("catalog", string(kind)),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	entries := []domain.CatalogEntry{}
	for rows.Next() {
		var e domain.CatalogEntry
		if err := rows.Scan(&e.ID, &e.Label); err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, MapError(rows.Err())
}

// Get implements store.CatalogStore.
func (s *PostgresCatalogStore) Get(ctx context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogEntry, error) {
	table, err := catalogTable(kind)
	if err != nil {
		return nil, err
	}

	var e domain.CatalogEntry
	err = s.db.QueryRowContext(ctx, `SELECT id, label FROM `+table+` WHERE id = $1`, id).Scan(&e.ID, &e.Label)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCatalogEntryNotFound
		}
		return nil, MapError(err)
	}
	return &e, nil
}
