package store

import (
	"context"

	"github.com/umtracker/umtracker-api/internal/domain"
)

// CatalogStore reads the reference tables.
type CatalogStore interface {
	// List returns every row of kind ordered by id.
	List(ctx context.Context, kind domain.CatalogKind) ([]domain.CatalogEntry, error)

	// Get returns one row. Returns ErrCatalogEntryNotFound for unknown ids.
	Get(ctx context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogEntry, error)
}
