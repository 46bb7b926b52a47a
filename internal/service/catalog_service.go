package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/policy"
	"github.com/umtracker/umtracker-api/internal/store"
)

// CatalogService serves the reference tables.
type CatalogService interface {
	// List returns every entry of kind ordered by id.
	List(ctx context.Context, kind domain.CatalogKind) ([]domain.CatalogEntry, error)

	// ManagerRoles lists the roles offered at manager registration.
	ManagerRoles(ctx context.Context) ([]domain.CatalogEntry, error)
}

type catalogServiceImpl struct {
	catalogs store.CatalogStore
	engine   *policy.Engine
	logger   *slog.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(catalogs store.CatalogStore, engine *policy.Engine, logger *slog.Logger) (CatalogService, error) {
	if catalogs == nil {
		return nil, fmt.Errorf("%w: catalogs cannot be nil", domain.ErrValidation)
	}
	if engine == nil {
		return nil, fmt.Errorf("%w: engine cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &catalogServiceImpl{
		catalogs: catalogs,
		engine:   engine,
		logger:   logger.With(slog.String("component", "catalog_service")),
	}, nil
}

func (s *catalogServiceImpl) List(ctx context.Context, kind domain.CatalogKind) ([]domain.CatalogEntry, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown catalog %q", domain.ErrValidation, kind)
	}
	return s.catalogs.List(ctx, kind)
}

func (s *catalogServiceImpl) ManagerRoles(ctx context.Context) ([]domain.CatalogEntry, error) {
	roles, err := s.catalogs.List(ctx, domain.CatalogRoles)
	if err != nil {
		return nil, err
	}
	allowed := s.engine.ManagerRoleIDs()
	out := make([]domain.CatalogEntry, 0, len(allowed))
	for _, r := range roles {
		if slices.Contains(allowed, r.ID) {
			out = append(out, r)
		}
	}
	return out, nil
}
