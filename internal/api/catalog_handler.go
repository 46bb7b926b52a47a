package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/umtracker/umtracker-api/internal/api/shared"
	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/service"
)

// CatalogHandler serves the public reference tables.
type CatalogHandler struct {
	catalogs service.CatalogService
	logger   *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(catalogs service.CatalogService, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogHandler{
		catalogs: catalogs,
		logger:   logger.With(slog.String("component", "catalog_handler")),
	}
}

// List handles GET /api/catalogs/{kind}.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	kind := domain.CatalogKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		shared.RespondWithError(w, r, http.StatusNotFound, "Unknown catalog")
		return
	}
	entries, err := h.catalogs.List(r.Context(), kind)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load catalog")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}

// ManagerRoles handles GET /api/catalogs/roles/managers.
func (h *CatalogHandler) ManagerRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.catalogs.ManagerRoles(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load roles")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, roles)
}
