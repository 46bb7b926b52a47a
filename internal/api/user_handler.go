package api

import (
	"net/http"

	"github.com/umtracker/umtracker-api/internal/api/shared"
)

// Me handles GET /api/users/me.
func Me(w http.ResponseWriter, r *http.Request) {
	curator, ok := curatorOrUnauthorized(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newProfileResponse(curator))
}
