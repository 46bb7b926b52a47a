package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/umtracker/umtracker-api/internal/api/shared"
	"github.com/umtracker/umtracker-api/internal/domain"
)

// curatorOrUnauthorized returns the authenticated curator, writing a 401 when
// the authentication middleware did not run.
func curatorOrUnauthorized(w http.ResponseWriter, r *http.Request) (*domain.Curator, bool) {
	c, ok := shared.CuratorFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	return c, true
}

// queryInt parses an optional integer. ok is false only for a present but
// malformed value.
func queryInt(r *http.Request, name string) (v int64, ok bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// queryIntList parses a comma-separated integer list. Any malformed element
// discards the whole list.
func queryIntList(r *http.Request, name string) []int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil
		}
		out = append(out, n)
	}
	return out
}

// queryStringList parses a comma-separated list, dropping blanks.
func queryStringList(r *http.Request, name string) []string {
	var out []string
	for _, part := range strings.Split(r.URL.Query().Get(name), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
