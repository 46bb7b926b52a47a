// Package middleware holds the HTTP middleware of the API: request tracing,
// bearer authentication and the confirmed-profile gate.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/umtracker/umtracker-api/internal/api/shared"
	"github.com/umtracker/umtracker-api/internal/platform/logger"
	"github.com/umtracker/umtracker-api/internal/redact"
	"github.com/umtracker/umtracker-api/internal/service/auth"
	"github.com/umtracker/umtracker-api/internal/store"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
	curators   store.CuratorStore
	logger     *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, curators store.CuratorStore, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		curators:   curators,
		logger:     logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate validates the bearer token and loads the curator it names
// into the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), m.logger)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || strings.TrimSpace(token) == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), strings.TrimSpace(token))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrWrongTokenType):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				log.Error("failed to validate token", slog.String("error", redact.Error(err)))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		curator, err := m.curators.GetByEmail(r.Context(), claims.Email)
		if err != nil {
			if errors.Is(err, store.ErrCuratorNotFound) {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "User not found")
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}

		ctx := shared.WithCurator(r.Context(), curator)
		ctx = logger.WithLogger(ctx, log.With(slog.String("curator", curator.Email)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireConfirmed rejects curators whose profile is not confirmed yet. It
// must run after Authenticate.
func RequireConfirmed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		curator, ok := shared.CuratorFromContext(r.Context())
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !curator.Confirmed {
			shared.RespondWithError(w, r, http.StatusForbidden, "Your profile is not confirmed")
			return
		}
		next.ServeHTTP(w, r)
	})
}
