package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/umtracker/umtracker-api/internal/api/shared"
	"github.com/umtracker/umtracker-api/internal/platform/logger"
	"github.com/umtracker/umtracker-api/internal/service"
	"github.com/umtracker/umtracker-api/internal/service/auth"
	"github.com/umtracker/umtracker-api/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	curators         store.CuratorStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	logger           *slog.Logger
	now              func() time.Time
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	curators store.CuratorStore,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		curators:         curators,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		logger:           logger.With(slog.String("component", "auth_handler")),
		now:              time.Now,
	}
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	curator, err := h.curators.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrCuratorNotFound) {
			HandleAPIError(w, r, service.ErrInvalidCredentials, "")
			return
		}
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	if curator.PasswordHash == "" ||
		h.passwordVerifier.Compare(curator.PasswordHash, req.Password) != nil {
		log.Debug("password mismatch")
		HandleAPIError(w, r, service.ErrInvalidCredentials, "")
		return
	}

	h.issueTokens(w, r, curator.Email)
}

// RefreshToken handles POST /api/token/refresh. The refresh token is rotated.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	// The curator may have been removed since the token was issued.
	if _, err := h.curators.GetByEmail(r.Context(), claims.Email); err != nil {
		if errors.Is(err, store.ErrCuratorNotFound) {
			HandleAPIError(w, r, auth.ErrInvalidRefreshToken, "")
			return
		}
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	h.issueTokens(w, r, claims.Email)
}

func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, email string) {
	expiresAt := h.now().Add(h.jwtService.AccessTokenLifetime())

	access, err := h.jwtService.GenerateToken(r.Context(), email)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}
	refresh, err := h.jwtService.GenerateRefreshToken(r.Context(), email)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate refresh token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt.UTC().Format(time.RFC3339),
	})
}
