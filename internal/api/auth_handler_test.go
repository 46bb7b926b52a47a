package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umtracker/umtracker-api/internal/domain"
)

func newTestAuthHandler() *AuthHandler {
	curators := &fakeCuratorStore{byEmail: map[string]*domain.Curator{
		"ann@example.com":    {Email: "ann@example.com", PasswordHash: "hash:correct horse"},
		"nopass@example.com": {Email: "nopass@example.com"},
	}}
	h := NewAuthHandler(curators, fakeJWT{}, fakeVerifier{}, nil)
	h.now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) }
	return h
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantErr    string
	}{
		{"malformed", `{"email":`, http.StatusBadRequest, "Invalid request format"},
		{"invalid email", `{"email":"ann","password":"x"}`, http.StatusBadRequest, "Invalid email"},
		{"missing password", `{"email":"ann@example.com"}`, http.StatusBadRequest, "Invalid password"},
		{"unknown curator", `{"email":"ghost@example.com","password":"x"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"wrong password", `{"email":"ann@example.com","password":"battery"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"no password set", `{"email":"nopass@example.com","password":"x"}`, http.StatusUnauthorized, "Invalid credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestAuthHandler().Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantErr)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestAuthHandler().Login(rec, httptest.NewRequest(http.MethodPost, "/api/login",
		strings.NewReader(`{"email":"Ann@Example.com","password":"correct horse"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var body TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "access:ann@example.com", body.AccessToken)
	assert.Equal(t, "refresh:ann@example.com", body.RefreshToken)
	assert.Equal(t, "2026-01-01T13:00:00Z", body.ExpiresAt)
}

func TestRefreshToken(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"missing token", `{}`, http.StatusBadRequest, "Invalid RefreshToken"},
		{"garbage", `{"refresh_token":"nope"}`, http.StatusUnauthorized, "Invalid refresh token"},
		{"access token used", `{"refresh_token":"access:ann@example.com"}`, http.StatusUnauthorized, "Invalid refresh token"},
		{"curator removed", `{"refresh_token":"refresh:ghost@example.com"}`, http.StatusUnauthorized, "Invalid refresh token"},
		{"rotated", `{"refresh_token":"refresh:ann@example.com"}`, http.StatusOK, `"refresh_token":"refresh:ann@example.com"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestAuthHandler().RefreshToken(rec,
				httptest.NewRequest(http.MethodPost, "/api/token/refresh", strings.NewReader(tt.body)))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
