package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umtracker/umtracker-api/internal/config"
	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/policy"
	"github.com/umtracker/umtracker-api/internal/service"
	"github.com/umtracker/umtracker-api/internal/service/auth"
	"github.com/umtracker/umtracker-api/internal/store"
)

type routerCurators struct {
	byEmail map[string]*domain.Curator
}

func (s *routerCurators) GetByEmail(_ context.Context, email string) (*domain.Curator, error) {
	if c, ok := s.byEmail[email]; ok {
		return c, nil
	}
	return nil, store.ErrCuratorNotFound
}

func (s *routerCurators) ListInScope(context.Context, policy.Scope, store.RecipientFilter) ([]*domain.Curator, error) {
	return nil, nil
}

func (s *routerCurators) NamesByChatID(context.Context, []int64) (map[int64]string, error) {
	return map[int64]string{}, nil
}

func (s *routerCurators) WithTx(*sql.Tx) store.CuratorStore { return s }

type routerCatalogs struct {
	listed []domain.CatalogKind
}

func (s *routerCatalogs) List(_ context.Context, kind domain.CatalogKind) ([]domain.CatalogEntry, error) {
	s.listed = append(s.listed, kind)
	return []domain.CatalogEntry{{ID: 1, Label: string(kind)}}, nil
}

func (s *routerCatalogs) ManagerRoles(context.Context) ([]domain.CatalogEntry, error) {
	return []domain.CatalogEntry{{ID: 4, Label: "manager"}}, nil
}

type routerDashboard struct {
	filter      service.CardFilter
	detailID    string
	reportID    string
	reportEmail string
}

func (s *routerDashboard) TaskCards(_ context.Context, _ *domain.Curator, f service.CardFilter) ([]domain.TaskCard, error) {
	s.filter = f
	return []domain.TaskCard{{ID: "mat-1", Title: "Weekly"}}, nil
}

func (s *routerDashboard) TaskDetail(_ context.Context, _ *domain.Curator, taskID string) ([]service.TaskDetailRow, error) {
	s.detailID = taskID
	return []service.TaskDetailRow{{Email: "ann@example.com"}}, nil
}

func (s *routerDashboard) ReportDetail(_ context.Context, _ *domain.Curator, taskID, email string) (*service.ReportView, error) {
	s.reportID, s.reportEmail = taskID, email
	return &service.ReportView{ReportID: 3, Curator: "Ann", Task: "Weekly"}, nil
}

type routerFixture struct {
	handler   http.Handler
	jwt       auth.JWTService
	catalogs  *routerCatalogs
	dashboard *routerDashboard
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:                   strings.Repeat("s", 32),
			TokenLifetimeMinutes:        60,
			RefreshTokenLifetimeMinutes: 120,
		},
		OTel: config.OTelConfig{ServiceName: "umtracker-api"},
	}
	jwtService, err := auth.NewJWTService(cfg.Auth)
	require.NoError(t, err)

	hash, err := auth.HashPassword("secret", 4)
	require.NoError(t, err)

	f := &routerFixture{
		jwt:       jwtService,
		catalogs:  &routerCatalogs{},
		dashboard: &routerDashboard{},
	}
	app := &application{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		curatorStore: &routerCurators{byEmail: map[string]*domain.Curator{
			"ann@example.com": {Email: "ann@example.com", Name: "Ann", RoleID: 9, Confirmed: true, PasswordHash: hash},
			"new@example.com": {Email: "new@example.com", Name: "New", RoleID: 1},
		}},
		jwtService:       jwtService,
		passwordVerifier: auth.NewBcryptVerifier(),
		catalogService:   f.catalogs,
		dashboardService: f.dashboard,
	}
	f.handler = app.setupRouter()
	return f
}

func (f *routerFixture) do(t *testing.T, method, path, email, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if email != "" {
		token, err := f.jwt.GenerateToken(context.Background(), email)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_Login(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/login/", "", `{"email":"ann@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])

	rec = f.do(t, http.MethodPost, "/api/login", "", `{"email":"ann@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Catalogs(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/catalogs/subjects/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []domain.CatalogKind{domain.CatalogSubjects}, f.catalogs.listed)

	rec = f.do(t, http.MethodGet, "/api/catalogs/roles/managers", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "manager")

	rec = f.do(t, http.MethodGet, "/api/catalogs/planets", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Me(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unconfirmed curators may still read their profile.
	rec = f.do(t, http.MethodGet, "/api/users/me/", "new@example.com", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"new@example.com"`)
}

func TestRouter_Tasks(t *testing.T) {
	t.Run("requires token", func(t *testing.T) {
		f := newRouterFixture(t)
		rec := f.do(t, http.MethodGet, "/api/tasks/", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("requires confirmed profile", func(t *testing.T) {
		f := newRouterFixture(t)
		rec := f.do(t, http.MethodGet, "/api/tasks/", "new@example.com", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("cards", func(t *testing.T) {
		f := newRouterFixture(t)
		rec := f.do(t, http.MethodGet, "/api/tasks/?scope=group&subject_id=2&q=week", "ann@example.com", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, service.CardFilter{Scope: domain.ScopeGroup, SubjectID: 2, Query: "week"}, f.dashboard.filter)
		assert.Contains(t, rec.Body.String(), `"id":"mat-1"`)
	})

	t.Run("detail", func(t *testing.T) {
		f := newRouterFixture(t)
		rec := f.do(t, http.MethodGet, "/api/tasks/mat-1/", "ann@example.com", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "mat-1", f.dashboard.detailID)
	})

	t.Run("report detail wins over task detail", func(t *testing.T) {
		f := newRouterFixture(t)
		rec := f.do(t, http.MethodGet, "/api/tasks/reports/mat-1/ann@example.com/", "ann@example.com", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "mat-1", f.dashboard.reportID)
		assert.Equal(t, "ann@example.com", f.dashboard.reportEmail)
		assert.Empty(t, f.dashboard.detailID)
	})
}
