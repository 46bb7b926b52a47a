package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/umtracker/umtracker-api/internal/api/shared"
	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/policy"
	"github.com/umtracker/umtracker-api/internal/service"
	"github.com/umtracker/umtracker-api/internal/service/auth"
	"github.com/umtracker/umtracker-api/internal/store"
)

type fakeRecipientService struct {
	policy    policy.AssignmentPolicy
	resolveFn func(ctx context.Context, author *domain.Curator, sel service.RecipientSelector) ([]*domain.Curator, error)
}

func (f *fakeRecipientService) AssignmentPolicy(*domain.Curator) policy.AssignmentPolicy {
	return f.policy
}

func (f *fakeRecipientService) Resolve(ctx context.Context, author *domain.Curator, sel service.RecipientSelector) ([]*domain.Curator, error) {
	return f.resolveFn(ctx, author, sel)
}

type fakeAssignmentService struct {
	createFn func(ctx context.Context, author *domain.Curator, in service.NewTaskInput, sel service.RecipientSelector) (*service.CreationResult, error)
}

func (f *fakeAssignmentService) CreateTaskAndAssign(
	ctx context.Context,
	author *domain.Curator,
	in service.NewTaskInput,
	sel service.RecipientSelector,
) (*service.CreationResult, error) {
	return f.createFn(ctx, author, in, sel)
}

type fakeDashboardService struct {
	cardsFn  func(ctx context.Context, viewer *domain.Curator, f service.CardFilter) ([]domain.TaskCard, error)
	detailFn func(ctx context.Context, viewer *domain.Curator, taskID string) ([]service.TaskDetailRow, error)
	reportFn func(ctx context.Context, viewer *domain.Curator, taskID, email string) (*service.ReportView, error)
}

func (f *fakeDashboardService) TaskCards(ctx context.Context, viewer *domain.Curator, filter service.CardFilter) ([]domain.TaskCard, error) {
	return f.cardsFn(ctx, viewer, filter)
}

func (f *fakeDashboardService) TaskDetail(ctx context.Context, viewer *domain.Curator, taskID string) ([]service.TaskDetailRow, error) {
	return f.detailFn(ctx, viewer, taskID)
}

func (f *fakeDashboardService) ReportDetail(ctx context.Context, viewer *domain.Curator, taskID, email string) (*service.ReportView, error) {
	return f.reportFn(ctx, viewer, taskID, email)
}

type fakeCatalogService struct {
	entries map[domain.CatalogKind][]domain.CatalogEntry
	err     error
}

func (f *fakeCatalogService) List(_ context.Context, kind domain.CatalogKind) ([]domain.CatalogEntry, error) {
	return f.entries[kind], f.err
}

func (f *fakeCatalogService) ManagerRoles(context.Context) ([]domain.CatalogEntry, error) {
	return f.entries["managers"], f.err
}

type fakeCuratorStore struct {
	byEmail map[string]*domain.Curator
}

func (f *fakeCuratorStore) GetByEmail(_ context.Context, email string) (*domain.Curator, error) {
	if c, ok := f.byEmail[strings.ToLower(strings.TrimSpace(email))]; ok {
		return c, nil
	}
	return nil, store.ErrCuratorNotFound
}

func (f *fakeCuratorStore) ListInScope(context.Context, policy.Scope, store.RecipientFilter) ([]*domain.Curator, error) {
	return nil, nil
}

func (f *fakeCuratorStore) NamesByChatID(context.Context, []int64) (map[int64]string, error) {
	return nil, nil
}

func (f *fakeCuratorStore) WithTx(*sql.Tx) store.CuratorStore { return f }

// fakeJWT issues "access:<email>" and "refresh:<email>" tokens.
type fakeJWT struct{}

func (fakeJWT) GenerateToken(_ context.Context, email string) (string, error) {
	return "access:" + email, nil
}

func (fakeJWT) GenerateRefreshToken(_ context.Context, email string) (string, error) {
	return "refresh:" + email, nil
}

func (fakeJWT) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	if email, ok := strings.CutPrefix(token, "access:"); ok {
		return &auth.Claims{Email: email, TokenType: auth.TokenTypeAccess}, nil
	}
	return nil, auth.ErrInvalidToken
}

func (fakeJWT) ValidateRefreshToken(_ context.Context, token string) (*auth.Claims, error) {
	if email, ok := strings.CutPrefix(token, "refresh:"); ok {
		return &auth.Claims{Email: email, TokenType: auth.TokenTypeRefresh}, nil
	}
	if strings.HasPrefix(token, "access:") {
		return nil, auth.ErrWrongTokenType
	}
	return nil, auth.ErrInvalidRefreshToken
}

func (fakeJWT) AccessTokenLifetime() time.Duration { return time.Hour }

type fakeVerifier struct{}

func (fakeVerifier) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// serve routes req through a chi router so URL params resolve, with viewer
// injected as the authenticated curator when non-nil.
func serve(method, pattern string, h http.HandlerFunc, viewer *domain.Curator, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)
	if viewer != nil {
		req = req.WithContext(shared.WithCurator(req.Context(), viewer))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
