package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/platform/botclient"
	"github.com/umtracker/umtracker-api/internal/policy"
	"github.com/umtracker/umtracker-api/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTransactor runs fn without a database and fires after-commit hooks
// only when fn succeeds.
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) InTx(ctx context.Context, fn store.TxFn) error {
	f.calls++
	txCtx, hooks := store.BeginHookScope(ctx)
	if err := fn(txCtx, nil); err != nil {
		return err
	}
	hooks.Run(ctx)
	return nil
}

type fakeCuratorStore struct {
	listInScopeFn   func(ctx context.Context, scope policy.Scope, f store.RecipientFilter) ([]*domain.Curator, error)
	namesByChatIDFn func(ctx context.Context, ids []int64) (map[int64]string, error)
}

func (f *fakeCuratorStore) GetByEmail(context.Context, string) (*domain.Curator, error) {
	return nil, store.ErrCuratorNotFound
}

func (f *fakeCuratorStore) ListInScope(ctx context.Context, scope policy.Scope, filter store.RecipientFilter) ([]*domain.Curator, error) {
	return f.listInScopeFn(ctx, scope, filter)
}

func (f *fakeCuratorStore) NamesByChatID(ctx context.Context, ids []int64) (map[int64]string, error) {
	if f.namesByChatIDFn == nil {
		return map[int64]string{}, nil
	}
	return f.namesByChatIDFn(ctx, ids)
}

func (f *fakeCuratorStore) WithTx(*sql.Tx) store.CuratorStore { return f }

type fakeCatalogStore struct {
	entries map[domain.CatalogKind][]domain.CatalogEntry
}

func (f *fakeCatalogStore) List(_ context.Context, kind domain.CatalogKind) ([]domain.CatalogEntry, error) {
	return f.entries[kind], nil
}

func (f *fakeCatalogStore) Get(_ context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogEntry, error) {
	for _, e := range f.entries[kind] {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, store.ErrCatalogEntryNotFound
}

type fakeTaskStore struct {
	nextIDFn func(ctx context.Context, lockKey int64, prefix string) (string, error)
	createFn func(ctx context.Context, t *domain.Task) error
	getFn    func(ctx context.Context, id string) (*domain.Task, error)
	created  []*domain.Task
}

func (f *fakeTaskStore) NextTaskID(ctx context.Context, lockKey int64, prefix string) (string, error) {
	return f.nextIDFn(ctx, lockKey, prefix)
}

func (f *fakeTaskStore) Create(ctx context.Context, t *domain.Task) error {
	if f.createFn != nil {
		if err := f.createFn(ctx, t); err != nil {
			return err
		}
	}
	f.created = append(f.created, t)
	return nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return f.getFn(ctx, id)
}

func (f *fakeTaskStore) WithTx(*sql.Tx) store.TaskStore { return f }

type fakeAssignmentStore struct {
	nextID  int64
	created []*domain.Assignment
	flagsFn func(ctx context.Context, ids []string, visible policy.Scope) (map[string]store.AssignmentFlags, error)
}

func (f *fakeAssignmentStore) Create(_ context.Context, a *domain.Assignment) error {
	f.nextID++
	a.ID = f.nextID
	f.created = append(f.created, a)
	return nil
}

func (f *fakeAssignmentStore) Flags(ctx context.Context, ids []string, visible policy.Scope) (map[string]store.AssignmentFlags, error) {
	return f.flagsFn(ctx, ids, visible)
}

func (f *fakeAssignmentStore) WithTx(*sql.Tx) store.AssignmentStore { return f }

type fakeReportStore struct {
	created  []*domain.Report
	createFn func(ctx context.Context, reports []*domain.Report) (int, error)
	listFn   func(ctx context.Context, q store.ReportQuery) ([]domain.ReportRow, error)
}

func (f *fakeReportStore) CreateBatch(ctx context.Context, reports []*domain.Report) (int, error) {
	if f.createFn != nil {
		return f.createFn(ctx, reports)
	}
	f.created = append(f.created, reports...)
	return len(reports), nil
}

func (f *fakeReportStore) ListVisible(ctx context.Context, q store.ReportQuery) ([]domain.ReportRow, error) {
	return f.listFn(ctx, q)
}

func (f *fakeReportStore) WithTx(*sql.Tx) store.ReportStore { return f }

type fakeDeliveryLog struct {
	recorded []domain.AssignmentDelivery
	err      error
}

func (f *fakeDeliveryLog) Record(_ context.Context, _ string, items []domain.AssignmentDelivery) error {
	f.recorded = append(f.recorded, items...)
	return f.err
}

type fakeNotifier struct {
	available bool
	results   map[int64]botclient.SendResult
	sent      []int64
	pings     int
}

func (f *fakeNotifier) Ping(context.Context) bool {
	f.pings++
	return f.available
}

func (f *fakeNotifier) SendAssignment(_ context.Context, id int64) botclient.SendResult {
	f.sent = append(f.sent, id)
	if r, ok := f.results[id]; ok {
		return r
	}
	return botclient.SendResult{Status: domain.DeliverySent, HTTPStatus: 200}
}

func chatID(id int64) *int64 { return &id }
