package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/store"
)

type fakeRedis struct {
	data   map[string]string
	getErr error
	setErr error
	sets   int
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.sets++
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

type fakeCatalogs struct {
	entries map[domain.CatalogKind][]domain.CatalogEntry
	err     error
	calls   int
}

func (f *fakeCatalogs) List(_ context.Context, kind domain.CatalogKind) ([]domain.CatalogEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[kind], nil
}

func (f *fakeCatalogs) Get(context.Context, domain.CatalogKind, int64) (*domain.CatalogEntry, error) {
	return nil, errors.New("not used")
}

func newTestCache(r *fakeRedis, next *fakeCatalogs) *CatalogCache {
	return NewCatalogCache(next, r, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var roles = []domain.CatalogEntry{{ID: 1, Label: "Curator"}, {ID: 9, Label: "Admin"}}

func TestCatalogCache_MissPopulates(t *testing.T) {
	r := &fakeRedis{data: map[string]string{}}
	next := &fakeCatalogs{entries: map[domain.CatalogKind][]domain.CatalogEntry{domain.CatalogRoles: roles}}
	c := newTestCache(r, next)

	got, err := c.List(context.Background(), domain.CatalogRoles)
	require.NoError(t, err)
	assert.Equal(t, roles, got)
	assert.Equal(t, 1, r.sets)
	assert.Contains(t, r.data, "umtracker:catalog:roles")

	got, err = c.List(context.Background(), domain.CatalogRoles)
	require.NoError(t, err)
	assert.Equal(t, roles, got)
	assert.Equal(t, 1, next.calls, "second read is served from redis")
}

func TestCatalogCache_RedisDownFallsBack(t *testing.T) {
	r := &fakeRedis{data: map[string]string{}, getErr: errors.New("dial tcp: refused"), setErr: errors.New("refused")}
	next := &fakeCatalogs{entries: map[domain.CatalogKind][]domain.CatalogEntry{domain.CatalogRoles: roles}}

	got, err := newTestCache(r, next).List(context.Background(), domain.CatalogRoles)
	require.NoError(t, err)
	assert.Equal(t, roles, got)
}

func TestCatalogCache_CorruptEntryRefetched(t *testing.T) {
	r := &fakeRedis{data: map[string]string{"umtracker:catalog:roles": "{not json"}}
	next := &fakeCatalogs{entries: map[domain.CatalogKind][]domain.CatalogEntry{domain.CatalogRoles: roles}}

	got, err := newTestCache(r, next).List(context.Background(), domain.CatalogRoles)
	require.NoError(t, err)
	assert.Equal(t, roles, got)
	assert.Equal(t, 1, next.calls)
}

func TestCatalogCache_StoreErrorPropagates(t *testing.T) {
	r := &fakeRedis{data: map[string]string{}}
	next := &fakeCatalogs{err: errors.New("db down")}

	_, err := newTestCache(r, next).List(context.Background(), domain.CatalogSubjects)
	assert.EqualError(t, err, "db down")
	assert.Zero(t, r.sets)
}

func TestCatalogCache_Get(t *testing.T) {
	payload, err := json.Marshal(roles)
	require.NoError(t, err)
	r := &fakeRedis{data: map[string]string{"umtracker:catalog:roles": string(payload)}}
	c := newTestCache(r, &fakeCatalogs{})

	e, err := c.Get(context.Background(), domain.CatalogRoles, 9)
	require.NoError(t, err)
	assert.Equal(t, "Admin", e.Label)

	_, err = c.Get(context.Background(), domain.CatalogRoles, 5)
	assert.ErrorIs(t, err, store.ErrCatalogEntryNotFound)
}
