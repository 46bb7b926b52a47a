// Package cache provides a Redis read-through cache for the catalog tables.
// Catalogs change only through migrations, so entries expire on a TTL and
// are never invalidated explicitly. Redis failures degrade to the backing
// store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/platform/logger"
	"github.com/umtracker/umtracker-api/internal/store"
)

const keyPrefix = "umtracker:catalog:"

// redisClient is the subset of *redis.Client the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CatalogCache decorates a store.CatalogStore with Redis.
type CatalogCache struct {
	next   store.CatalogStore
	client redisClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ store.CatalogStore = (*CatalogCache)(nil)

// NewCatalogCache wraps next. client is usually a *redis.Client.
func NewCatalogCache(next store.CatalogStore, client redisClient, ttl time.Duration, logger *slog.Logger) *CatalogCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogCache{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "catalog_cache")),
	}
}

// NewRedisClient parses url and returns a client for it.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

func key(kind domain.CatalogKind) string {
	return keyPrefix + string(kind)
}

// List implements store.CatalogStore.
func (c *CatalogCache) List(ctx context.Context, kind domain.CatalogKind) ([]domain.CatalogEntry, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	raw, err := c.client.Get(ctx, key(kind)).Bytes()
	switch {
	case err == nil:
		var entries []domain.CatalogEntry
		if jsonErr := json.Unmarshal(raw, &entries); jsonErr == nil {
			return entries, nil
		}
		log.Warn("discarding corrupt catalog cache entry", slog.String("catalog", string(kind)))
	case errors.Is(err, redis.Nil):
	default:
		log.Warn("catalog cache unavailable",
			slog.String("catalog", string(kind)),
			slog.String("error", err.Error()))
	}

	entries, err := c.next.List(ctx, kind)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return entries, nil
	}
	if err := c.client.Set(ctx, key(kind), payload, c.ttl).Err(); err != nil {
		log.Warn("failed to populate catalog cache",
			slog.String("catalog", string(kind)),
			slog.String("error", err.Error()))
	}
	return entries, nil
}

// Get implements store.CatalogStore by scanning the cached list.
func (c *CatalogCache) Get(ctx context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogEntry, error) {
	entries, err := c.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			e := entries[i]
			return &e, nil
		}
	}
	return nil, store.ErrCatalogEntryNotFound
}
