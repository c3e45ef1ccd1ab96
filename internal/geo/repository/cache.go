package repository

import (
	"context"
	"strconv"
	"time"

	"geoatlas/internal/common/cache"
	"geoatlas/internal/geo/domain"
)

const (
	entityKeyPrefix = "geo:"

	defaultEntityCacheTTL      = 30 * time.Minute
	defaultEntityCacheEmptyTTL = 5 * time.Minute
)

// CacheTTL configures the read-through cache for by-id lookups.
type CacheTTL struct {
	TTL      time.Duration `yaml:"ttl"`
	EmptyTTL time.Duration `yaml:"emptyTTL"`
}

func (c CacheTTL) withDefaults() CacheTTL {
	if c.TTL <= 0 {
		c.TTL = defaultEntityCacheTTL
	}
	if c.EmptyTTL <= 0 {
		c.EmptyTTL = defaultEntityCacheEmptyTTL
	}
	return c
}

func entityKey(kind domain.Kind, id int64) string {
	return entityKeyPrefix + kind.String() + ":" + strconv.FormatInt(id, 10)
}

// recordCache wraps a cache.Cache with entity keys. A nil client disables it.
type recordCache struct {
	client cache.Cache
	ttl    CacheTTL
}

func newRecordCache(client cache.Cache, ttl CacheTTL) *recordCache {
	if client == nil {
		return nil
	}
	return &recordCache{client: client, ttl: ttl.withDefaults()}
}

func (c *recordCache) get(ctx context.Context, kind domain.Kind, id int64, load func(context.Context) (*entityRecord, error)) (*entityRecord, error) {
	if c == nil {
		return load(ctx)
	}
	return cache.GetWithCached[*entityRecord](
		ctx,
		c.client,
		entityKey(kind, id),
		cache.JitterTTL(c.ttl.TTL),
		cache.JitterTTL(c.ttl.EmptyTTL),
		func(rec *entityRecord) bool { return rec == nil },
		marshalRecord,
		unmarshalRecord,
		load,
	)
}

func (c *recordCache) invalidate(ctx context.Context, keys []string) error {
	if c == nil {
		return nil
	}
	return cache.Invalidate(ctx, c.client, keys...)
}
