package keywords

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brightpath/pathways-backend/internal/logger"
)

// Cache stores resolved keyword bundles by normalized field of study. The
// cache is an optimization, not a correctness mechanism: a miss or a racing
// double-computation is benign.
type Cache interface {
	Get(ctx context.Context, field string) (string, bool)
	Put(ctx context.Context, field, keywords string)
}

// NormalizeField collapses case and whitespace so "  Computer Science " and
// "computer science" share a cache entry.
func NormalizeField(field string) string {
	return strings.ToLower(strings.Join(strings.Fields(field), " "))
}

// MemoryCache is a process-lifetime append-only map. When maxEntries is
// exceeded new inserts are dropped rather than evicting older entries.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]string
	maxEntries int
}

func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]string),
		maxEntries: maxEntries,
	}
}

func (c *MemoryCache) Get(_ context.Context, field string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[NormalizeField(field)]
	return v, ok
}

func (c *MemoryCache) Put(_ context.Context, field, keywords string) {
	key := NormalizeField(field)
	if key == "" || keywords == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		return
	}
	c.entries[key] = keywords
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RedisCache shares resolved keywords across replicas. Unlike MemoryCache it
// may carry a TTL, since entries outlive any single process.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration, baseLog *logger.Logger) *RedisCache {
	return &RedisCache{
		rdb: rdb,
		ttl: ttl,
		log: baseLog.With("cache", "KeywordRedisCache"),
	}
}

func redisKey(field string) string {
	return "pathways:keywords:" + NormalizeField(field)
}

func (c *RedisCache) Get(ctx context.Context, field string) (string, bool) {
	val, err := c.rdb.Get(ctx, redisKey(field)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Keyword cache read failed", "error", err)
		}
		return "", false
	}
	return val, val != ""
}

func (c *RedisCache) Put(ctx context.Context, field, keywords string) {
	if NormalizeField(field) == "" || keywords == "" {
		return
	}
	if err := c.rdb.Set(ctx, redisKey(field), keywords, c.ttl).Err(); err != nil {
		c.log.Warn("Keyword cache write failed", "error", err)
	}
}
