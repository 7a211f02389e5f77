package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache provides 2-tier caching: L1 in-memory LRU + an optional L2 store
// (Redis, or a local sqlite file when no Redis is configured).
// L1 is fast but lost on restart. L2 survives restarts.
var toolCache *tieredCache

var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

// l2Store is the persistent tier. Implementations own their expiry.
type l2Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Purge(ctx context.Context) error
	Name() string
}

type tieredCache struct {
	l1              *lru.Cache[string, cacheEntry]
	l2              l2Store // nil if no L2 configured or reachable
	ttl             time.Duration
	cleanupInterval time.Duration
	stop            chan struct{}
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// CacheOptions configures InitCache.
type CacheOptions struct {
	RedisURL        string // takes precedence over SQLitePath
	SQLitePath      string // empty = no sqlite L2
	TTL             time.Duration
	MaxEntries      int
	CleanupInterval time.Duration
}

// InitCache sets up the 2-tier cache. Call after Init(). A previous cache's
// cleanup goroutine is stopped.
func InitCache(o CacheOptions) {
	if o.TTL <= 0 {
		o.TTL = 15 * time.Minute
	}
	if o.MaxEntries <= 0 {
		o.MaxEntries = 1000
	}
	l1, err := lru.New[string, cacheEntry](o.MaxEntries)
	if err != nil {
		slog.Warn("cache: L1 init failed, caching disabled", slog.Any("error", err))
		return
	}
	c := &tieredCache{l1: l1, ttl: o.TTL, cleanupInterval: o.CleanupInterval, stop: make(chan struct{})}

	switch {
	case o.RedisURL != "":
		if s, err := newRedisStore(o.RedisURL); err != nil {
			slog.Warn("cache: redis unavailable, L2 disabled", slog.Any("error", err))
		} else {
			c.l2 = s
		}
	case o.SQLitePath != "":
		if s, err := newSQLiteStore(o.SQLitePath); err != nil {
			slog.Warn("cache: sqlite unavailable, L2 disabled", slog.Any("error", err))
		} else {
			c.l2 = s
		}
	}

	if prev := toolCache; prev != nil {
		close(prev.stop)
	}
	toolCache = c
	l2 := "none"
	if c.l2 != nil {
		l2 = c.l2.Name()
	}
	slog.Info("cache: initialized", slog.Duration("ttl", o.TTL), slog.String("l2", l2), slog.Int("max_entries", o.MaxEntries))

	go c.cleanupLoop()
}

// CacheKey builds a deterministic cache key from parts.
func CacheKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("gs:%x", hash[:12]) // 24-char hex prefix
}

// CacheGet tries L1, then L2. On L2 hit, populates L1.
func CacheGet(ctx context.Context, key string) ([]byte, bool) {
	c := toolCache
	if c == nil {
		cacheMisses.Add(1)
		return nil, false
	}

	if entry, ok := c.l1.Get(key); ok {
		if time.Now().Before(entry.expiresAt) {
			slog.Debug("cache: L1 hit", slog.String("key", key))
			cacheHits.Add(1)
			return entry.data, true
		}
		c.l1.Remove(key)
	}

	if c.l2 != nil {
		if data, ok := c.l2.Get(ctx, key); ok {
			slog.Debug("cache: L2 hit", slog.String("key", key), slog.String("store", c.l2.Name()))
			cacheHits.Add(1)
			c.l1.Add(key, cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)})
			return data, true
		}
	}

	cacheMisses.Add(1)
	return nil, false
}

// CacheSet stores data in both tiers.
func CacheSet(ctx context.Context, key string, data []byte) {
	c := toolCache
	if c == nil {
		return
	}
	c.l1.Add(key, cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)})
	if c.l2 != nil {
		if err := c.l2.Set(ctx, key, data, c.ttl); err != nil {
			slog.Debug("cache: L2 set failed", slog.String("store", c.l2.Name()), slog.Any("error", err))
		}
	}
}

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// CacheLoadJSON tries to load a cached value of type T.
// Returns the decoded value and true on hit; zero value and false on miss or decode error.
func CacheLoadJSON[T any](ctx context.Context, key string) (T, bool) {
	var out T
	data, ok := CacheGet(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// CacheStoreJSON marshals v and stores it in the cache.
func CacheStoreJSON[T any](ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	CacheSet(ctx, key, data)
}

// cleanupLoop periodically removes expired L1 entries and purges the L2
// store (a no-op for Redis, which expires keys itself).
func (c *tieredCache) cleanupLoop() {
	interval := c.cleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.purgeExpired()
		}
	}
}

func (c *tieredCache) purgeExpired() {
	now := time.Now()
	for _, key := range c.l1.Keys() {
		if entry, ok := c.l1.Peek(key); ok && now.After(entry.expiresAt) {
			c.l1.Remove(key)
		}
	}
	if c.l2 != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.l2.Purge(ctx); err != nil {
			slog.Debug("cache: L2 purge failed", slog.String("store", c.l2.Name()), slog.Any("error", err))
		}
	}
}
