package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		k1 := CacheKey("youtube_video", "dQw4w9WgXcQ")
		k2 := CacheKey("youtube_video", "dQw4w9WgXcQ")
		if k1 != k2 {
			t.Errorf("CacheKey not deterministic: %q != %q", k1, k2)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		k1 := CacheKey("youtube_channel", "@golang")
		k2 := CacheKey("youtube_channel", "@rustlang")
		if k1 == k2 {
			t.Errorf("different inputs produced same key: %q", k1)
		}
	})

	t.Run("has prefix", func(t *testing.T) {
		k := CacheKey("test")
		if k[:3] != "gs:" {
			t.Errorf("expected gs: prefix, got %q", k[:3])
		}
	})
}

func TestCacheGetSet(t *testing.T) {
	InitCache(CacheOptions{TTL: time.Minute, MaxEntries: 100})

	ctx := context.Background()
	key := CacheKey("test", "round-trip")

	if _, ok := CacheGet(ctx, key); ok {
		t.Error("expected cache miss on empty cache")
	}

	CacheSet(ctx, key, []byte("hello"))

	got, ok := CacheGet(ctx, key)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestCacheExpiration(t *testing.T) {
	InitCache(CacheOptions{TTL: time.Millisecond, MaxEntries: 100})

	ctx := context.Background()
	key := CacheKey("test", "expiry")

	CacheSet(ctx, key, []byte("temp"))
	time.Sleep(5 * time.Millisecond)

	if _, ok := CacheGet(ctx, key); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestCacheEviction(t *testing.T) {
	InitCache(CacheOptions{TTL: time.Minute, MaxEntries: 3})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		CacheSet(ctx, CacheKey("evict", fmt.Sprintf("item-%d", i)), []byte(fmt.Sprintf("v%d", i)))
	}

	if n := toolCache.l1.Len(); n > 3 {
		t.Errorf("expected at most 3 entries after eviction, got %d", n)
	}
	if _, ok := CacheGet(ctx, CacheKey("evict", "item-4")); !ok {
		t.Error("most recent entry was evicted")
	}
}

func TestCacheJSON(t *testing.T) {
	InitCache(CacheOptions{TTL: time.Minute, MaxEntries: 10})
	ctx := context.Background()

	type out struct {
		Title string `json:"title"`
		Views int64  `json:"views"`
	}
	key := CacheKey("json", "v1")
	CacheStoreJSON(ctx, key, out{Title: "One", Views: 42})

	got, ok := CacheLoadJSON[out](ctx, key)
	if !ok {
		t.Fatal("expected JSON hit")
	}
	if got.Title != "One" || got.Views != 42 {
		t.Errorf("got %+v", got)
	}

	CacheSet(ctx, CacheKey("json", "bad"), []byte("{not json"))
	if _, ok := CacheLoadJSON[out](ctx, CacheKey("json", "bad")); ok {
		t.Error("corrupt entry should read as a miss")
	}
}

func TestCacheSQLiteSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "tube.db")
	ctx := context.Background()
	key := CacheKey("sqlite", "persist")

	InitCache(CacheOptions{SQLitePath: path, TTL: time.Minute, MaxEntries: 10})
	if toolCache.l2 == nil {
		t.Fatal("sqlite L2 not configured")
	}
	CacheSet(ctx, key, []byte("kept"))

	// A fresh cache has an empty L1; the hit must come from sqlite.
	InitCache(CacheOptions{SQLitePath: path, TTL: time.Minute, MaxEntries: 10})
	got, ok := CacheGet(ctx, key)
	if !ok || string(got) != "kept" {
		t.Fatalf("CacheGet after restart = %q, %v", got, ok)
	}
	if _, ok := toolCache.l1.Peek(key); !ok {
		t.Error("L2 hit should populate L1")
	}
}

func TestCacheSQLitePurge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tube.db")
	ctx := context.Background()

	InitCache(CacheOptions{SQLitePath: path, TTL: time.Millisecond, MaxEntries: 10})
	key := CacheKey("sqlite", "short")
	CacheSet(ctx, key, []byte("gone soon"))
	time.Sleep(5 * time.Millisecond)

	toolCache.purgeExpired()

	store := toolCache.l2.(*sqliteStore)
	var n int
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("rows after purge = %d, want 0", n)
	}
	if toolCache.l1.Len() != 0 {
		t.Errorf("L1 entries after purge = %d, want 0", toolCache.l1.Len())
	}
}

func TestCacheStats(t *testing.T) {
	InitCache(CacheOptions{TTL: time.Minute, MaxEntries: 100})
	cacheHits.Store(0)
	cacheMisses.Store(0)

	ctx := context.Background()
	key := CacheKey("stats", "test")

	CacheGet(ctx, key)
	_, misses := CacheStats()
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}

	CacheSet(ctx, key, []byte("x"))
	CacheGet(ctx, key)

	hits, misses := CacheStats()
	if hits != 1 {
		t.Errorf("hits = %d, want 1", hits)
	}
	if misses != 1 {
		t.Errorf("misses = %d, want 1", misses)
	}
}
