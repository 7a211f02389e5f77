// Package toolutil provides shared helper functions for go_tube MCP tools.
package toolutil

import (
	"context"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

var videoIDRE = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/|live/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// VideoID accepts a bare id or any watch, shorts, embed or youtu.be URL.
func VideoID(s string) string {
	s = strings.TrimSpace(s)
	if m := videoIDRE.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// ChannelRef trims a channel reference down to a UC id or @handle when it
// is a channel URL; anything else passes through unchanged.
func ChannelRef(s string) string {
	s = strings.TrimSpace(s)
	for _, marker := range []string{"youtube.com/channel/", "youtube.com/"} {
		idx := strings.Index(s, marker)
		if idx < 0 {
			continue
		}
		rest := s[idx+len(marker):]
		if cut := strings.IndexAny(rest, "/?#"); cut >= 0 {
			rest = rest[:cut]
		}
		if strings.HasPrefix(rest, "UC") || strings.HasPrefix(rest, "@") {
			return rest
		}
	}
	return s
}

// CacheLoadJSON tries to load a cached value of type T from the engine cache.
func CacheLoadJSON[T any](ctx context.Context, key string) (T, bool) {
	return engine.CacheLoadJSON[T](ctx, key)
}

// CacheStoreJSON marshals v and stores it in the engine cache.
func CacheStoreJSON[T any](ctx context.Context, key string, v T) {
	engine.CacheStoreJSON(ctx, key, v)
}

// Cached returns the cached T for key, or runs fn and caches its result.
// Errors are never cached.
func Cached[T any](ctx context.Context, key string, fn func() (T, error)) (T, error) {
	return CachedIf(ctx, key, fn, nil)
}

// CachedIf is Cached with a filter: results for which keep returns false are
// returned but not stored. A nil keep stores every result.
func CachedIf[T any](ctx context.Context, key string, fn func() (T, error), keep func(T) bool) (T, error) {
	if out, ok := CacheLoadJSON[T](ctx, key); ok {
		return out, nil
	}
	out, err := fn()
	if err != nil {
		return out, err
	}
	if keep == nil || keep(out) {
		CacheStoreJSON(ctx, key, out)
	}
	return out, nil
}
