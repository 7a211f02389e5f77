package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	ItemRequests            atomic.Int64
	CollectionRequests      atomic.Int64
	PageRequests            atomic.Int64
	SearchRequests          atomic.Int64
	InnertubeCalls          atomic.Int64
	InnertubeErrors         atomic.Int64
	PageScrapes             atomic.Int64
	DetailFailures          atomic.Int64
	ShapeMismatches         atomic.Int64
	ListingPages            atomic.Int64
	DiscoveryMisses         atomic.Int64
	DiscoveryStrategyErrors atomic.Int64
}

// discoveryHits counts successful discoveries per strategy name.
var discoveryHits sync.Map // string → *atomic.Int64

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	m := map[string]int64{
		"item_requests":             metrics.ItemRequests.Load(),
		"collection_requests":       metrics.CollectionRequests.Load(),
		"page_requests":             metrics.PageRequests.Load(),
		"search_requests":           metrics.SearchRequests.Load(),
		"innertube_calls":           metrics.InnertubeCalls.Load(),
		"innertube_errors":          metrics.InnertubeErrors.Load(),
		"page_scrapes":              metrics.PageScrapes.Load(),
		"detail_failures":           metrics.DetailFailures.Load(),
		"shape_mismatches":          metrics.ShapeMismatches.Load(),
		"listing_pages":             metrics.ListingPages.Load(),
		"discovery_misses":          metrics.DiscoveryMisses.Load(),
		"discovery_strategy_errors": metrics.DiscoveryStrategyErrors.Load(),
		"cache_hits":                hits,
		"cache_misses":              misses,
	}
	discoveryHits.Range(func(k, v any) bool {
		m["discovery_hits_"+k.(string)] = v.(*atomic.Int64).Load()
		return true
	})
	return m
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"item_requests", "collection_requests", "page_requests", "search_requests",
		"innertube_calls", "innertube_errors", "page_scrapes",
		"detail_failures", "shape_mismatches", "listing_pages",
		"discovery_misses", "discovery_strategy_errors",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
		delete(m, k)
	}
	// per-strategy counters, whatever names were registered
	for k, v := range m {
		fmt.Fprintf(&sb, "%s %d\n", k, v)
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrItemRequests()            { metrics.ItemRequests.Add(1) }
func IncrCollectionRequests()      { metrics.CollectionRequests.Add(1) }
func IncrPageRequests()            { metrics.PageRequests.Add(1) }
func IncrSearchRequests()          { metrics.SearchRequests.Add(1) }
func IncrInnertubeCalls()          { metrics.InnertubeCalls.Add(1) }
func IncrInnertubeErrors()         { metrics.InnertubeErrors.Add(1) }
func IncrPageScrapes()             { metrics.PageScrapes.Add(1) }
func IncrDetailFailures()          { metrics.DetailFailures.Add(1) }
func IncrShapeMismatches()         { metrics.ShapeMismatches.Add(1) }
func IncrListingPages()            { metrics.ListingPages.Add(1) }
func IncrDiscoveryMisses()         { metrics.DiscoveryMisses.Add(1) }
func IncrDiscoveryStrategyErrors() { metrics.DiscoveryStrategyErrors.Add(1) }

// IncrDiscoveryHit counts a discovery answered by the named strategy.
func IncrDiscoveryHit(strategy string) {
	v, _ := discoveryHits.LoadOrStore(strategy, new(atomic.Int64))
	v.(*atomic.Int64).Add(1)
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
