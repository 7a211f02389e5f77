// Package walker traverses listing continuation chains.
//
// A walk is either HAS_PAGE (the current page has items and may continue) or
// EXHAUSTED. A continuation moves to the next page only when it yields at
// least one item; a missing cursor, an empty page, a failed fetch or a cursor
// that was already followed all exhaust the walk. Exhaustion is terminal and
// nothing is retried.
package walker

import (
	"context"
	"log/slog"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/rawnode"
	"github.com/anatolykoptev/go_tube/internal/engine/upstream"
)

// FirstPageFunc fetches page 1 of a listing.
type FirstPageFunc func(ctx context.Context) (upstream.ListingPage, error)

// ContinuationFunc fetches the page following prev.
type ContinuationFunc func(ctx context.Context, prev upstream.ListingPage) (upstream.ListingPage, error)

// Walker advances listings through Next.
type Walker struct {
	Next ContinuationFunc
}

// New returns a walker that continues listings through c.
func New(c upstream.Client) *Walker {
	return &Walker{Next: c.FetchListingContinuation}
}

// Result is the page a walk stopped on.
type Result struct {
	Page    int // 1-based page actually reached
	Items   []rawnode.Node
	HasMore bool
}

// Advance walks to the target page (1-based) and returns it, truncated to
// pageSize items when pageSize > 0. A target past the end clamps to the last
// reachable page. Only a failure of the first page is returned as an error.
func (w *Walker) Advance(ctx context.Context, first FirstPageFunc, target, pageSize int) (Result, error) {
	if target < 1 {
		target = 1
	}
	cur, err := first(ctx)
	if err != nil {
		return Result{}, err
	}
	engine.IncrListingPages()

	seen := map[string]bool{}
	page, exhausted := 1, false
	for page < target {
		next, ok := w.step(ctx, cur, seen)
		if !ok {
			exhausted = true
			break
		}
		cur = next
		page++
	}

	items := cur.Items
	if pageSize > 0 && len(items) > pageSize {
		items = items[:pageSize]
	}
	return Result{
		Page:    page,
		Items:   items,
		HasMore: !exhausted && !cur.Done() && !seen[cur.Cursor],
	}, nil
}

// All walks the listing until it is exhausted and returns every item in
// listing order.
func (w *Walker) All(ctx context.Context, first FirstPageFunc) ([]rawnode.Node, error) {
	cur, err := first(ctx)
	if err != nil {
		return nil, err
	}
	engine.IncrListingPages()

	items := append([]rawnode.Node(nil), cur.Items...)
	seen := map[string]bool{}
	for {
		next, ok := w.step(ctx, cur, seen)
		if !ok {
			return items, nil
		}
		items = append(items, next.Items...)
		cur = next
	}
}

// step performs one HAS_PAGE transition. false means EXHAUSTED.
func (w *Walker) step(ctx context.Context, cur upstream.ListingPage, seen map[string]bool) (upstream.ListingPage, bool) {
	if cur.Done() || w.Next == nil {
		return upstream.ListingPage{}, false
	}
	if seen[cur.Cursor] {
		slog.Debug("walker: repeated continuation cursor", slog.String("tab", cur.Source.Tab))
		return upstream.ListingPage{}, false
	}
	seen[cur.Cursor] = true

	next, err := w.Next(ctx, cur)
	if err != nil {
		slog.Debug("walker: continuation failed, listing exhausted",
			slog.String("collection", cur.Source.CollectionID),
			slog.String("tab", cur.Source.Tab),
			slog.Any("error", err))
		return upstream.ListingPage{}, false
	}
	engine.IncrListingPages()
	if len(next.Items) == 0 {
		return upstream.ListingPage{}, false
	}
	return next, true
}
