// Package upstreamtest provides an in-memory upstream.Client for tests.
package upstreamtest

import (
	"context"
	"sync"

	"github.com/anatolykoptev/go_tube/internal/engine/rawnode"
	"github.com/anatolykoptev/go_tube/internal/engine/upstream"
)

// Fake serves canned documents. Unset lookups return NotFound; the *Err
// fields inject failures. Safe for concurrent use.
type Fake struct {
	Items       map[string]rawnode.Node
	ItemErrs    map[string]error
	Collections map[string]rawnode.Node
	Tabs        map[string]rawnode.Node // tab name → tab document
	TabErr      error
	Listings    map[string][]upstream.ListingPage // "collectionID/tab" or "search:query" → pages
	ListingErr  error

	mu    sync.Mutex
	calls map[string]int
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		Items:       map[string]rawnode.Node{},
		ItemErrs:    map[string]error{},
		Collections: map[string]rawnode.Node{},
		Tabs:        map[string]rawnode.Node{},
		Listings:    map[string][]upstream.ListingPage{},
	}
}

// Calls reports how many times op was invoked.
func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *Fake) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
}

func (f *Fake) FetchItem(_ context.Context, id string) (rawnode.Node, error) {
	f.count("item")
	if err := f.ItemErrs[id]; err != nil {
		return rawnode.Node{}, err
	}
	doc, ok := f.Items[id]
	if !ok {
		return rawnode.Node{}, upstream.NotFound("fetch_item", id, nil)
	}
	return doc, nil
}

func (f *Fake) FetchCollection(_ context.Context, id string) (rawnode.Node, error) {
	f.count("collection")
	doc, ok := f.Collections[id]
	if !ok {
		return rawnode.Node{}, upstream.NotFound("fetch_collection", id, nil)
	}
	return doc, nil
}

func (f *Fake) FetchCollectionTab(_ context.Context, _ rawnode.Node, tab string) (rawnode.Node, error) {
	f.count("tab")
	if f.TabErr != nil {
		return rawnode.Node{}, f.TabErr
	}
	return f.Tabs[tab], nil
}

// ListingKey is the Listings key of a collection tab.
func ListingKey(collectionID, tab string) string {
	return collectionID + "/" + tab
}

// SearchKey is the Listings key of a search query.
func SearchKey(query string) string {
	return "search:" + query
}

func (f *Fake) FetchListingFirstPage(_ context.Context, src upstream.ListingSource) (upstream.ListingPage, error) {
	f.count("first_page")
	if f.ListingErr != nil {
		return upstream.ListingPage{}, f.ListingErr
	}
	return f.page(ListingKey(src.CollectionID, src.Tab), 0, src)
}

func (f *Fake) FetchListingContinuation(_ context.Context, prev upstream.ListingPage) (upstream.ListingPage, error) {
	f.count("continuation")
	key := ListingKey(prev.Source.CollectionID, prev.Source.Tab)
	if prev.Source.Query != "" {
		key = SearchKey(prev.Source.Query)
	}
	pages := f.Listings[key]
	for i, p := range pages {
		if p.Cursor == prev.Cursor && i+1 < len(pages) {
			return f.page(key, i+1, prev.Source)
		}
	}
	return upstream.ListingPage{}, upstream.Transport("continuation", prev.Cursor, nil)
}

func (f *Fake) FetchSearch(_ context.Context, query string) (upstream.ListingPage, error) {
	f.count("search")
	if f.ListingErr != nil {
		return upstream.ListingPage{}, f.ListingErr
	}
	return f.page(SearchKey(query), 0, upstream.ListingSource{Query: query})
}

func (f *Fake) page(key string, i int, src upstream.ListingSource) (upstream.ListingPage, error) {
	pages, ok := f.Listings[key]
	if !ok || i >= len(pages) {
		return upstream.ListingPage{}, upstream.NotFound("listing", key, nil)
	}
	p := pages[i]
	p.Source = src
	return p, nil
}

var _ upstream.Client = (*Fake)(nil)
