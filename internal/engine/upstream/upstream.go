// Package upstream defines the collaborator contract the aggregation core
// consumes, plus the typed failures it may return.
package upstream

import (
	"context"

	"github.com/anatolykoptev/go_tube/internal/engine/rawnode"
)

// ListingSource identifies a listing: a collection tab, or a search query.
type ListingSource struct {
	CollectionID string
	Tab          string
	Collection   rawnode.Node // already fetched collection document, optional
	Query        string
}

// ListingPage is one page of lightweight rows. An empty Cursor marks the end
// of the listing.
type ListingPage struct {
	Items  []rawnode.Node
	Cursor string
	Source ListingSource
}

// Done reports whether no further page can be requested.
func (p ListingPage) Done() bool {
	return p.Cursor == ""
}

// Client is the opaque platform collaborator. Its session (HTTP client,
// visitor data) is owned by whoever constructs it.
type Client interface {
	FetchItem(ctx context.Context, id string) (rawnode.Node, error)
	FetchCollection(ctx context.Context, id string) (rawnode.Node, error)
	// FetchCollectionTab returns a Missing node (and nil error) when the
	// collection has no such tab.
	FetchCollectionTab(ctx context.Context, collection rawnode.Node, tab string) (rawnode.Node, error)
	FetchListingFirstPage(ctx context.Context, src ListingSource) (ListingPage, error)
	FetchListingContinuation(ctx context.Context, page ListingPage) (ListingPage, error)
	FetchSearch(ctx context.Context, query string) (ListingPage, error)
}
