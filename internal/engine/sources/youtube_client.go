package sources

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine/rawnode"
	"github.com/anatolykoptev/go_tube/internal/engine/resolve"
	"github.com/anatolykoptev/go_tube/internal/engine/upstream"
)

// ytSearchVideosParam restricts /search to videos.
const ytSearchVideosParam = "EgIQAQ=="

// unavailableStatuses are playability statuses for videos that exist but
// cannot be served to an anonymous WEB client.
var unavailableStatuses = map[string]bool{
	"LOGIN_REQUIRED":         true,
	"UNPLAYABLE":             true,
	"AGE_CHECK_REQUIRED":     true,
	"CONTENT_CHECK_REQUIRED": true,
}

// FetchItem merges /player (videoDetails, microformat) with /next (primary
// and secondary info renderers). A failed /next is not fatal.
func (it *Innertube) FetchItem(ctx context.Context, id string) (rawnode.Node, error) {
	player, err := it.post(ctx, "player", id, map[string]any{
		"videoId":        id,
		"racyCheckOk":    true,
		"contentCheckOk": true,
	})
	if err != nil {
		return rawnode.Node{}, err
	}
	if err := playabilityError(id, player); err != nil {
		return rawnode.Node{}, err
	}

	doc := map[string]any{
		"videoDetails":      player.Get("videoDetails").Value(),
		"microformat":       player.Get("microformat").Value(),
		"playabilityStatus": player.Get("playabilityStatus").Value(),
	}
	next, err := it.post(ctx, "next", id, map[string]any{"videoId": id})
	if err != nil {
		slog.Debug("youtube: /next failed, using player only", slog.String("id", id), slog.Any("error", err))
	} else {
		doc["contents"] = next.Get("contents").Value()
	}
	return rawnode.From(doc), nil
}

func playabilityError(id string, player rawnode.Node) error {
	status, _ := player.Str("playabilityStatus", "status")
	reason, _ := player.Text("playabilityStatus", "reason")
	switch {
	case status == "" || status == "OK" || status == "LIVE_STREAM_OFFLINE":
		return nil
	case status == "ERROR":
		return upstream.NotFound("player", id, errors.New(reason))
	case unavailableStatuses[status]:
		return upstream.Unavailable("player", id, errors.New(status+": "+reason))
	}
	return upstream.Unavailable("player", id, errors.New(status))
}

// FetchCollection browses a channel root by UC id, @handle or URL. When the
// browse response is unusable the channel's HTML page is scraped instead.
func (it *Innertube) FetchCollection(ctx context.Context, id string) (rawnode.Node, error) {
	browseID, err := it.resolveChannelID(ctx, id)
	if err != nil {
		return rawnode.Node{}, err
	}

	doc, err := it.post(ctx, "browse", id, map[string]any{"browseId": browseID})
	if err == nil {
		if alertNotFound(doc) {
			return rawnode.Node{}, upstream.NotFound("browse", id, errors.New("channel does not exist"))
		}
		if hasChannelShape(doc) {
			return doc, nil
		}
	} else if errors.Is(err, upstream.ErrNotFound) {
		return rawnode.Node{}, err
	}

	page, perr := it.fetchChannelPage(ctx, browseID)
	if perr != nil {
		slog.Debug("youtube: channel page fallback failed", slog.String("id", id), slog.Any("error", perr))
		// A 404 on the page is definitive; it outranks a transient browse error.
		if errors.Is(perr, upstream.ErrNotFound) {
			return rawnode.Node{}, perr
		}
		if err != nil {
			return rawnode.Node{}, err
		}
		return doc, nil
	}
	return page, nil
}

// resolveChannelID maps handles and channel URLs to a UC browse id.
func (it *Innertube) resolveChannelID(ctx context.Context, id string) (string, error) {
	if strings.HasPrefix(id, "UC") {
		return id, nil
	}
	doc, err := it.post(ctx, "navigation/resolve_url", id, map[string]any{"url": channelURL(ytDefaultBaseURL, id)})
	if err != nil {
		return "", err
	}
	browseID, ok := doc.Str("endpoint", "browseEndpoint", "browseId")
	if !ok {
		return "", upstream.NotFound("resolve_url", id, nil)
	}
	return browseID, nil
}

func channelURL(base, id string) string {
	switch {
	case strings.HasPrefix(id, "http://"), strings.HasPrefix(id, "https://"):
		return id
	case strings.HasPrefix(id, "UC"):
		return base + "/channel/" + id
	case strings.HasPrefix(id, "@"):
		return base + "/" + id
	}
	return base + "/@" + id
}

func alertNotFound(doc rawnode.Node) bool {
	for _, key := range []string{"alertRenderer", "alertWithButtonRenderer"} {
		for _, alert := range doc.Find(key) {
			if txt, ok := alert.Text("text"); ok && strings.Contains(strings.ToLower(txt), "does not exist") {
				return true
			}
		}
	}
	return false
}

func hasChannelShape(doc rawnode.Node) bool {
	return doc.Has("metadata") || doc.Has("header")
}

// FetchCollectionTab browses the named tab using the params the channel
// document advertises for it. A channel without the tab yields a Missing node.
func (it *Innertube) FetchCollectionTab(ctx context.Context, collection rawnode.Node, tab string) (rawnode.Node, error) {
	t, ok := findTab(collection, tab)
	if !ok {
		return rawnode.Node{}, nil
	}
	if sel, _ := t.Bool("selected"); sel && t.Has("content") {
		return collection, nil
	}
	ep := t.Get("endpoint", "browseEndpoint")
	browseID, ok := ep.Str("browseId")
	if !ok {
		return rawnode.Node{}, nil
	}
	payload := map[string]any{"browseId": browseID}
	if params, ok := ep.Str("params"); ok {
		payload["params"] = params
	}
	return it.post(ctx, "browse", browseID+"/"+tab, payload)
}

// findTab matches a tab by title or by the last segment of its URL,
// case-insensitively.
func findTab(collection rawnode.Node, name string) (rawnode.Node, bool) {
	for _, t := range resolve.Tabs(collection) {
		if title, ok := t.Text("title"); ok && strings.EqualFold(title, name) {
			return t, true
		}
		if u, ok := t.Str("endpoint", "commandMetadata", "webCommandMetadata", "url"); ok &&
			strings.HasSuffix(strings.ToLower(u), "/"+strings.ToLower(name)) {
			return t, true
		}
	}
	return rawnode.Node{}, false
}

// FetchListingFirstPage lists a channel tab. src.Collection is reused when
// the caller already holds the channel document.
func (it *Innertube) FetchListingFirstPage(ctx context.Context, src upstream.ListingSource) (upstream.ListingPage, error) {
	collection := src.Collection
	if collection.Missing() {
		var err error
		if collection, err = it.FetchCollection(ctx, src.CollectionID); err != nil {
			return upstream.ListingPage{}, err
		}
	}
	tab, err := it.FetchCollectionTab(ctx, collection, src.Tab)
	if err != nil {
		return upstream.ListingPage{}, err
	}
	if tab.Missing() {
		return upstream.ListingPage{}, upstream.NotFound("first_page", src.CollectionID+"/"+src.Tab, errors.New("no such tab"))
	}
	items, cursor := extractListing(tab)
	src.Collection = rawnode.Node{}
	return upstream.ListingPage{Items: items, Cursor: cursor, Source: src}, nil
}

// FetchListingContinuation follows a cursor from a tab or search listing.
func (it *Innertube) FetchListingContinuation(ctx context.Context, page upstream.ListingPage) (upstream.ListingPage, error) {
	endpoint := "browse"
	if page.Source.Query != "" {
		endpoint = "search"
	}
	doc, err := it.post(ctx, endpoint, page.Cursor, map[string]any{"continuation": page.Cursor})
	if err != nil {
		return upstream.ListingPage{}, err
	}
	items, cursor := extractContinuation(doc)
	return upstream.ListingPage{Items: items, Cursor: cursor, Source: page.Source}, nil
}

// FetchSearch returns the first page of video search results.
func (it *Innertube) FetchSearch(ctx context.Context, query string) (upstream.ListingPage, error) {
	doc, err := it.post(ctx, "search", query, map[string]any{
		"query":  query,
		"params": ytSearchVideosParam,
	})
	if err != nil {
		return upstream.ListingPage{}, err
	}
	items, cursor := extractListing(doc)
	return upstream.ListingPage{Items: items, Cursor: cursor, Source: upstream.ListingSource{Query: query}}, nil
}

var _ upstream.Client = (*Innertube)(nil)
