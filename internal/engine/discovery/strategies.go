package discovery

import (
	"context"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine/rawnode"
	"github.com/anatolykoptev/go_tube/internal/engine/resolve"
)

func headerLink(_ context.Context, d *Discoverer, s Subject) (string, error) {
	return d.linkField(s.Doc.Get("header").Unwrap(), s.ID), nil
}

func metadataLink(_ context.Context, d *Discoverer, s Subject) (string, error) {
	return d.linkField(s.Doc.Get("metadata").Unwrap(), s.ID), nil
}

func headerContentLink(_ context.Context, d *Discoverer, s Subject) (string, error) {
	return d.linkField(s.Doc.Get("header").Unwrap().Get("content").Unwrap(), s.ID), nil
}

func tabsLink(_ context.Context, d *Discoverer, s Subject) (string, error) {
	for _, tab := range resolve.Tabs(s.Doc) {
		if id := d.linkField(tab, s.ID); id != "" {
			return id, nil
		}
		if id := d.linkField(tab.Get("endpoint").Unwrap(), s.ID); id != "" {
			return id, nil
		}
	}
	return "", nil
}

// subCollectionKinds are the renderers a secondary tab lists channels and
// playlists with.
var subCollectionKinds = []string{
	"gridChannelRenderer",
	"channelRenderer",
	"gridPlaylistRenderer",
	"playlistRenderer",
	"lockupViewModel",
}

// secondaryTab opens the configured tab and takes the first sub-collection,
// in document order, that points at another channel. A sub-collection exposing a representative video
// is only accepted when that video belongs to someone else.
func secondaryTab(ctx context.Context, d *Discoverer, s Subject) (string, error) {
	if d.Config.SecondaryTab == "" || d.Client == nil {
		return "", nil
	}
	tab, err := d.Client.FetchCollectionTab(ctx, s.Doc, d.Config.SecondaryTab)
	if err != nil {
		return "", err
	}
	if tab.Missing() {
		return "", nil
	}
	for _, sub := range tab.FindAny(subCollectionKinds...) {
		id := d.target(sub, s.ID)
		if id == "" {
			continue
		}
		rep, ok := representative(sub)
		if !ok {
			return id, nil
		}
		owner, err := d.ownerOf(ctx, rep)
		if err != nil {
			return "", err
		}
		if owner != "" && owner != s.ID {
			return id, nil
		}
	}
	return "", nil
}

func representative(sub rawnode.Node) (string, bool) {
	for _, p := range [][]string{
		{"navigationEndpoint", "watchEndpoint", "videoId"},
		{"videoId"},
	} {
		if v, ok := sub.Str(p...); ok {
			return v, true
		}
	}
	return "", false
}

var ownerChains = resolve.NewItemChains(nil)

func (d *Discoverer) ownerOf(ctx context.Context, videoID string) (string, error) {
	doc, err := d.Client.FetchItem(ctx, videoID)
	if err != nil {
		return "", err
	}
	src := resolve.NewSource(videoID, doc, rawnode.Node{})
	return ownerChains.ChannelID.Value(src), nil
}

var shelfKinds = []string{"shelfRenderer", "richShelfRenderer", "richSectionRenderer", "reelShelfRenderer"}

// shelfScan checks shelves whose title carries a keyword: first the shelf's
// own navigation target, then the targets of the items inside it.
func shelfScan(_ context.Context, d *Discoverer, s Subject) (string, error) {
	for _, kind := range shelfKinds {
		for _, shelf := range s.Doc.Find(kind) {
			title, ok := shelfTitle(shelf)
			if !ok || !d.hasKeyword(title) {
				continue
			}
			if id := d.target(shelf, s.ID); id != "" {
				return id, nil
			}
			for _, ep := range shelf.Find("browseEndpoint") {
				if v, ok := ep.Str("browseId"); ok && v != s.ID && d.Recognized(v) {
					return v, nil
				}
			}
		}
	}
	return "", nil
}

func shelfTitle(shelf rawnode.Node) (string, bool) {
	if t, ok := shelf.Text("title"); ok {
		return t, true
	}
	return shelf.Text("header", "shelfHeaderRenderer", "title")
}

func (d *Discoverer) hasKeyword(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range d.Config.ShelfKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// categoryFlag echoes the channel's own id when it declares itself a
// category (artist) channel.
func categoryFlag(_ context.Context, d *Discoverer, s Subject) (string, error) {
	if d.IsCategory(s.Doc) {
		return s.ID, nil
	}
	return "", nil
}
