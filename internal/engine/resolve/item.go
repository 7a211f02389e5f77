package resolve

import (
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/rawnode"
	"github.com/anatolykoptev/go_tube/internal/engine/timeparse"
)

// Source is everything known about one item. Detail and Row are each
// optional: search rows have no Detail, single-item lookups have no Row.
type Source struct {
	ID        string
	Detail    rawnode.Node // player document: videoDetails, microformat
	Primary   rawnode.Node // videoPrimaryInfoRenderer
	Secondary rawnode.Node // videoSecondaryInfoRenderer
	Row       rawnode.Node // unwrapped listing row renderer
	RowKind   string       // renderer key of the row, e.g. "videoRenderer"
}

// NewSource assembles a Source from an item document and/or a raw listing
// row. id may be empty; it is then taken from the detail or row.
func NewSource(id string, detail, row rawnode.Node) Source {
	src := Source{ID: id}.WithDetail(detail)
	if !row.Missing() {
		src.Row, src.RowKind = UnwrapRow(row)
	}
	if src.ID == "" {
		if v, ok := detail.Str("videoDetails", "videoId"); ok {
			src.ID = v
		} else {
			src.ID = RowID.Value(src)
		}
	}
	return src
}

// WithDetail returns a copy of s carrying an item document. Row fields are
// kept so detail-first chains can still fall back to them.
func (s Source) WithDetail(detail rawnode.Node) Source {
	s.Detail = detail
	s.Primary, s.Secondary = rawnode.Node{}, rawnode.Node{}
	if !detail.Missing() {
		s.Primary = detail.First("videoPrimaryInfoRenderer")
		s.Secondary = detail.First("videoSecondaryInfoRenderer")
	}
	return s
}

// rowWrappers hold the real renderer one level down.
var rowWrappers = [][]string{
	{"richItemRenderer", "content"},
	{"richSectionRenderer", "content"},
}

// UnwrapRow strips layout wrappers from a listing row and returns the inner
// renderer with its key. Unknown shapes are returned as-is with kind "".
func UnwrapRow(row rawnode.Node) (rawnode.Node, string) {
	for _, w := range rowWrappers {
		if inner := row.Get(w...); !inner.Missing() {
			row = inner
			break
		}
	}
	keys := row.Keys()
	if len(keys) == 1 {
		return row.Get(keys[0]), keys[0]
	}
	return row, ""
}

// shortKinds are row renderers that only ever carry shorts.
var shortKinds = map[string]bool{
	"reelItemRenderer":      true,
	"shortsLockupViewModel": true,
}

// RowID extracts an item id from a listing row. Ads and section headers
// carry none, so a miss is not a shape mismatch.
var RowID = Chain[Source, string]{
	Field: "row_id",
	Quiet: true,
	Steps: []Step[Source, string]{
		{"row_video_id", func(s Source) (string, bool) { return s.Row.Str("videoId") }},
		{"row_reel_endpoint", func(s Source) (string, bool) {
			return s.Row.Str("onTap", "innertubeCommand", "reelWatchEndpoint", "videoId")
		}},
		{"row_watch_endpoint", func(s Source) (string, bool) {
			return s.Row.Str("navigationEndpoint", "watchEndpoint", "videoId")
		}},
	},
}

// ItemChains holds the declared item chains. Build with NewItemChains.
type ItemChains struct {
	PublishedAt  Chain[Source, time.Time]
	ViewCount    Chain[Source, int64]
	Description  Chain[Source, string]
	Thumbnail    Chain[Source, string]
	Duration     Chain[Source, int64]
	Title        Chain[Source, string]
	ChannelID    Chain[Source, string]
	ChannelTitle Chain[Source, string]
	IsShort      Chain[Source, bool]
}

// NewItemChains builds the item chains; n resolves relative row dates.
func NewItemChains(n *timeparse.Normalizer) *ItemChains {
	if n == nil {
		n = timeparse.Default
	}
	absolute := func(node rawnode.Node, path ...string) (time.Time, bool) {
		s, ok := node.Text(path...)
		if !ok {
			return time.Time{}, false
		}
		return n.ParseAbsolute(s)
	}

	return &ItemChains{
		PublishedAt: Chain[Source, time.Time]{
			Field: "published_at",
			Steps: []Step[Source, time.Time]{
				{"structured_publish_date", func(s Source) (time.Time, bool) {
					return absolute(s.Detail, "microformat", "playerMicroformatRenderer", "publishDate")
				}},
				{"structured_upload_date", func(s Source) (time.Time, bool) {
					return absolute(s.Detail, "microformat", "playerMicroformatRenderer", "uploadDate")
				}},
				{"detail_publish_date", func(s Source) (time.Time, bool) {
					return absolute(s.Detail, "videoDetails", "publishDate")
				}},
				{"primary_published_text", func(s Source) (time.Time, bool) {
					return absolute(s.Primary, "publishedTimeText")
				}},
				{"primary_date_text", func(s Source) (time.Time, bool) {
					return absolute(s.Primary, "dateText")
				}},
				{"row_published_text", func(s Source) (time.Time, bool) {
					txt, ok := s.Row.Text("publishedTimeText")
					if !ok {
						return time.Time{}, false
					}
					return n.Normalize(txt)
				}},
			},
		},

		ViewCount: Chain[Source, int64]{
			Field: "view_count",
			Steps: []Step[Source, int64]{
				{"detail_view_count", func(s Source) (int64, bool) {
					return s.Detail.Int("videoDetails", "viewCount")
				}},
				{"row_view_count_text", func(s Source) (int64, bool) {
					txt, ok := s.Row.Text("viewCountText")
					if !ok {
						return 0, false
					}
					return digitsOnly(txt)
				}},
			},
		},

		Description: Chain[Source, string]{
			Field: "description",
			Steps: []Step[Source, string]{
				{"primary_text", func(s Source) (string, bool) { return s.Primary.Text("attributedDescription") }},
				{"secondary_text", func(s Source) (string, bool) {
					if v, ok := s.Secondary.Text("attributedDescription"); ok {
						return v, true
					}
					return s.Secondary.Text("description")
				}},
				{"detail_description", func(s Source) (string, bool) { return s.Detail.Text("videoDetails", "shortDescription") }},
				{"row_snippet", func(s Source) (string, bool) {
					if v, ok := s.Row.Text("descriptionSnippet"); ok {
						return v, true
					}
					return s.Row.Text("detailedMetadataSnippets", "0", "snippetText")
				}},
			},
		},

		Thumbnail: Chain[Source, string]{
			Field: "thumbnail_url",
			Steps: []Step[Source, string]{
				{"detail_thumbnail", func(s Source) (string, bool) {
					return LargestThumbnail(s.Detail.List("videoDetails", "thumbnail", "thumbnails"))
				}},
				{"row_thumbnail", func(s Source) (string, bool) {
					if u, ok := LargestThumbnail(s.Row.List("thumbnail", "thumbnails")); ok {
						return u, true
					}
					return LargestThumbnail(s.Row.List("thumbnail", "sources"))
				}},
			},
			Default: func(s Source) string { return DefaultThumbnail(s.ID) },
		},

		Duration: Chain[Source, int64]{
			Field: "duration",
			Steps: []Step[Source, int64]{
				{"detail_length_seconds", func(s Source) (int64, bool) {
					return s.Detail.Int("videoDetails", "lengthSeconds")
				}},
				{"row_length_text", func(s Source) (int64, bool) {
					txt, ok := s.Row.Text("lengthText")
					if !ok {
						return 0, false
					}
					return ParseClock(txt)
				}},
			},
		},

		Title: Chain[Source, string]{
			Field: "title",
			Steps: []Step[Source, string]{
				{"detail_title", func(s Source) (string, bool) { return s.Detail.Text("videoDetails", "title") }},
				{"primary_title", func(s Source) (string, bool) { return s.Primary.Text("title") }},
				{"row_title", func(s Source) (string, bool) {
					for _, p := range [][]string{{"title"}, {"headline"}, {"overlayMetadata", "primaryText"}} {
						if v, ok := s.Row.Text(p...); ok {
							return v, true
						}
					}
					return "", false
				}},
			},
		},

		ChannelID: Chain[Source, string]{
			Field: "channel_id",
			Steps: []Step[Source, string]{
				{"detail_channel_id", func(s Source) (string, bool) { return s.Detail.Str("videoDetails", "channelId") }},
				{"structured_channel_id", func(s Source) (string, bool) {
					return s.Detail.Str("microformat", "playerMicroformatRenderer", "externalChannelId")
				}},
				{"row_byline", func(s Source) (string, bool) {
					for _, k := range bylineKeys {
						if v, ok := s.Row.Str(k, "runs", "0", "navigationEndpoint", "browseEndpoint", "browseId"); ok {
							return v, true
						}
					}
					return s.Row.Str("channelId")
				}},
			},
		},

		ChannelTitle: Chain[Source, string]{
			Field: "channel_title",
			Steps: []Step[Source, string]{
				{"detail_author", func(s Source) (string, bool) { return s.Detail.Str("videoDetails", "author") }},
				{"structured_owner", func(s Source) (string, bool) {
					return s.Detail.Str("microformat", "playerMicroformatRenderer", "ownerChannelName")
				}},
				{"row_byline", func(s Source) (string, bool) {
					for _, k := range bylineKeys {
						if v, ok := s.Row.Text(k); ok {
							return v, true
						}
					}
					return "", false
				}},
			},
		},

		IsShort: Chain[Source, bool]{
			Field: "is_short",
			Quiet: true,
			Steps: []Step[Source, bool]{
				{"row_kind", func(s Source) (bool, bool) { return true, shortKinds[s.RowKind] }},
				{"row_reel_endpoint", func(s Source) (bool, bool) {
					if s.Row.Has("navigationEndpoint", "reelWatchEndpoint") ||
						s.Row.Has("onTap", "innertubeCommand", "reelWatchEndpoint") {
						return true, true
					}
					return false, false
				}},
			},
		},
	}
}

var bylineKeys = []string{"ownerText", "longBylineText", "shortBylineText"}

// Item resolves every field of src into a NormalizedItem.
func (c *ItemChains) Item(src Source) engine.NormalizedItem {
	return engine.NormalizedItem{
		ID:           src.ID,
		Title:        c.Title.Value(src),
		Description:  c.Description.Value(src),
		ThumbnailURL: c.Thumbnail.Value(src),
		PublishedAt:  c.PublishedAt.Ptr(src),
		ViewCount:    c.ViewCount.Ptr(src),
		Duration:     c.Duration.Ptr(src),
		ChannelID:    c.ChannelID.Value(src),
		ChannelTitle: c.ChannelTitle.Value(src),
		IsShort:      c.IsShort.Value(src),
	}
}

// DefaultThumbnail is the deterministic thumbnail URL for an item id.
func DefaultThumbnail(id string) string {
	return "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg"
}

// LargestThumbnail picks the widest thumbnail, or the last one when widths
// are absent (upstream lists them smallest first).
func LargestThumbnail(thumbs []rawnode.Node) (string, bool) {
	best, bestW := "", int64(-1)
	for _, t := range thumbs {
		u, ok := t.Str("url")
		if !ok {
			continue
		}
		w, _ := t.Int("width")
		if w >= bestW {
			best, bestW = u, w
		}
	}
	if strings.HasPrefix(best, "//") {
		best = "https:" + best
	}
	return best, best != ""
}

// ParseClock parses "ss", "m:ss" or "h:mm:ss" into seconds.
func ParseClock(s string) (int64, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, false
	}
	var total int64
	for _, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil || v < 0 {
			return 0, false
		}
		total = total*60 + v
	}
	return total, true
}

func digitsOnly(s string) (int64, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(b.String(), 10, 64)
	return v, err == nil
}
