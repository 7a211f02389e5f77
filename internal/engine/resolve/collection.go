package resolve

import (
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine/rawnode"
)

// CollectionSource is a fetched collection document and the id it was
// requested under.
type CollectionSource struct {
	ID  string
	Doc rawnode.Node
}

func (s CollectionSource) metadata() rawnode.Node {
	return s.Doc.Get("metadata").Unwrap()
}

func (s CollectionSource) header() rawnode.Node {
	return s.Doc.Get("header").Unwrap()
}

// pageHeaderViewModel is the newer header layout, nested under the header
// renderer's content.
func (s CollectionSource) headerViewModel() rawnode.Node {
	return s.header().Get("content", "pageHeaderViewModel")
}

// CollectionChains holds the declared collection chains.
type CollectionChains struct {
	ID          Chain[CollectionSource, string]
	Title       Chain[CollectionSource, string]
	Description Chain[CollectionSource, string]
	Thumbnail   Chain[CollectionSource, string]
	Subscribers Chain[CollectionSource, string]
}

// NewCollectionChains builds the collection chains.
func NewCollectionChains() *CollectionChains {
	return &CollectionChains{
		ID: Chain[CollectionSource, string]{
			Field: "collection_id",
			Steps: []Step[CollectionSource, string]{
				{"metadata_external_id", func(s CollectionSource) (string, bool) { return s.metadata().Str("externalId") }},
				{"header_channel_id", func(s CollectionSource) (string, bool) { return s.header().Str("channelId") }},
			},
			Default: func(s CollectionSource) string { return s.ID },
		},
		Title: Chain[CollectionSource, string]{
			Field: "collection_title",
			Steps: []Step[CollectionSource, string]{
				{"metadata_title", func(s CollectionSource) (string, bool) { return s.metadata().Text("title") }},
				{"header_title", func(s CollectionSource) (string, bool) { return s.header().Text("title") }},
				{"header_view_model_title", func(s CollectionSource) (string, bool) {
					return s.headerViewModel().Text("title", "dynamicTextViewModel", "text")
				}},
			},
		},
		Description: Chain[CollectionSource, string]{
			Field: "collection_description",
			Steps: []Step[CollectionSource, string]{
				{"metadata_description", func(s CollectionSource) (string, bool) { return s.metadata().Text("description") }},
				{"microformat_description", func(s CollectionSource) (string, bool) {
					return s.Doc.Text("microformat", "microformatDataRenderer", "description")
				}},
				{"header_view_model_description", func(s CollectionSource) (string, bool) {
					return s.headerViewModel().Text("description", "descriptionPreviewViewModel", "description")
				}},
			},
		},
		Thumbnail: Chain[CollectionSource, string]{
			Field: "collection_thumbnail",
			Steps: []Step[CollectionSource, string]{
				{"metadata_avatar", func(s CollectionSource) (string, bool) {
					return LargestThumbnail(s.metadata().List("avatar", "thumbnails"))
				}},
				{"header_avatar", func(s CollectionSource) (string, bool) {
					return LargestThumbnail(s.header().List("avatar", "thumbnails"))
				}},
				{"header_view_model_avatar", func(s CollectionSource) (string, bool) {
					return LargestThumbnail(s.headerViewModel().List("image", "decoratedAvatarViewModel", "avatar", "avatarViewModel", "image", "sources"))
				}},
			},
		},
		Subscribers: Chain[CollectionSource, string]{
			Field: "collection_subscribers",
			Quiet: true,
			Steps: []Step[CollectionSource, string]{
				{"header_subscriber_text", func(s CollectionSource) (string, bool) { return s.header().Text("subscriberCountText") }},
				{"header_view_model_metadata", func(s CollectionSource) (string, bool) {
					rows := s.headerViewModel().List("metadata", "contentMetadataViewModel", "metadataRows")
					for _, row := range rows {
						for _, part := range row.List("metadataParts") {
							if txt, ok := part.Text("text"); ok && containsFold(txt, "subscriber") {
								return txt, true
							}
						}
					}
					return "", false
				}},
			},
		},
	}
}

// TabNames lists the titles of the collection's navigation tabs in order.
func TabNames(doc rawnode.Node) []string {
	var names []string
	for _, tab := range Tabs(doc) {
		if title, ok := tab.Text("title"); ok {
			names = append(names, title)
		}
	}
	return names
}

// Tabs returns the tab renderers of a collection document.
func Tabs(doc rawnode.Node) []rawnode.Node {
	var out []rawnode.Node
	for _, t := range doc.List("contents", "twoColumnBrowseResultsRenderer", "tabs") {
		inner := t.Unwrap() // tabRenderer or expandableTabRenderer
		if !inner.Missing() {
			out = append(out, inner)
		}
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
