package sources

import "github.com/anatolykoptev/go_tube/internal/engine/rawnode"

// listContainers are tried in order; the first that holds rows or a cursor
// is the listing.
var listContainers = []struct{ key, field string }{
	{"richGridRenderer", "contents"},
	{"gridRenderer", "items"},
	{"playlistVideoListRenderer", "contents"},
	{"sectionListRenderer", "contents"},
}

// extractListing returns the raw rows and continuation token of a first page
// (channel tab or search response).
func extractListing(doc rawnode.Node) ([]rawnode.Node, string) {
	for _, c := range listContainers {
		for _, n := range doc.Find(c.key) {
			rows, cursor := splitRows(n.List(c.field))
			if len(rows) > 0 || cursor != "" {
				return rows, cursor
			}
		}
	}
	return nil, ""
}

// extractContinuation reads appendContinuationItemsAction (browse) and
// reloadContinuationItemsCommand (search) payloads alike.
func extractContinuation(doc rawnode.Node) ([]rawnode.Node, string) {
	for _, items := range doc.Find("continuationItems") {
		rows, cursor := splitRows(items.List())
		if len(rows) > 0 || cursor != "" {
			return rows, cursor
		}
	}
	return nil, ""
}

// splitRows separates item rows from the trailing continuation renderer and
// flattens item sections.
func splitRows(list []rawnode.Node) (rows []rawnode.Node, cursor string) {
	for _, n := range list {
		if n.Has("continuationItemRenderer") {
			if tok, ok := n.Str("continuationItemRenderer", "continuationEndpoint", "continuationCommand", "token"); ok {
				cursor = tok
			}
			continue
		}
		if sec := n.Get("itemSectionRenderer"); !sec.Missing() {
			sub, c := splitRows(sec.List("contents"))
			rows = append(rows, sub...)
			if c != "" {
				cursor = c
			}
			continue
		}
		rows = append(rows, n)
	}
	return rows, cursor
}
