// Package tubeserver exposes the tube service as MCP tools.
package tubeserver

import (
	"context"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tube is the query surface the tools call. *tube.Service implements it.
type Tube interface {
	GetItem(ctx context.Context, id string) (engine.NormalizedItem, error)
	GetCollection(ctx context.Context, id string, includeDiscovery bool) (engine.Collection, error)
	GetCollectionPage(ctx context.Context, id, tab string, page, pageSize int) (engine.CollectionPage, error)
	GetCollectionAll(ctx context.Context, id, tab string) (engine.CollectionListing, error)
	Search(ctx context.Context, query string, page int) (engine.SearchResult, error)
}

// RegisterTools registers all YouTube tools on the given MCP server:
// youtube_video, youtube_channel, youtube_channel_page, youtube_channel_all,
// youtube_search.
func RegisterTools(server *mcp.Server, svc Tube) {
	registerVideo(server, svc)
	registerChannel(server, svc)
	registerChannelPage(server, svc)
	registerChannelAll(server, svc)
	registerSearch(server, svc)
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 5

func trimItems(items []engine.NormalizedItem, limit int) []engine.NormalizedItem {
	if limit <= 0 {
		return items
	}
	out := make([]engine.NormalizedItem, len(items))
	for i, it := range items {
		it.Description = engine.TrimDescription(it.Description, limit)
		out[i] = it
	}
	return out
}
