package tubeserver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerSearch(server *mcp.Server, svc Tube) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_search",
		Description: "Search YouTube videos. Returns one page of results resolved from the search listing (title, channel, relative publish time turned into a date, view count, duration, Shorts flag). Use page for deeper results.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, searchHandler(svc))
}

func searchHandler(svc Tube) func(context.Context, *mcp.CallToolRequest, engine.SearchInput) (*mcp.CallToolResult, engine.SearchResult, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SearchInput) (*mcp.CallToolResult, engine.SearchResult, error) {
		query := strings.TrimSpace(input.Query)
		if query == "" {
			return nil, engine.SearchResult{}, fmt.Errorf("query is required")
		}
		key := engine.CacheKey("youtube_search", query, strconv.Itoa(input.Page))
		out, err := toolutil.Cached(ctx, key, func() (engine.SearchResult, error) {
			return svc.Search(ctx, query, input.Page)
		})
		if err != nil {
			return nil, engine.SearchResult{}, err
		}
		out.Items = trimItems(out.Items, input.MaxDescriptionChars)
		return nil, out, nil
	}
}
