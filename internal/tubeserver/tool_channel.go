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

func registerChannel(server *mcp.Server, svc Tube) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_channel",
		Description: "Get a YouTube channel's root metadata (title, description, avatar, subscriber text, tabs). With discover=true also reports a linked secondary channel such as an auto-generated topic or releases channel, with the strategy that found it and a confidence of high, medium or derived.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, channelHandler(svc))
}

func channelHandler(svc Tube) func(context.Context, *mcp.CallToolRequest, engine.ChannelInput) (*mcp.CallToolResult, engine.Collection, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ChannelInput) (*mcp.CallToolResult, engine.Collection, error) {
		id := toolutil.ChannelRef(input.ID)
		if id == "" {
			return nil, engine.Collection{}, fmt.Errorf("id is required")
		}
		key := engine.CacheKey("youtube_channel", id, strconv.FormatBool(input.Discover))
		out, err := toolutil.Cached(ctx, key, func() (engine.Collection, error) {
			return svc.GetCollection(ctx, id, input.Discover)
		})
		if err != nil {
			return nil, engine.Collection{}, err
		}
		out.Description = engine.TrimDescription(out.Description, input.MaxDescriptionChars)
		return nil, out, nil
	}
}

// --- youtube_channel_page ---

func registerChannelPage(server *mcp.Server, svc Tube) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_channel_page",
		Description: "List one page of a YouTube channel tab (videos by default). Each row is enriched with its full video details; rows whose detail fetch failed keep listing fields and carry an error marker. page_size defaults to 30. If the tab runs out early the last available page is returned and page reports which one.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, channelPageHandler(svc))
}

func channelPageHandler(svc Tube) func(context.Context, *mcp.CallToolRequest, engine.ChannelPageInput) (*mcp.CallToolResult, engine.CollectionPage, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ChannelPageInput) (*mcp.CallToolResult, engine.CollectionPage, error) {
		id := toolutil.ChannelRef(input.ID)
		if id == "" {
			return nil, engine.CollectionPage{}, fmt.Errorf("id is required")
		}
		if input.PageSize < 0 {
			return nil, engine.CollectionPage{}, fmt.Errorf("page_size must not be negative")
		}
		tab := strings.ToLower(strings.TrimSpace(input.Tab))
		key := engine.CacheKey("youtube_channel_page", id, tab, strconv.Itoa(input.Page), strconv.Itoa(input.PageSize))
		out, err := toolutil.CachedIf(ctx, key, func() (engine.CollectionPage, error) {
			return svc.GetCollectionPage(ctx, id, tab, input.Page, input.PageSize)
		}, fullyEnriched)
		if err != nil {
			return nil, engine.CollectionPage{}, err
		}
		out.Items = trimItems(out.Items, input.MaxDescriptionChars)
		return nil, out, nil
	}
}

// fullyEnriched reports whether every row got its detail fetch. Degraded
// pages are not cached so a later call can fill them in.
func fullyEnriched(p engine.CollectionPage) bool {
	for _, it := range p.Items {
		if it.Error != "" {
			return false
		}
	}
	return true
}

// --- youtube_channel_all ---

func registerChannelAll(server *mcp.Server, svc Tube) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_channel_all",
		Description: "List every item of a YouTube channel tab by following continuations to the end. Rows are listing-level only (no per-video detail fetch), so it stays cheap on large channels.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, channelAllHandler(svc))
}

func channelAllHandler(svc Tube) func(context.Context, *mcp.CallToolRequest, engine.ChannelAllInput) (*mcp.CallToolResult, engine.CollectionListing, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ChannelAllInput) (*mcp.CallToolResult, engine.CollectionListing, error) {
		id := toolutil.ChannelRef(input.ID)
		if id == "" {
			return nil, engine.CollectionListing{}, fmt.Errorf("id is required")
		}
		tab := strings.ToLower(strings.TrimSpace(input.Tab))
		out, err := toolutil.Cached(ctx, engine.CacheKey("youtube_channel_all", id, tab), func() (engine.CollectionListing, error) {
			return svc.GetCollectionAll(ctx, id, tab)
		})
		if err != nil {
			return nil, engine.CollectionListing{}, err
		}
		out.Items = trimItems(out.Items, input.MaxDescriptionChars)
		return nil, out, nil
	}
}
