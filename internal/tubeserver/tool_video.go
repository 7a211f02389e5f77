package tubeserver

import (
	"context"
	"fmt"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerVideo(server *mcp.Server, svc Tube) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_video",
		Description: "Get normalized metadata for one YouTube video: title, description, thumbnail, publish date, view count, duration in seconds, channel and whether it is a Short. Missing upstream fields come back null or empty.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, videoHandler(svc))
}

func videoHandler(svc Tube) func(context.Context, *mcp.CallToolRequest, engine.VideoInput) (*mcp.CallToolResult, engine.NormalizedItem, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input engine.VideoInput) (*mcp.CallToolResult, engine.NormalizedItem, error) {
		id := toolutil.VideoID(input.ID)
		if id == "" {
			return nil, engine.NormalizedItem{}, fmt.Errorf("id is required")
		}
		item, err := toolutil.Cached(ctx, engine.CacheKey("youtube_video", id), func() (engine.NormalizedItem, error) {
			return svc.GetItem(ctx, id)
		})
		if err != nil {
			return nil, engine.NormalizedItem{}, err
		}
		item.Description = engine.TrimDescription(item.Description, input.MaxDescriptionChars)
		return nil, item, nil
	}
}
