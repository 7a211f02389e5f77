// go_tube: YouTube read-only aggregation MCP server.
//
// Exposes five MCP tools: youtube_video, youtube_channel,
// youtube_channel_page, youtube_channel_all, youtube_search.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/sources"
	"github.com/anatolykoptev/go_tube/internal/engine/tube"
	"github.com/anatolykoptev/go_tube/internal/tubeserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initLogging()
	initEngine()

	slog.Info("starting go_tube",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_tube",
		Version: version,
	}, nil)

	svc := tube.New(sources.NewInnertube(*engine.Cfg), tube.OptionsFrom(*engine.Cfg))
	tubeserver.RegisterTools(server, svc)
	slog.Info("tools registered", slog.Int("count", tubeserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_tube",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initLogging() {
	var level slog.Level
	switch strings.ToLower(env.Str("LOG_LEVEL", "info")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func initEngine() {
	c := engine.Config{
		ClientVersion:        env.Str("YT_CLIENT_VERSION", ""),
		Hl:                   env.Str("YT_HL", "en"),
		Gl:                   env.Str("YT_GL", "US"),
		EnrichBatchWidth:     env.Int("ENRICH_BATCH_WIDTH", 5),
		EnrichPacing:         env.Duration("ENRICH_PACING", 200*time.Millisecond),
		DefaultPageSize:      env.Int("DEFAULT_PAGE_SIZE", 30),
		SecondaryTab:         env.Str("DISCOVERY_SECONDARY_TAB", ""),
		ShelfKeywords:        env.List("DISCOVERY_KEYWORDS", ""),
		IDPrefixes:           env.List("DISCOVERY_ID_PREFIXES", ""),
		IDTokens:             env.List("DISCOVERY_ID_TOKENS", ""),
		CacheTTL:             env.Duration("CACHE_TTL", 15*time.Minute),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		RedisURL:             env.Str("REDIS_URL", ""),
		CacheSQLitePath:      env.Str("CACHE_SQLITE_PATH", ""),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}

	engine.Init(c)

	engine.InitCache(engine.CacheOptions{
		RedisURL:        c.RedisURL,
		SQLitePath:      c.CacheSQLitePath,
		TTL:             c.CacheTTL,
		MaxEntries:      c.CacheMaxEntries,
		CleanupInterval: c.CacheCleanupInterval,
	})
}
