package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	// Innertube collaborator
	InnertubeBaseURL string // default https://www.youtube.com
	ClientVersion    string
	Hl               string
	Gl               string
	HTTPClient       *http.Client
	BrowserClient    *BrowserClient // nil = HTML page fallback uses HTTPClient

	// Aggregator
	EnrichBatchWidth int           // concurrent detail fetches per batch
	EnrichPacing     time.Duration // delay between batches (0 = none)
	DefaultPageSize  int

	// Discovery
	SecondaryTab  string
	ShelfKeywords []string
	IDPrefixes    []string
	IDTokens      []string
	LinkFields    []string
	CategoryFlags []string

	// Tool-layer cache
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	RedisURL             string
	CacheSQLitePath      string
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, tube).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if c.InnertubeBaseURL == "" {
		c.InnertubeBaseURL = "https://www.youtube.com"
	}
	if c.EnrichBatchWidth <= 0 {
		c.EnrichBatchWidth = 5
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = 30
	}
	cfg = c
	Cfg = &cfg
}
