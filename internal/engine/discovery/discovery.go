// Package discovery searches a channel's structural surface for a linked
// secondary channel (an artist's Topic channel, an official music channel).
//
// Strategies run in priority order and the first one that yields an id wins.
// A strategy that errors or panics fails alone; discovery carries on with the
// next one.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/rawnode"
	"github.com/anatolykoptev/go_tube/internal/engine/upstream"
)

// Confidence labels.
const (
	High    = "high"
	Medium  = "medium"
	Derived = "derived"
)

// Config holds the discovery heuristics.
type Config struct {
	SecondaryTab  string   // tab opened by the secondary_tab strategy
	ShelfKeywords []string // shelf title keywords, matched case-insensitively
	IDPrefixes    []string // recognized id prefixes
	IDTokens      []string // recognized id substrings, case-insensitive
	LinkFields    []string // structured link field names
	CategoryFlags []string // badge styles, icon types or boolean flags
}

// DefaultConfig returns the built-in heuristics.
func DefaultConfig() Config {
	return Config{
		SecondaryTab:  "channels",
		ShelfKeywords: []string{"topic", "official", "music", "releases", "albums", "artist"},
		IDPrefixes:    []string{"UC"},
		IDTokens:      []string{"topic"},
		LinkFields:    []string{"linkedChannelId", "topicChannelId", "artistChannelId"},
		CategoryFlags: []string{"OFFICIAL_ARTIST_BADGE", "BADGE_STYLE_TYPE_VERIFIED_ARTIST", "isArtist"},
	}
}

// ConfigFrom overlays the non-empty engine settings on the defaults.
func ConfigFrom(c engine.Config) Config {
	out := DefaultConfig()
	if c.SecondaryTab != "" {
		out.SecondaryTab = c.SecondaryTab
	}
	if len(c.ShelfKeywords) > 0 {
		out.ShelfKeywords = c.ShelfKeywords
	}
	if len(c.IDPrefixes) > 0 {
		out.IDPrefixes = c.IDPrefixes
	}
	if len(c.IDTokens) > 0 {
		out.IDTokens = c.IDTokens
	}
	if len(c.LinkFields) > 0 {
		out.LinkFields = c.LinkFields
	}
	if len(c.CategoryFlags) > 0 {
		out.CategoryFlags = c.CategoryFlags
	}
	return out
}

// Subject is the channel being examined: its canonical id and root document.
type Subject struct {
	ID  string
	Doc rawnode.Node
}

// Strategy is one independent discovery heuristic. Run returns "" when it
// finds nothing.
type Strategy struct {
	Name       string
	Confidence string
	Run        func(ctx context.Context, d *Discoverer, s Subject) (string, error)
}

// Discoverer runs strategies against a channel.
type Discoverer struct {
	Client     upstream.Client
	Config     Config
	Strategies []Strategy // nil = DefaultStrategies()
}

// New returns a Discoverer with the default strategy order.
func New(c upstream.Client, cfg Config) *Discoverer {
	return &Discoverer{Client: c, Config: cfg, Strategies: DefaultStrategies()}
}

// DefaultStrategies lists the strategies in priority order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "header", Confidence: High, Run: headerLink},
		{Name: "metadata", Confidence: High, Run: metadataLink},
		{Name: "header_content", Confidence: High, Run: headerContentLink},
		{Name: "tabs", Confidence: High, Run: tabsLink},
		{Name: "secondary_tab", Confidence: Medium, Run: secondaryTab},
		{Name: "shelf", Confidence: Medium, Run: shelfScan},
		{Name: "category", Confidence: Derived, Run: categoryFlag},
	}
}

// Discover returns the first strategy's answer, or false when none yields.
func (d *Discoverer) Discover(ctx context.Context, s Subject) (engine.DiscoveryResult, bool) {
	strategies := d.Strategies
	if strategies == nil {
		strategies = DefaultStrategies()
	}
	for _, st := range strategies {
		id, err := d.run(ctx, st, s)
		if err != nil {
			engine.IncrDiscoveryStrategyErrors()
			slog.Debug("discovery: strategy failed",
				slog.String("strategy", st.Name),
				slog.String("channel", s.ID),
				slog.Any("error", err))
			continue
		}
		if id == "" {
			continue
		}
		engine.IncrDiscoveryHit(st.Name)
		slog.Debug("discovery: found secondary channel",
			slog.String("strategy", st.Name),
			slog.String("channel", s.ID),
			slog.String("secondary", id))
		return engine.DiscoveryResult{CollectionID: id, Confidence: st.Confidence, Strategy: st.Name}, true
	}
	engine.IncrDiscoveryMisses()
	return engine.DiscoveryResult{}, false
}

func (d *Discoverer) run(ctx context.Context, st Strategy, s Subject) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			id, err = "", fmt.Errorf("strategy %s panicked: %v", st.Name, r)
		}
	}()
	return st.Run(ctx, d, s)
}

// Recognized reports whether id has a channel shape: a configured prefix or
// a configured token anywhere in it.
func (d *Discoverer) Recognized(id string) bool {
	if id == "" {
		return false
	}
	for _, p := range d.Config.IDPrefixes {
		if p != "" && strings.HasPrefix(id, p) {
			return true
		}
	}
	lower := strings.ToLower(id)
	for _, t := range d.Config.IDTokens {
		if t != "" && strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// IsCategory reports whether the channel self-declares a configured
// category flag in its header or metadata block.
func (d *Discoverer) IsCategory(doc rawnode.Node) bool {
	flags := map[string]bool{}
	for _, f := range d.Config.CategoryFlags {
		flags[f] = true
	}
	for _, block := range []rawnode.Node{doc.Get("header"), doc.Get("metadata")} {
		for _, badge := range block.Find("metadataBadgeRenderer") {
			if v, ok := badge.Str("style"); ok && flags[v] {
				return true
			}
			if v, ok := badge.Str("icon", "iconType"); ok && flags[v] {
				return true
			}
		}
		inner := block.Unwrap()
		for f := range flags {
			if v, ok := inner.Bool(f); ok && v {
				return true
			}
		}
	}
	return false
}

// linkField returns the first configured link field on n that names a
// channel other than self.
func (d *Discoverer) linkField(n rawnode.Node, self string) string {
	for _, f := range d.Config.LinkFields {
		if v, ok := n.Str(f); ok && v != self {
			return v
		}
	}
	return ""
}

// target returns a recognized navigation target on n other than self.
func (d *Discoverer) target(n rawnode.Node, self string) string {
	for _, p := range targetPaths {
		if v, ok := n.Str(p...); ok && v != self && d.Recognized(v) {
			return v
		}
	}
	return ""
}

var targetPaths = [][]string{
	{"navigationEndpoint", "browseEndpoint", "browseId"},
	{"endpoint", "browseEndpoint", "browseId"},
	{"title", "runs", "0", "navigationEndpoint", "browseEndpoint", "browseId"},
	{"channelId"},
}
