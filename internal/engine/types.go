package engine

import "time"

// --- Normalized output types (JSON responses) ---

// NormalizedItem is the stable shape of a single video. ID is always set;
// every other field is best-effort and nil/empty when upstream lacked it.
type NormalizedItem struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ThumbnailURL string     `json:"thumbnail_url"`
	PublishedAt  *time.Time `json:"published_at"`
	ViewCount    *int64     `json:"view_count"`
	Duration     *int64     `json:"duration"` // seconds
	ChannelID    string     `json:"channel_id"`
	ChannelTitle string     `json:"channel_title"`
	IsShort      bool       `json:"is_short"`
	// Error marks a partially enriched item: detail fetch failed and only
	// listing-row fields are present.
	Error string `json:"error,omitempty"`
}

// DiscoveryResult names a linked secondary collection and how it was found.
type DiscoveryResult struct {
	CollectionID string `json:"collection_id"`
	Confidence   string `json:"confidence"` // high, medium, derived
	Strategy     string `json:"strategy"`
}

// Collection is a normalized channel root.
type Collection struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	ThumbnailURL   string           `json:"thumbnail_url"`
	SubscriberText string           `json:"subscriber_text,omitempty"`
	Tabs           []string         `json:"tabs,omitempty"`
	IsCategory     bool             `json:"is_category"` // artist/official badge
	Secondary      *DiscoveryResult `json:"secondary,omitempty"`
}

// CollectionPage is one page of a channel tab listing.
type CollectionPage struct {
	CollectionID  string           `json:"collection_id"`
	Tab           string           `json:"tab"`
	RequestedPage int              `json:"requested_page"`
	Page          int              `json:"page"`
	PageSize      int              `json:"page_size"`
	HasMore       bool             `json:"has_more"`
	Items         []NormalizedItem `json:"items"`
}

// CollectionListing is a whole channel tab walked to exhaustion.
type CollectionListing struct {
	CollectionID string           `json:"collection_id"`
	Tab          string           `json:"tab"`
	Total        int              `json:"total"`
	Items        []NormalizedItem `json:"items"`
}

// SearchResult is one page of search rows.
type SearchResult struct {
	Query   string           `json:"query"`
	Page    int              `json:"page"`
	HasMore bool             `json:"has_more"`
	Items   []NormalizedItem `json:"items"`
}
