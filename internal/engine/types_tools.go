package engine

// --- MCP tool inputs ---

// VideoInput is the youtube_video tool input.
type VideoInput struct {
	ID                  string `json:"id" jsonschema:"Video id or URL (watch, shorts, embed, youtu.be)"`
	MaxDescriptionChars int    `json:"max_description_chars,omitempty" jsonschema:"Trim the description to this many characters at a word boundary (0 = full)"`
}

// ChannelInput is the youtube_channel tool input.
type ChannelInput struct {
	ID                  string `json:"id" jsonschema:"Channel id (UC...), @handle or channel URL"`
	Discover            bool   `json:"discover,omitempty" jsonschema:"Also look for a linked secondary channel (topic, releases or artist channel)"`
	MaxDescriptionChars int    `json:"max_description_chars,omitempty" jsonschema:"Trim the description to this many characters at a word boundary (0 = full)"`
}

// ChannelPageInput is the youtube_channel_page tool input.
type ChannelPageInput struct {
	ID                  string `json:"id" jsonschema:"Channel id (UC...), @handle or channel URL"`
	Tab                 string `json:"tab,omitempty" jsonschema:"Channel tab: videos (default), shorts, streams, releases, playlists"`
	Page                int    `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	PageSize            int    `json:"page_size,omitempty" jsonschema:"Items per page (default 30)"`
	MaxDescriptionChars int    `json:"max_description_chars,omitempty" jsonschema:"Trim each item description to this many characters (0 = full)"`
}

// ChannelAllInput is the youtube_channel_all tool input.
type ChannelAllInput struct {
	ID                  string `json:"id" jsonschema:"Channel id (UC...), @handle or channel URL"`
	Tab                 string `json:"tab,omitempty" jsonschema:"Channel tab: videos (default), shorts, streams, releases, playlists"`
	MaxDescriptionChars int    `json:"max_description_chars,omitempty" jsonschema:"Trim each item description to this many characters (0 = full)"`
}

// SearchInput is the youtube_search tool input.
type SearchInput struct {
	Query               string `json:"query" jsonschema:"Search keywords"`
	Page                int    `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	MaxDescriptionChars int    `json:"max_description_chars,omitempty" jsonschema:"Trim each item description to this many characters (0 = full)"`
}
