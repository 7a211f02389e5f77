package sources

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/rawnode"
	"github.com/anatolykoptev/go_tube/internal/engine/upstream"
)

const channelDoc = `{
	"header": {"c4TabbedHeaderRenderer": {"channelId": "UCgood", "title": "Good"}},
	"metadata": {"channelMetadataRenderer": {"externalId": "UCgood", "title": "Good"}},
	"contents": {"twoColumnBrowseResultsRenderer": {"tabs": [
		{"tabRenderer": {"title": "Home", "selected": true, "content": {"sectionListRenderer": {"contents": []}},
			"endpoint": {"browseEndpoint": {"browseId": "UCgood"}}}},
		{"tabRenderer": {"title": "Videos",
			"endpoint": {
				"browseEndpoint": {"browseId": "UCgood", "params": "VIDEOS_PARAMS"},
				"commandMetadata": {"webCommandMetadata": {"url": "/@good/videos"}}
			}}}
	]}}
}`

const videosTabDoc = `{"contents": {"twoColumnBrowseResultsRenderer": {"tabs": [{"tabRenderer": {
	"title": "Videos", "selected": true,
	"content": {"richGridRenderer": {"contents": [
		{"richItemRenderer": {"content": {"videoRenderer": {"videoId": "vid1"}}}},
		{"richItemRenderer": {"content": {"videoRenderer": {"videoId": "vid2"}}}},
		{"continuationItemRenderer": {"continuationEndpoint": {"continuationCommand": {"token": "tok1"}}}}
	]}}
}}]}}}`

const continuationDoc = `{"onResponseReceivedActions": [{"appendContinuationItemsAction": {"continuationItems": [
	{"richItemRenderer": {"content": {"videoRenderer": {"videoId": "vid3"}}}}
]}}]}`

const searchDoc = `{"contents": {"twoColumnSearchResultsRenderer": {"primaryContents": {"sectionListRenderer": {"contents": [
	{"itemSectionRenderer": {"contents": [
		{"videoRenderer": {"videoId": "s1"}},
		{"shelfRenderer": {"title": {"simpleText": "People also watched"}}},
		{"videoRenderer": {"videoId": "s2"}}
	]}},
	{"continuationItemRenderer": {"continuationEndpoint": {"continuationCommand": {"token": "stok"}}}}
]}}}}}`

const scrapedPage = `<!DOCTYPE html><html><head><title>x</title></head><body>
<script>var ytcfg = {};</script>
<script>var ytInitialData = {"metadata": {"channelMetadataRenderer": {"externalId": "UCscrape", "title": "Scraped \"quoted\" {braces}"}}};</script>
</body></html>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, s string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(s))
	}
	decode := func(r *http.Request) map[string]any {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		return body
	}

	mux.HandleFunc("/youtubei/v1/player", func(w http.ResponseWriter, r *http.Request) {
		switch decode(r)["videoId"] {
		case "vid1":
			writeJSON(w, `{"playabilityStatus": {"status": "OK"}, "videoDetails": {"videoId": "vid1", "title": "One"}, "microformat": {"playerMicroformatRenderer": {"publishDate": "2024-01-01"}}}`)
		case "gone":
			writeJSON(w, `{"playabilityStatus": {"status": "ERROR", "reason": "Video unavailable"}}`)
		case "age":
			writeJSON(w, `{"playabilityStatus": {"status": "LOGIN_REQUIRED", "reason": "Sign in to confirm your age"}}`)
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/youtubei/v1/next", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"contents": {"twoColumnWatchNextResults": {"results": {"results": {"contents": [
			{"videoSecondaryInfoRenderer": {"attributedDescription": {"content": "about one"}}}
		]}}}}}`)
	})
	mux.HandleFunc("/youtubei/v1/navigation/resolve_url", func(w http.ResponseWriter, r *http.Request) {
		if decode(r)["url"] == "https://www.youtube.com/@good" {
			writeJSON(w, `{"endpoint": {"browseEndpoint": {"browseId": "UCgood"}}}`)
			return
		}
		http.NotFound(w, r)
	})
	mux.HandleFunc("/youtubei/v1/browse", func(w http.ResponseWriter, r *http.Request) {
		body := decode(r)
		if body["continuation"] == "tok1" {
			writeJSON(w, continuationDoc)
			return
		}
		switch body["browseId"] {
		case "UCgood":
			if body["params"] == "VIDEOS_PARAMS" {
				writeJSON(w, videosTabDoc)
				return
			}
			writeJSON(w, channelDoc)
		case "UCalert":
			writeJSON(w, `{"alerts": [{"alertRenderer": {"type": "ERROR", "text": {"simpleText": "This channel does not exist."}}}]}`)
		case "UCscrape":
			writeJSON(w, `{"responseContext": {}}`)
		case "UCbroken":
			http.Error(w, "bad request", http.StatusBadRequest)
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/youtubei/v1/search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, searchDoc)
	})
	mux.HandleFunc("/channel/UCscrape", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(scrapedPage))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	engine.Init(engine.Config{HTTPClient: srv.Client(), InnertubeBaseURL: srv.URL})
	return srv
}

func newTestClient(t *testing.T) *Innertube {
	srv := newTestServer(t)
	return NewInnertube(engine.Config{HTTPClient: srv.Client(), InnertubeBaseURL: srv.URL})
}

func TestFetchItemMergesPlayerAndNext(t *testing.T) {
	it := newTestClient(t)
	doc, err := it.FetchItem(context.Background(), "vid1")
	if err != nil {
		t.Fatalf("FetchItem: %v", err)
	}
	if got, _ := doc.Str("videoDetails", "title"); got != "One" {
		t.Errorf("title = %q, want One", got)
	}
	if got, _ := doc.First("videoSecondaryInfoRenderer").Text("attributedDescription"); got != "about one" {
		t.Errorf("description = %q, want %q", got, "about one")
	}
}

func TestFetchItemErrorMapping(t *testing.T) {
	it := newTestClient(t)
	tests := []struct {
		id   string
		want error
	}{
		{"gone", upstream.ErrNotFound},
		{"age", upstream.ErrUnavailable},
		{"nonexistent", upstream.ErrNotFound},
	}
	for _, tt := range tests {
		_, err := it.FetchItem(context.Background(), tt.id)
		if !errors.Is(err, tt.want) {
			t.Errorf("FetchItem(%q) error = %v, want %v", tt.id, err, tt.want)
		}
	}
}

func TestFetchCollection(t *testing.T) {
	it := newTestClient(t)

	doc, err := it.FetchCollection(context.Background(), "@good")
	if err != nil {
		t.Fatalf("FetchCollection(@good): %v", err)
	}
	if got, _ := doc.Str("metadata", "channelMetadataRenderer", "externalId"); got != "UCgood" {
		t.Errorf("externalId = %q, want UCgood", got)
	}

	if _, err := it.FetchCollection(context.Background(), "UCalert"); !errors.Is(err, upstream.ErrNotFound) {
		t.Errorf("alert channel error = %v, want not found", err)
	}
	if _, err := it.FetchCollection(context.Background(), "UCmissing"); !errors.Is(err, upstream.ErrNotFound) {
		t.Errorf("404 channel error = %v, want not found", err)
	}
	if _, err := it.FetchCollection(context.Background(), "@nobody"); !errors.Is(err, upstream.ErrNotFound) {
		t.Errorf("unresolvable handle error = %v, want not found", err)
	}
}

func TestFetchCollectionFallsBackToPage(t *testing.T) {
	it := newTestClient(t)
	doc, err := it.FetchCollection(context.Background(), "UCscrape")
	if err != nil {
		t.Fatalf("FetchCollection(UCscrape): %v", err)
	}
	if got, _ := doc.Str("metadata", "channelMetadataRenderer", "title"); got != `Scraped "quoted" {braces}` {
		t.Errorf("scraped title = %q", got)
	}
}

func TestFetchCollectionPageNotFoundOutranksBrowseFailure(t *testing.T) {
	it := newTestClient(t)
	_, err := it.FetchCollection(context.Background(), "UCbroken")
	if !errors.Is(err, upstream.ErrNotFound) {
		t.Fatalf("FetchCollection(UCbroken) error = %v, want not found", err)
	}
	if errors.Is(err, upstream.ErrTransport) {
		t.Errorf("error %v still carries the browse transport failure", err)
	}
}

func TestListingFirstPageAndContinuation(t *testing.T) {
	it := newTestClient(t)
	ctx := context.Background()

	page, err := it.FetchListingFirstPage(ctx, upstream.ListingSource{CollectionID: "UCgood", Tab: "videos"})
	if err != nil {
		t.Fatalf("FetchListingFirstPage: %v", err)
	}
	if len(page.Items) != 2 || page.Cursor != "tok1" {
		t.Fatalf("first page = %d items, cursor %q; want 2, tok1", len(page.Items), page.Cursor)
	}

	next, err := it.FetchListingContinuation(ctx, page)
	if err != nil {
		t.Fatalf("FetchListingContinuation: %v", err)
	}
	if len(next.Items) != 1 || !next.Done() {
		t.Errorf("continuation = %d items, cursor %q; want 1 and done", len(next.Items), next.Cursor)
	}
	if next.Source.Tab != "videos" {
		t.Errorf("continuation lost its source: %+v", next.Source)
	}

	_, err = it.FetchListingFirstPage(ctx, upstream.ListingSource{CollectionID: "UCgood", Tab: "podcasts"})
	if !errors.Is(err, upstream.ErrNotFound) {
		t.Errorf("missing tab error = %v, want not found", err)
	}
}

func TestFetchCollectionTabAbsentOrSelected(t *testing.T) {
	it := newTestClient(t)
	collection := rawnode.MustParse(channelDoc)

	tab, err := it.FetchCollectionTab(context.Background(), collection, "channels")
	if err != nil || !tab.Missing() {
		t.Errorf("absent tab = %v, %v; want Missing, nil", tab.Value(), err)
	}
	tab, err = it.FetchCollectionTab(context.Background(), collection, "home")
	if err != nil || !tab.Has("header") {
		t.Errorf("selected tab should reuse the channel document, got err %v", err)
	}
}

func TestFetchSearch(t *testing.T) {
	it := newTestClient(t)
	page, err := it.FetchSearch(context.Background(), "go")
	if err != nil {
		t.Fatalf("FetchSearch: %v", err)
	}
	// the shelf row is kept; the aggregator drops rows without an id
	if len(page.Items) != 3 {
		t.Errorf("search rows = %d, want 3", len(page.Items))
	}
	if page.Cursor != "stok" || page.Source.Query != "go" {
		t.Errorf("cursor %q query %q", page.Cursor, page.Source.Query)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1};var x = 2;`, `{"a": 1}`},
		{`{"s": "}\"{"} trailing`, `{"s": "}\"{"}`},
		{`{"s": "back\\"} tail`, `{"s": "back\\"}`},
		{`not json`, ``},
		{`{"open": true`, ``},
	}
	for _, tt := range tests {
		got := string(extractJSON([]byte(tt.in)))
		if got != tt.want {
			t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestChannelURL(t *testing.T) {
	base := "https://www.youtube.com"
	tests := map[string]string{
		"UCabc":                       base + "/channel/UCabc",
		"@handle":                     base + "/@handle",
		"handle":                      base + "/@handle",
		"https://youtube.com/@handle": "https://youtube.com/@handle",
	}
	for in, want := range tests {
		if got := channelURL(base, in); got != want {
			t.Errorf("channelURL(%q) = %q, want %q", in, got, want)
		}
	}
}
