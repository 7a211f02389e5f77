package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/rawnode"
	"github.com/anatolykoptev/go_tube/internal/engine/upstream"
)

// YouTube Innertube API: WEB client context, session and the POST primitive.

const (
	ytDefaultBaseURL = "https://www.youtube.com"
	ytWebVersion     = "2.20250222.10.00"
	ytMaxResponse    = 8 << 20
)

type ytWebClientCtx struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	VisitorData   string `json:"visitorData,omitempty"`
	Hl            string `json:"hl,omitempty"`
	Gl            string `json:"gl,omitempty"`
}

type ytWebUser struct {
	EnableSafetyMode bool `json:"enableSafetyMode"`
}

type ytWebReqCtx struct {
	UseSsl bool `json:"useSsl"`
}

// Innertube is an upstream.Client over the YouTube WEB Innertube API. Its
// session (HTTP client and visitor data) lives as long as the value.
type Innertube struct {
	baseURL       string
	clientVersion string
	hl, gl        string
	http          *http.Client
	visitorData   string
}

// NewInnertube builds a client from the engine configuration.
func NewInnertube(c engine.Config) *Innertube {
	it := &Innertube{
		baseURL:       strings.TrimRight(c.InnertubeBaseURL, "/"),
		clientVersion: c.ClientVersion,
		hl:            c.Hl,
		gl:            c.Gl,
		http:          c.HTTPClient,
		visitorData:   generateVisitorData(),
	}
	if it.baseURL == "" {
		it.baseURL = ytDefaultBaseURL
	}
	if it.clientVersion == "" {
		it.clientVersion = ytWebVersion
	}
	if it.hl == "" {
		it.hl = "en"
	}
	if it.gl == "" {
		it.gl = "US"
	}
	if it.http == nil {
		it.http = http.DefaultClient
	}
	return it
}

// generateVisitorData creates a random 11-char visitor ID for Innertube requests.
func generateVisitorData() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	b := make([]byte, 11)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))] //nolint:gosec // non-cryptographic use
	}
	return string(b)
}

// webContext builds the standard WEB client context for Innertube payloads.
func (it *Innertube) webContext() map[string]any {
	return map[string]any{
		"client": ytWebClientCtx{
			ClientName:    "WEB",
			ClientVersion: it.clientVersion,
			VisitorData:   it.visitorData,
			Hl:            it.hl,
			Gl:            it.gl,
		},
		"user":    ytWebUser{EnableSafetyMode: false},
		"request": ytWebReqCtx{UseSsl: true},
	}
}

// post sends payload to /youtubei/v1/<endpoint> and decodes the response.
// id labels errors. 404 maps to NotFound; network failures and other
// statuses map to Transport.
func (it *Innertube) post(ctx context.Context, endpoint, id string, payload map[string]any) (rawnode.Node, error) {
	engine.IncrInnertubeCalls()
	payload["context"] = it.webContext()
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return rawnode.Node{}, fmt.Errorf("innertube %s: encode: %w", endpoint, err)
	}

	url := it.baseURL + "/youtubei/v1/" + endpoint + "?prettyPrint=false"
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "*/*")
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		req.Header.Set("X-Youtube-Client-Name", "1")
		req.Header.Set("X-Youtube-Client-Version", it.clientVersion)
		req.Header.Set("X-Goog-Visitor-Id", it.visitorData)
		req.Header.Set("Origin", ytDefaultBaseURL)
		req.Header.Set("Referer", ytDefaultBaseURL+"/")
		return it.http.Do(req)
	})
	if err != nil {
		engine.IncrInnertubeErrors()
		return rawnode.Node{}, upstream.Transport(endpoint, id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		engine.IncrInnertubeErrors()
		return rawnode.Node{}, upstream.NotFound(endpoint, id, nil)
	case resp.StatusCode != http.StatusOK:
		engine.IncrInnertubeErrors()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return rawnode.Node{}, upstream.Transport(endpoint, id, fmt.Errorf("HTTP %d: %s", resp.StatusCode, engine.TruncateRunes(string(snippet), 200, "...")))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, ytMaxResponse))
	if err != nil {
		engine.IncrInnertubeErrors()
		return rawnode.Node{}, upstream.Transport(endpoint, id, err)
	}
	doc, err := rawnode.Parse(data)
	if err != nil {
		engine.IncrInnertubeErrors()
		return rawnode.Node{}, upstream.Transport(endpoint, id, err)
	}
	slog.Debug("innertube: response", slog.String("endpoint", endpoint), slog.String("id", id), slog.Int("bytes", len(data)))
	return doc, nil
}
