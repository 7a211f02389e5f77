package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/rawnode"
	"github.com/anatolykoptev/go_tube/internal/engine/upstream"
)

// ytInitialDataMarkers precede the embedded browse response in page scripts.
var ytInitialDataMarkers = []string{
	"var ytInitialData = ",
	`window["ytInitialData"] = `,
}

// fetchChannelPage scrapes ytInitialData from the channel's HTML page. The
// embedded document has the same shape as a /browse response.
func (it *Innertube) fetchChannelPage(ctx context.Context, id string) (rawnode.Node, error) {
	body, err := engine.FetchPage(ctx, channelURL(it.baseURL, id))
	if err != nil {
		var se *engine.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return rawnode.Node{}, upstream.NotFound("channel_page", id, err)
		}
		return rawnode.Node{}, upstream.Transport("channel_page", id, err)
	}
	data, err := initialDataFromHTML(body)
	if err != nil {
		return rawnode.Node{}, upstream.Transport("channel_page", id, err)
	}
	doc, err := rawnode.Parse(data)
	if err != nil {
		return rawnode.Node{}, upstream.Transport("channel_page", id, err)
	}
	return doc, nil
}

// initialDataFromHTML finds the ytInitialData assignment among the page's
// inline scripts and cuts out its JSON object.
func initialDataFromHTML(body []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("goquery parse: %w", err)
	}
	var data []byte
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		txt := s.Text()
		for _, marker := range ytInitialDataMarkers {
			idx := strings.Index(txt, marker)
			if idx < 0 {
				continue
			}
			if data = extractJSON([]byte(txt[idx+len(marker):])); data != nil {
				return false
			}
		}
		return true
	})
	if data == nil {
		return nil, errors.New("ytInitialData not found in page")
	}
	return data, nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
