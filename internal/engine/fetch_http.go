package engine

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// maxPageBytes caps HTML page reads; channel pages embed several MB of JSON.
const maxPageBytes = 8 << 20

// FetchPage GETs an HTML page with exponential backoff on retryable
// statuses. Other non-200 statuses fail immediately with a *StatusError.
// When a BrowserClient is configured it is used for its TLS fingerprint;
// otherwise Cfg.HTTPClient.
func FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	IncrPageScrapes()
	operation := func() ([]byte, error) {
		var (
			body   []byte
			status int
			err    error
		)
		if cfg.BrowserClient != nil {
			body, status, err = fetchBrowser(pageURL)
		} else {
			body, status, err = fetchHTTP(ctx, pageURL)
		}
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if IsRetryableStatus(status) {
			return nil, &StatusError{URL: pageURL, Code: status}
		}
		if status != http.StatusOK {
			return nil, backoff.Permanent(&StatusError{URL: pageURL, Code: status})
		}
		return body, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second

	return backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(3), backoff.WithMaxElapsedTime(30*time.Second))
}

// StatusError is an unexpected HTTP status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

func pageHeaders() map[string]string {
	h := ChromeHeaders()
	h["accept"] = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	h["accept-language"] = "en-US,en;q=0.9"
	return h
}

func fetchBrowser(pageURL string) ([]byte, int, error) {
	data, _, status, err := cfg.BrowserClient.Do(http.MethodGet, pageURL, pageHeaders(), nil)
	return data, status, err
}

func fetchHTTP(ctx context.Context, pageURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, 0, err
	}
	for k, v := range pageHeaders() {
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", RandomUserAgent())
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}
	body, err := readResponseBody(resp)
	return body, resp.StatusCode, err
}

// readResponseBody reads the response body, handling gzip decompression if needed.
func readResponseBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(io.LimitReader(r, maxPageBytes))
}
