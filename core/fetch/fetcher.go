// Package fetch implements the Fetcher interface.
// It reads exam documents over HTTP or from the local filesystem.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gaurav-prasanna/texpipe/core"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "texpipe/1.0 (https://github.com/gaurav-prasanna/texpipe)"
)

// Fetcher fetches exam documents from URLs or files.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with a sensible timeout.
func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// IsURL reports whether src is an http(s) URL rather than a path.
func IsURL(src string) bool {
	u, err := url.Parse(src)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch retrieves the document at src.
func (f *Fetcher) Fetch(ctx context.Context, src string) (*core.FetchResult, error) {
	if IsURL(src) {
		return f.fetchHTTP(ctx, src)
	}
	return fetchFile(src)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) (*core.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json, text/html;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &core.FetchResult{
		Source:      rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func fetchFile(path string) (*core.FetchResult, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &core.FetchResult{
		Source:      path,
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Body:        body,
	}, nil
}
