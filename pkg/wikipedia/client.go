// Package wikipedia fetches short article summaries from the Wikipedia REST
// API.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Client fetches article summaries.
type Client interface {
	// Summary returns the short summary of the article behind a canonical
	// article URL such as https://en.wikipedia.org/wiki/Title.
	Summary(ctx context.Context, articleURL string) (string, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithBaseURLFormat overrides the per-language REST endpoint format. The
// format receives the language subdomain, e.g.
// "https://%s.wikipedia.org/api/rest_v1/page/summary/".
func WithBaseURLFormat(format string) Option {
	return func(c *httpClient) {
		c.baseURLFormat = format
	}
}

type httpClient struct {
	baseURLFormat string
	http          *http.Client
}

// NewClient creates a Wikipedia REST client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURLFormat: "https://%s.wikipedia.org/api/rest_v1/page/summary/",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type summaryResponse struct {
	Extract string `json:"extract"`
}

// Summary implements Client.
func (c *httpClient) Summary(ctx context.Context, articleURL string) (string, error) {
	lang, title, err := splitArticleURL(articleURL)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf(c.baseURLFormat, lang) + url.PathEscape(title)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", eris.Wrap(err, "wikipedia: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "wikipedia: summary request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "wikipedia: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("wikipedia: summary status %d for %s", resp.StatusCode, articleURL)
	}

	var parsed summaryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", eris.Wrap(err, "wikipedia: decode response")
	}
	return parsed.Extract, nil
}

// splitArticleURL extracts the language subdomain and article title from a
// canonical article URL.
func splitArticleURL(articleURL string) (lang, title string, err error) {
	u, err := url.Parse(articleURL)
	if err != nil {
		return "", "", eris.Wrapf(err, "wikipedia: parse article url %q", articleURL)
	}
	host, _, ok := strings.Cut(u.Host, ".")
	if !ok || host == "" {
		return "", "", eris.Errorf("wikipedia: no language subdomain in %q", articleURL)
	}
	title = strings.TrimPrefix(u.Path, "/wiki/")
	if title == "" || title == u.Path {
		return "", "", eris.Errorf("wikipedia: no article title in %q", articleURL)
	}
	if decoded, decErr := url.PathUnescape(title); decErr == nil {
		title = decoded
	}
	return host, title, nil
}
