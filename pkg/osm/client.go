// Package osm fetches raw drinking-water features from an Overpass API
// endpoint.
package osm

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
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://overpass-api.de/api/interpreter"

// Record is one raw OSM feature as returned by Overpass. Tags carry the
// source's key-value properties, including the optional "wikidata"
// cross-reference.
type Record struct {
	ID   int64
	Type string // node, way or relation
	Lat  float64
	Lng  float64
	Tags map[string]string
}

// WikidataRef returns the Wikidata QID the record references, or "" when
// the reference field is absent or empty.
func (r Record) WikidataRef() string {
	return r.Tags["wikidata"]
}

// URL returns the canonical browse URL of the record.
func (r Record) URL() string {
	return fmt.Sprintf("https://www.openstreetmap.org/%s/%d", r.Type, r.ID)
}

// Client fetches OSM records for a bounding box.
type Client interface {
	ByBoundingBox(ctx context.Context, bounds *geom.Bounds) ([]Record, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default Overpass endpoint.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the request rate toward the Overpass endpoint.
func WithRateLimit(perSec float64) Option {
	return func(c *httpClient) {
		if perSec > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
		}
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Overpass API client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ByBoundingBox implements Client. It queries drinking-water amenities and
// drinking fountains within the box.
func (c *httpClient) ByBoundingBox(ctx context.Context, bounds *geom.Bounds) ([]Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "osm: rate limiter")
	}

	box := fmt.Sprintf("%f,%f,%f,%f", bounds.Min(1), bounds.Min(0), bounds.Max(1), bounds.Max(0))
	query := fmt.Sprintf(`[out:json][timeout:90];
(
  node["amenity"="drinking_water"](%[1]s);
  node["man_made"="drinking_fountain"](%[1]s);
  way["amenity"="drinking_water"](%[1]s);
  way["man_made"="drinking_fountain"](%[1]s);
);
out center;`, box)

	form := url.Values{"data": []string{query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "osm: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "osm: overpass request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "osm: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("osm: overpass status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed overpassResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "osm: decode response")
	}

	records := make([]Record, 0, len(parsed.Elements))
	for _, el := range parsed.Elements {
		lat, lng := el.Lat, el.Lon
		if el.Center != nil {
			lat, lng = el.Center.Lat, el.Center.Lon
		}
		tags := el.Tags
		if tags == nil {
			tags = map[string]string{}
		}
		records = append(records, Record{
			ID:   el.ID,
			Type: el.Type,
			Lat:  lat,
			Lng:  lng,
			Tags: tags,
		})
	}

	zap.L().Debug("osm: fetched records",
		zap.String("bbox", box),
		zap.Int("count", len(records)),
	)
	return records, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
