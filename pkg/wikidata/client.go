// Package wikidata fetches fountain records and entity labels from the
// Wikidata SPARQL and entity APIs.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/water-fountains/datablue/internal/model"
)

const (
	defaultSparqlURL = "https://query.wikidata.org/sparql"
	defaultAPIURL    = "https://www.wikidata.org/w/api.php"

	// Entity API caps ids per request.
	maxIDsPerRequest = 50
)

// Record is one raw Wikidata fountain entity, reduced to the claims the
// pipeline consumes.
type Record struct {
	ID              string
	Lat             float64
	Lng             float64
	Labels          map[string]string // locale → label
	Sitelinks       map[string]string // locale → article URL
	CommonsCategory string            // P373
	Image           string            // P18 file name
	Inception       string            // P571, year
	CreatorQID      string            // P170
	OperatorQID     string            // P137
	WaterType       string
}

// URL returns the canonical browse URL of the record.
func (r Record) URL() string {
	return "https://www.wikidata.org/wiki/" + r.ID
}

// Client talks to Wikidata.
type Client interface {
	IDsByBoundingBox(ctx context.Context, bounds *geom.Bounds) ([]string, error)
	ByIDs(ctx context.Context, ids []string) ([]Record, error)
	FillArtistName(ctx context.Context, f *model.Feature) error
	FillOperatorInfo(ctx context.Context, f *model.Feature) error
}

// Option configures the client.
type Option func(*httpClient)

// WithSparqlURL overrides the SPARQL endpoint.
func WithSparqlURL(u string) Option {
	return func(c *httpClient) {
		c.sparqlURL = u
	}
}

// WithAPIURL overrides the entity API endpoint.
func WithAPIURL(u string) Option {
	return func(c *httpClient) {
		c.apiURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the request rate toward Wikidata.
func WithRateLimit(perSec float64) Option {
	return func(c *httpClient) {
		if perSec > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
		}
	}
}

type httpClient struct {
	sparqlURL string
	apiURL    string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a Wikidata client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		sparqlURL: defaultSparqlURL,
		apiURL:    defaultAPIURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(4), 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var qidRe = regexp.MustCompile(`^Q\d+$`)

// IsQID reports whether s looks like a Wikidata entity id.
func IsQID(s string) bool {
	return qidRe.MatchString(s)
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// IDsByBoundingBox implements Client. It returns the QIDs of all fountain
// entities located within the box.
func (c *httpClient) IDsByBoundingBox(ctx context.Context, bounds *geom.Bounds) ([]string, error) {
	query := fmt.Sprintf(`SELECT ?place WHERE {
  SERVICE wikibase:box {
    ?place wdt:P625 ?location .
    bd:serviceParam wikibase:cornerSouthWest "Point(%f %f)"^^geo:wktLiteral .
    bd:serviceParam wikibase:cornerNorthEast "Point(%f %f)"^^geo:wktLiteral .
  }
  ?place wdt:P31/wdt:P279* wd:Q1630622 .
}`, bounds.Min(0), bounds.Min(1), bounds.Max(0), bounds.Max(1))

	body, err := c.get(ctx, c.sparqlURL+"?format=json&query="+url.QueryEscape(query), "sparql")
	if err != nil {
		return nil, err
	}

	var parsed sparqlResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "wikidata: decode sparql response")
	}

	ids := make([]string, 0, len(parsed.Results.Bindings))
	for _, b := range parsed.Results.Bindings {
		place, ok := b["place"]
		if !ok {
			continue
		}
		qid := place.Value[strings.LastIndex(place.Value, "/")+1:]
		if IsQID(qid) {
			ids = append(ids, qid)
		}
	}
	zap.L().Debug("wikidata: ids by bounding box", zap.Int("count", len(ids)))
	return ids, nil
}

// ByIDs implements Client. An empty id list returns an empty collection
// without issuing a network call.
func (c *httpClient) ByIDs(ctx context.Context, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return []Record{}, nil
	}

	records := make([]Record, 0, len(ids))
	for start := 0; start < len(ids); start += maxIDsPerRequest {
		end := start + maxIDsPerRequest
		if end > len(ids) {
			end = len(ids)
		}
		batch, err := c.entitiesByIDs(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	return records, nil
}

type entitiesResponse struct {
	Entities map[string]entityJSON `json:"entities"`
	Error    *struct {
		Info string `json:"info"`
	} `json:"error"`
}

type entityJSON struct {
	ID      string `json:"id"`
	Missing *any   `json:"missing,omitempty"`
	Labels  map[string]struct {
		Value string `json:"value"`
	} `json:"labels"`
	Sitelinks map[string]struct {
		Title string `json:"title"`
	} `json:"sitelinks"`
	Claims map[string][]claimJSON `json:"claims"`
}

type claimJSON struct {
	Mainsnak struct {
		Datavalue struct {
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

func (c *httpClient) entitiesByIDs(ctx context.Context, ids []string) ([]Record, error) {
	q := url.Values{
		"action": []string{"wbgetentities"},
		"ids":    []string{strings.Join(ids, "|")},
		"props":  []string{"labels|sitelinks|claims"},
		"format": []string{"json"},
	}
	body, err := c.get(ctx, c.apiURL+"?"+q.Encode(), "entities")
	if err != nil {
		return nil, err
	}

	var parsed entitiesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "wikidata: decode entities response")
	}
	if parsed.Error != nil {
		return nil, eris.Errorf("wikidata: entity api error: %s", parsed.Error.Info)
	}

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		ent, ok := parsed.Entities[id]
		if !ok || ent.Missing != nil {
			zap.L().Info("wikidata: referenced entity not found", zap.String("qid", id))
			continue
		}
		records = append(records, parseEntity(ent))
	}
	return records, nil
}

func parseEntity(ent entityJSON) Record {
	r := Record{
		ID:        ent.ID,
		Labels:    map[string]string{},
		Sitelinks: map[string]string{},
	}
	for locale, l := range ent.Labels {
		r.Labels[locale] = l.Value
	}
	for site, sl := range ent.Sitelinks {
		locale, ok := strings.CutSuffix(site, "wiki")
		if !ok || locale == "commons" {
			continue
		}
		r.Sitelinks[locale] = fmt.Sprintf("https://%s.wikipedia.org/wiki/%s",
			locale, url.PathEscape(strings.ReplaceAll(sl.Title, " ", "_")))
	}

	if lng, lat, ok := coordClaim(ent.Claims["P625"]); ok {
		r.Lng, r.Lat = lng, lat
	}
	r.CommonsCategory = stringClaim(ent.Claims["P373"])
	r.Image = stringClaim(ent.Claims["P18"])
	r.Inception = timeClaimYear(ent.Claims["P571"])
	r.CreatorQID = entityClaim(ent.Claims["P170"])
	r.OperatorQID = entityClaim(ent.Claims["P137"])
	return r
}

func stringClaim(claims []claimJSON) string {
	for _, cl := range claims {
		var s string
		if err := json.Unmarshal(cl.Mainsnak.Datavalue.Value, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

func entityClaim(claims []claimJSON) string {
	for _, cl := range claims {
		var v struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(cl.Mainsnak.Datavalue.Value, &v); err == nil && v.ID != "" {
			return v.ID
		}
	}
	return ""
}

func timeClaimYear(claims []claimJSON) string {
	for _, cl := range claims {
		var v struct {
			Time string `json:"time"`
		}
		if err := json.Unmarshal(cl.Mainsnak.Datavalue.Value, &v); err == nil && len(v.Time) >= 5 {
			// +1870-00-00T00:00:00Z → 1870
			return strings.TrimPrefix(v.Time[:5], "+")
		}
	}
	return ""
}

func coordClaim(claims []claimJSON) (lng, lat float64, ok bool) {
	for _, cl := range claims {
		var v struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		}
		if err := json.Unmarshal(cl.Mainsnak.Datavalue.Value, &v); err == nil {
			return v.Longitude, v.Latitude, true
		}
	}
	return 0, 0, false
}

func (c *httpClient) get(ctx context.Context, u, what string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "wikidata: rate limiter")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "wikidata: build %s request", what)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "wikidata: %s request", what)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "wikidata: read %s response", what)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("wikidata: %s status %d", what, resp.StatusCode)
	}
	return body, nil
}
