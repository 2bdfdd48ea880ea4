// Package wikimedia resolves ranked photo galleries from Wikimedia Commons
// categories and image titles.
package wikimedia

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/water-fountains/datablue/internal/model"
)

const defaultAPIURL = "https://commons.wikimedia.org/w/api.php"

// Client resolves image galleries for features.
type Client interface {
	// FillGallery fills the feature's gallery envelope from its identifying
	// media tags (commons category or featured image). When no media is
	// found the envelope is left empty; the caller decides on a fallback.
	// cache is a run-scoped lookup avoiding duplicate category fetches.
	FillGallery(ctx context.Context, f *model.Feature, locationName string, verbose bool, cache *RunCache) error
}

// Option configures the client.
type Option func(*httpClient)

// WithAPIURL overrides the Commons API endpoint.
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

// WithRateLimit sets the request rate toward Commons.
func WithRateLimit(perSec float64) Option {
	return func(c *httpClient) {
		if perSec > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSec), 2)
		}
	}
}

// WithMaxImages caps gallery size.
func WithMaxImages(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.maxImages = n
		}
	}
}

type httpClient struct {
	apiURL    string
	http      *http.Client
	limiter   *rate.Limiter
	maxImages int
}

// NewClient creates a Wikimedia Commons client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		apiURL: defaultAPIURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:   rate.NewLimiter(rate.Limit(4), 2),
		maxImages: 50,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FillGallery implements Client.
func (c *httpClient) FillGallery(ctx context.Context, f *model.Feature, locationName string, verbose bool, cache *RunCache) error {
	env := f.Properties.Get(model.PropGallery)
	category := f.Properties.Get(model.PropWikiCommonsName).StringValue()
	featured := f.Properties.Get(model.PropFeaturedImage).StringValue()

	var images []model.GalleryImage

	if category != "" {
		cached, ok := cache.Get(category)
		if ok {
			images = cached
		} else {
			fetched, err := c.categoryImages(ctx, category)
			if err != nil {
				return err
			}
			cache.Put(category, fetched)
			images = fetched
		}
	}

	if len(images) == 0 && featured != "" {
		img, err := c.imageByTitle(ctx, featured)
		if err != nil {
			return err
		}
		if img != nil {
			images = []model.GalleryImage{*img}
		}
	}

	if len(images) == 0 {
		if verbose {
			zap.L().Info("wikimedia: no gallery found",
				zap.String("location", locationName),
				zap.String("category", category),
			)
		}
		return nil
	}

	images = rank(images, featured)
	if len(images) > c.maxImages {
		images = images[:c.maxImages]
	}
	env.SetValue(images, "Wikimedia Commons", commonsCategoryURL(category))

	if verbose {
		zap.L().Info("wikimedia: filled gallery",
			zap.String("location", locationName),
			zap.String("category", category),
			zap.Int("images", len(images)),
		)
	}
	return nil
}

// rank orders gallery entries: the featured image first, the rest by page
// title.
func rank(images []model.GalleryImage, featured string) []model.GalleryImage {
	sort.SliceStable(images, func(i, j int) bool {
		if featured != "" {
			fi := images[i].PageTitle == "File:"+featured || images[i].PageTitle == featured
			fj := images[j].PageTitle == "File:"+featured || images[j].PageTitle == featured
			if fi != fj {
				return fi
			}
		}
		return images[i].PageTitle < images[j].PageTitle
	})
	return images
}

func commonsCategoryURL(category string) string {
	if category == "" {
		return ""
	}
	return "https://commons.wikimedia.org/wiki/Category:" + url.PathEscape(category)
}

type queryResponse struct {
	Query struct {
		Pages map[string]pageJSON `json:"pages"`
	} `json:"query"`
	Error *struct {
		Info string `json:"info"`
	} `json:"error"`
}

type pageJSON struct {
	Title     string `json:"title"`
	Missing   *any   `json:"missing,omitempty"`
	ImageInfo []struct {
		ThumbURL       string `json:"thumburl"`
		URL            string `json:"url"`
		DescriptionURL string `json:"descriptionurl"`
	} `json:"imageinfo"`
}

// categoryImages lists the image files of a Commons category with thumbnail
// URLs.
func (c *httpClient) categoryImages(ctx context.Context, category string) ([]model.GalleryImage, error) {
	q := url.Values{
		"action":        []string{"query"},
		"generator":     []string{"categorymembers"},
		"gcmtitle":      []string{"Category:" + category},
		"gcmtype":       []string{"file"},
		"gcmlimit":      []string{"100"},
		"prop":          []string{"imageinfo"},
		"iiprop":        []string{"url"},
		"iiurlwidth":    []string{"640"},
		"format":        []string{"json"},
		"formatversion": []string{"1"},
	}
	parsed, err := c.query(ctx, q, "category members")
	if err != nil {
		return nil, err
	}

	images := make([]model.GalleryImage, 0, len(parsed.Query.Pages))
	for _, p := range parsed.Query.Pages {
		if p.Missing != nil || len(p.ImageInfo) == 0 {
			continue
		}
		src := p.ImageInfo[0].ThumbURL
		if src == "" {
			src = p.ImageInfo[0].URL
		}
		images = append(images, model.GalleryImage{
			Source:      src,
			PageTitle:   p.Title,
			Category:    category,
			Description: p.ImageInfo[0].DescriptionURL,
		})
	}
	return images, nil
}

// imageByTitle resolves a single image file to a gallery entry.
func (c *httpClient) imageByTitle(ctx context.Context, title string) (*model.GalleryImage, error) {
	q := url.Values{
		"action":     []string{"query"},
		"titles":     []string{"File:" + title},
		"prop":       []string{"imageinfo"},
		"iiprop":     []string{"url"},
		"iiurlwidth": []string{"640"},
		"format":     []string{"json"},
	}
	parsed, err := c.query(ctx, q, "image info")
	if err != nil {
		return nil, err
	}
	for _, p := range parsed.Query.Pages {
		if p.Missing != nil || len(p.ImageInfo) == 0 {
			continue
		}
		src := p.ImageInfo[0].ThumbURL
		if src == "" {
			src = p.ImageInfo[0].URL
		}
		return &model.GalleryImage{
			Source:      src,
			PageTitle:   p.Title,
			Description: p.ImageInfo[0].DescriptionURL,
		}, nil
	}
	return nil, nil
}

func (c *httpClient) query(ctx context.Context, q url.Values, what string) (*queryResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "wikimedia: rate limiter")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrapf(err, "wikimedia: build %s request", what)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "wikimedia: %s request", what)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "wikimedia: read %s response", what)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("wikimedia: %s status %d", what, resp.StatusCode)
	}

	var parsed queryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrapf(err, "wikimedia: decode %s response", what)
	}
	if parsed.Error != nil {
		return nil, eris.Errorf("wikimedia: api error: %s", parsed.Error.Info)
	}
	return &parsed, nil
}
