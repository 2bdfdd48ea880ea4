// Package streetview builds static street-level imagery placeholders for
// features without a media gallery.
package streetview

import (
	"fmt"
	"net/url"

	"github.com/twpayne/go-geom"

	"github.com/water-fountains/datablue/internal/model"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/streetview"

// Client constructs placeholder image references by coordinate. It performs
// no network calls; the reference is resolved by the end client.
type Client struct {
	baseURL string
	key     string
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the static imagery endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// NewClient creates a street-level imagery client. key may be empty; the
// reference is then unsigned.
func NewClient(key string, opts ...Option) *Client {
	c := &Client{baseURL: defaultBaseURL, key: key}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StaticPlaceholder returns a single placeholder gallery entry for the
// coordinate.
func (c *Client) StaticPlaceholder(coord geom.Coord) model.GalleryImage {
	q := url.Values{
		"size":     []string{"640x640"},
		"location": []string{fmt.Sprintf("%f,%f", coord.Y(), coord.X())},
	}
	if c.key != "" {
		q.Set("key", c.key)
	}
	return model.GalleryImage{
		Source:      c.baseURL + "?" + q.Encode(),
		PageTitle:   "Street-level preview",
		Description: "Automatically selected street-level image near the feature",
	}
}
