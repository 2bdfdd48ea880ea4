package wikimedia

import (
	"sync"

	"github.com/water-fountains/datablue/internal/model"
)

// RunCache is a location-scoped gallery lookup owned by the calling stage
// for one pipeline run. Features sharing a Commons category reuse the first
// fetch instead of refetching identical media.
type RunCache struct {
	mu sync.Mutex
	m  map[string][]model.GalleryImage
}

// NewRunCache creates an empty run cache.
func NewRunCache() *RunCache {
	return &RunCache{m: make(map[string][]model.GalleryImage)}
}

// Get returns the cached gallery for a category key.
func (c *RunCache) Get(key string) ([]model.GalleryImage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	images, ok := c.m[key]
	return images, ok
}

// Put stores a fetched gallery, including empty results so misses are not
// refetched.
func (c *RunCache) Put(key string, images []model.GalleryImage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = images
}

// Len returns the number of cached categories.
func (c *RunCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
