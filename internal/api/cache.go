package api

import (
	"context"
	"sync"
	"time"

	"github.com/water-fountains/datablue/internal/model"
)

// Generator produces collections for a location. Implemented by
// pipeline.Pipeline.
type Generator interface {
	Run(ctx context.Context, locationName string) (*model.FeatureCollection, error)
	Essence(coll *model.FeatureCollection) *model.EssenceCollection
}

// entry is one location's generated data. The full collection is
// authoritative; the essence projection is derived once per generation.
type entry struct {
	coll      *model.FeatureCollection
	essence   *model.EssenceCollection
	generated time.Time
}

// cache regenerates and serves collections per location. A generation run
// is ephemeral state, not persistence: entries live in memory and expire
// after the configured TTL.
type cache struct {
	gen Generator
	ttl time.Duration

	mu       sync.Mutex
	entries  map[string]*entry
	inflight map[string]*sync.Mutex
}

func newCache(gen Generator, ttl time.Duration) *cache {
	return &cache{
		gen:      gen,
		ttl:      ttl,
		entries:  make(map[string]*entry),
		inflight: make(map[string]*sync.Mutex),
	}
}

// get returns the location's entry, regenerating when absent, expired, or
// refresh is forced. Concurrent requests for the same location share one
// generation run.
func (c *cache) get(ctx context.Context, location string, refresh bool) (*entry, error) {
	c.mu.Lock()
	lock, ok := c.inflight[location]
	if !ok {
		lock = &sync.Mutex{}
		c.inflight[location] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	e := c.entries[location]
	c.mu.Unlock()
	if e != nil && !refresh && time.Since(e.generated) < c.ttl {
		return e, nil
	}

	coll, err := c.gen.Run(ctx, location)
	if err != nil {
		return nil, err
	}
	e = &entry{
		coll:      coll,
		essence:   c.gen.Essence(coll),
		generated: time.Now(),
	}
	c.mu.Lock()
	c.entries[location] = e
	c.mu.Unlock()
	return e, nil
}
