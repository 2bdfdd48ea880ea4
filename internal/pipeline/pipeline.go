// Package pipeline implements the conflation-and-enrichment pipeline: given
// the raw OSM and Wikidata collections for a location, it produces the
// enriched, uniquely identified, client-ready collection.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/water-fountains/datablue/internal/model"
	"github.com/water-fountains/datablue/internal/registry"
	"github.com/water-fountains/datablue/pkg/osm"
	"github.com/water-fountains/datablue/pkg/streetview"
	"github.com/water-fountains/datablue/pkg/wikidata"
	"github.com/water-fountains/datablue/pkg/wikimedia"
	"github.com/water-fountains/datablue/pkg/wikipedia"
)

// Pipeline orchestrates one location's generation run: concurrent source
// fetch, gap filling, conflation, the five enrichment stages in fixed
// order, and identity assignment. Concurrent runs for different locations
// share only the read-only registries.
type Pipeline struct {
	locations  *registry.Locations
	props      *registry.Properties
	osm        osm.Client
	wikidata   wikidata.Client
	wikimedia  wikimedia.Client
	wikipedia  wikipedia.Client
	streetview *streetview.Client
}

// New creates a Pipeline with all dependencies.
func New(
	locations *registry.Locations,
	props *registry.Properties,
	osmClient osm.Client,
	wdClient wikidata.Client,
	wmClient wikimedia.Client,
	wpClient wikipedia.Client,
	svClient *streetview.Client,
) *Pipeline {
	return &Pipeline{
		locations:  locations,
		props:      props,
		osm:        osmClient,
		wikidata:   wdClient,
		wikimedia:  wmClient,
		wikipedia:  wpClient,
		streetview: svClient,
	}
}

// Properties exposes the property registry backing this pipeline's
// collections.
func (p *Pipeline) Properties() *registry.Properties {
	return p.props
}

// Locations exposes the location registry.
func (p *Pipeline) Locations() *registry.Locations {
	return p.locations
}

// Run generates the enriched collection for a named location. An unknown
// name fails before any network call. Any adapter or stage failure aborts
// the run; the caller never receives a partial collection.
func (p *Pipeline) Run(ctx context.Context, locationName string) (*model.FeatureCollection, error) {
	start := time.Now()
	loc, ok := p.locations.Get(locationName)
	if !ok {
		return nil, eris.Errorf("pipeline: location not found in config: %s", locationName)
	}

	log := zap.L().With(
		zap.String("location", locationName),
		zap.String("run_id", uuid.NewString()[:8]),
	)
	log.Info("pipeline: processing location", zap.String("label", loc.Label))

	bounds := loc.BoundingBox.Bounds()
	debugAll := strings.Contains(locationName, "test")

	// Fetch both source collections concurrently.
	var osmRecs []osm.Record
	var wdRecs []wikidata.Record

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := p.osm.ByBoundingBox(gCtx, bounds)
		if err != nil {
			return eris.Wrap(err, "pipeline: collect osm data")
		}
		osmRecs = osm.ApplyImpliedProperties(recs)
		return nil
	})
	g.Go(func() error {
		ids, err := p.wikidata.IDsByBoundingBox(gCtx, bounds)
		if err != nil {
			return eris.Wrap(err, "pipeline: collect wikidata ids")
		}
		recs, err := p.wikidata.ByIDs(gCtx, ids)
		if err != nil {
			return eris.Wrap(err, "pipeline: collect wikidata records")
		}
		wdRecs = recs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	wdRecs, err := p.fillMissingWikidata(ctx, osmRecs, wdRecs)
	if err != nil {
		return nil, err
	}

	coll := p.conflate(osmRecs, wdRecs)

	// The five enrichment stages run strictly in sequence; each settles its
	// whole fan-out before the next starts, and each is all-or-nothing.
	stages := []struct {
		name string
		fn   func() error
	}{
		{"image_galleries", func() error { return p.fillImageGalleries(ctx, coll, locationName, debugAll) }},
		{"name_backfill", func() error { fillOutNames(coll); return nil }},
		{"wikipedia_summaries", func() error { return p.fillWikipediaSummaries(ctx, coll) }},
		{"artist_names", func() error { return p.fillArtistNames(ctx, coll) }},
		{"operator_info", func() error { return p.fillOperatorInfo(ctx, coll) }},
	}
	for _, stage := range stages {
		stageStart := time.Now()
		if err := stage.fn(); err != nil {
			log.Error("pipeline: stage failed",
				zap.String("stage", stage.name),
				zap.Duration("elapsed", time.Since(stageStart)),
				zap.Error(err),
			)
			return nil, err
		}
		log.Info("pipeline: stage complete",
			zap.String("stage", stage.name),
			zap.Duration("elapsed", time.Since(stageStart)),
		)
	}

	assignIdentities(coll)

	log.Info("pipeline: location processed",
		zap.Int("features", coll.Len()),
		zap.Float64("elapsed_secs", time.Since(start).Seconds()),
	)
	return coll, nil
}

// Essence derives the compact projection of a generated collection.
func (p *Pipeline) Essence(coll *model.FeatureCollection) *model.EssenceCollection {
	return Essence(coll, p.props)
}
