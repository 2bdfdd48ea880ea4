package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/water-fountains/datablue/internal/model"
)

// fillArtistNames resolves display names for creator properties that hold
// only an identifier. One unit per feature.
func (p *Pipeline) fillArtistNames(ctx context.Context, coll *model.FeatureCollection) error {
	g, gCtx := errgroup.WithContext(ctx)
	for _, f := range coll.Features {
		g.Go(func() error {
			return p.wikidata.FillArtistName(gCtx, f)
		})
	}
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "pipeline: fill artist names")
	}
	return nil
}

// fillOperatorInfo is the analogous lookup for the operating organization.
func (p *Pipeline) fillOperatorInfo(ctx context.Context, coll *model.FeatureCollection) error {
	g, gCtx := errgroup.WithContext(ctx)
	for _, f := range coll.Features {
		g.Go(func() error {
			return p.wikidata.FillOperatorInfo(gCtx, f)
		})
	}
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "pipeline: fill operator info")
	}
	return nil
}
