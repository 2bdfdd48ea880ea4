package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/water-fountains/datablue/internal/model"
	"github.com/water-fountains/datablue/pkg/wikimedia"
)

// sampleStep returns the 1-in-step log sampling interval for a collection
// size. It only controls log volume, never behavior.
func sampleStep(total int) int {
	step := 1
	if total > 50 {
		step = 10
		if total > 300 {
			step = 50
			if total > 600 {
				step = 100
				if total > 1000 {
					step = 200
					if total > 2000 {
						step = 500
					}
				}
			}
		}
	}
	return step
}

// fillImageGalleries enriches every feature with a ranked photo gallery, or
// a single street-level placeholder when no media is found. One network
// unit is fanned out per feature; any unit's failure fails the stage.
func (p *Pipeline) fillImageGalleries(ctx context.Context, coll *model.FeatureCollection, locationName string, debugAll bool) error {
	tot := coll.Len()
	step := sampleStep(tot)
	cache := wikimedia.NewRunCache()

	zap.L().Info("pipeline: starting image galleries",
		zap.String("location", locationName),
		zap.Int("features", tot),
		zap.Int("log_step", step),
	)

	g, gCtx := errgroup.WithContext(ctx)
	for i, f := range coll.Features {
		verbose := debugAll || (i+1)%step == 0
		g.Go(func() error {
			if err := p.wikimedia.FillGallery(gCtx, f, locationName, verbose, cache); err != nil {
				return err
			}
			env := f.Properties.Get(model.PropGallery)
			if len(env.Gallery()) > 0 {
				return nil
			}
			// Fall back to a single placeholder; the comment marks the
			// gallery so the essence projection never presents it as a
			// real photo.
			placeholder := p.streetview.StaticPlaceholder(f.Geometry)
			env.Value = []model.GalleryImage{placeholder}
			env.SourceName = "Street-level imagery"
			env.SourceURL = placeholder.Source
			env.Status = model.StatusInfo
			env.Comments = model.PlaceholderComment
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "pipeline: fill image galleries")
	}
	return nil
}
