package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/water-fountains/datablue/internal/model"
	"github.com/water-fountains/datablue/internal/registry"
)

// fillWikipediaSummaries fetches a short encyclopedia summary for every
// feature × locale whose article-URL envelope holds a value, and stores it
// as derived content on that same envelope, never as a new property. One
// unit is fanned out per feature × locale.
func (p *Pipeline) fillWikipediaSummaries(ctx context.Context, coll *model.FeatureCollection) error {
	g, gCtx := errgroup.WithContext(ctx)
	units := 0

	for _, f := range coll.Features {
		for _, tag := range registry.Locales {
			env := f.Properties.Get(registry.WikipediaURLKey(tag))
			if env == nil || env.IsNull() {
				continue
			}
			articleURL := env.StringValue()
			units++
			g.Go(func() error {
				summary, err := p.wikipedia.Summary(gCtx, articleURL)
				if err != nil {
					return err
				}
				if summary == "" {
					return nil
				}
				if env.Derived == nil {
					env.Derived = &model.Derived{}
				}
				env.Derived.Summary = summary
				return nil
			})
		}
	}

	zap.L().Debug("pipeline: wikipedia summaries fanned out", zap.Int("units", units))
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "pipeline: fill wikipedia summaries")
	}
	return nil
}
