package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/water-fountains/datablue/internal/model"
	"github.com/water-fountains/datablue/internal/registry"
)

// Essence derives the compact client projection of a finalized, enriched
// collection: essential properties collapsed to bare values, provenance
// dropped, identity copied verbatim. The source collection is never
// mutated. A gallery that fell back to the street-level placeholder becomes
// the explicit no-photo marker.
func Essence(coll *model.FeatureCollection, props *registry.Properties) *model.EssenceCollection {
	out := &model.EssenceCollection{
		LastScan: time.Now().UTC(),
	}

	essential := props.Essential()
	withGallery, placeholders := 0, 0

	for _, f := range coll.Features {
		bag := make(map[string]any, len(essential)+2)
		for _, key := range essential {
			env := f.Properties.Get(key)
			if env == nil {
				continue
			}
			bag[string(key)] = env.Value
		}
		bag["id"] = f.ID

		gallery := f.Properties.Get(model.PropGallery)
		if images := gallery.Gallery(); len(images) > 0 {
			if gallery.IsPlaceholderGallery() {
				bag["ph"] = model.NoPhoto
				placeholders++
			} else {
				bag["ph"] = model.EssencePhoto{
					Thumbnail: images[0].Source,
					Title:     images[0].PageTitle,
				}
				withGallery++
			}
		}

		out.Features = append(out.Features, model.EssenceFeature{
			Lng:        f.Geometry.X(),
			Lat:        f.Geometry.Y(),
			Properties: bag,
		})
	}

	zap.L().Info("pipeline: essence projection complete",
		zap.Int("features", len(out.Features)),
		zap.Int("with_gallery", withGallery),
		zap.Int("placeholders", placeholders),
	)
	return out
}
