package pipeline

import (
	"fmt"

	"github.com/water-fountains/datablue/internal/model"
	"github.com/water-fountains/datablue/internal/registry"
)

// fillOutNames backfills blank names. An empty default name is taken from
// the first non-empty locale name in priority order; afterwards every empty
// locale name is filled from the (possibly just-filled) default. Filled
// envelopes get INFO status and an explanatory comment. The operation is
// idempotent: only empty envelopes are touched.
func fillOutNames(coll *model.FeatureCollection) {
	for _, f := range coll.Features {
		def := f.Properties.Get(model.PropName)

		if def.IsNull() {
			for _, tag := range registry.Locales {
				lenv := f.Properties.Get(registry.NameKey(tag))
				if lenv == nil || lenv.IsNull() {
					continue
				}
				def.Value = lenv.Value
				def.SourceName = lenv.SourceName
				def.SourceURL = lenv.SourceURL
				def.Comments = fmt.Sprintf("Value taken from language %s.", tag)
				def.Status = model.StatusInfo
				break
			}
		}

		if def.IsNull() {
			continue
		}
		for _, tag := range registry.Locales {
			lenv := f.Properties.Get(registry.NameKey(tag))
			if lenv == nil || !lenv.IsNull() {
				continue
			}
			lenv.Value = def.Value
			lenv.SourceName = def.SourceName
			lenv.SourceURL = def.SourceURL
			lenv.Status = model.StatusInfo
			if def.Comments == "" {
				lenv.Comments = "Value taken from default language."
			} else {
				lenv.Comments = "Value taken from default language. " + def.Comments
			}
		}
	}
}
