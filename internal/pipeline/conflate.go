package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/water-fountains/datablue/internal/model"
	"github.com/water-fountains/datablue/pkg/osm"
	"github.com/water-fountains/datablue/pkg/wikidata"
)

// conflate merges the gap-filled OSM and Wikidata collections into one
// unified collection. The matching key is the OSM→Wikidata cross-reference:
// a matched pair yields one merged feature, an unmatched OSM record an
// OSM-only feature, and an unreferenced Wikidata record a Wikidata-only
// feature. Output order is OSM records first (input order), then remaining
// Wikidata records (input order); per-feature content is independent of
// processing order.
func (p *Pipeline) conflate(osmRecs []osm.Record, wdRecs []wikidata.Record) *model.FeatureCollection {
	wdByID := make(map[string]*wikidata.Record, len(wdRecs))
	for i := range wdRecs {
		wdByID[wdRecs[i].ID] = &wdRecs[i]
	}
	matched := make(map[string]bool, len(osmRecs))

	coll := &model.FeatureCollection{}
	merged, osmOnly := 0, 0

	for _, rec := range osmRecs {
		envs := osmEnvelopes(rec)
		f := model.NewFeature(rec.Lng, rec.Lat, model.NewProperties(p.props.Keys()))

		ref := rec.WikidataRef()
		if ref != "" {
			if wd, ok := wdByID[ref]; ok {
				envs = p.mergeEnvelopes(envs, wikidataEnvelopes(*wd))
				matched[ref] = true
				merged++
			} else {
				// Gap filling already tried; the reference stays dangling.
				if env := envs[model.PropIDWikidata]; env != nil {
					env.AddIssue(model.Issue{
						Status:   model.StatusWarning,
						Message:  "referenced record could not be resolved",
						Property: string(model.PropIDWikidata),
						Data:     ref,
					})
				}
				osmOnly++
			}
		} else {
			osmOnly++
		}

		p.applyEnvelopes(f, envs)
		coll.Features = append(coll.Features, f)
	}

	wdOnly := 0
	for _, rec := range wdRecs {
		if matched[rec.ID] {
			continue
		}
		f := model.NewFeature(rec.Lng, rec.Lat, model.NewProperties(p.props.Keys()))
		p.applyEnvelopes(f, wikidataEnvelopes(rec))
		coll.Features = append(coll.Features, f)
		wdOnly++
	}

	zap.L().Info("pipeline: conflation complete",
		zap.Int("merged", merged),
		zap.Int("osm_only", osmOnly),
		zap.Int("wikidata_only", wdOnly),
	)
	return coll
}

// mergeEnvelopes resolves per-property conflicts between two source
// envelope sets. When both sources supply a value, the registry's
// precedence rule selects the survivor and the losing value is recorded as
// an issue on it, never silently dropped.
func (p *Pipeline) mergeEnvelopes(a, b map[model.PropertyKey]*model.Envelope) map[model.PropertyKey]*model.Envelope {
	out := make(map[model.PropertyKey]*model.Envelope, len(a)+len(b))
	for key, env := range a {
		out[key] = env
	}
	for key, env := range b {
		existing, ok := out[key]
		if !ok || existing.IsNull() {
			out[key] = env
			continue
		}
		if env.IsNull() {
			continue
		}
		winner, loser := existing, env
		if p.wins(key, env.SourceName, existing.SourceName) {
			winner, loser = env, existing
		}
		if winner.Value != loser.Value {
			winner.AddIssue(model.Issue{
				Status:   model.StatusInfo,
				Message:  fmt.Sprintf("conflicting value from %s discarded", loser.SourceName),
				Property: string(key),
				Data:     loser.Value,
			})
		}
		out[key] = winner
	}
	return out
}

// wins reports whether source a precedes source b for the property.
func (p *Pipeline) wins(key model.PropertyKey, a, b string) bool {
	for _, s := range p.props.Precedence(key) {
		if s == a {
			return true
		}
		if s == b {
			return false
		}
	}
	return false
}

// applyEnvelopes validates the envelope set against the declared property
// shape. Keys outside the registry are a per-field data issue: they are
// dropped with a log entry, never an abort.
func (p *Pipeline) applyEnvelopes(f *model.Feature, envs map[model.PropertyKey]*model.Envelope) {
	for key, env := range envs {
		if err := f.Properties.Set(key, env); err != nil {
			zap.L().Warn("pipeline: dropping undeclared property",
				zap.String("property", string(key)),
			)
		}
	}
}
