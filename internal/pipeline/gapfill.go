package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/water-fountains/datablue/pkg/osm"
	"github.com/water-fountains/datablue/pkg/wikidata"
)

// fillMissingWikidata runs before conflation. It checks that every Wikidata
// record referenced by an OSM record has been fetched, and fetches any
// missing ones in a single by-ids call. Absent references are ignored; an
// adapter failure propagates and nothing is applied. Ids the adapter
// reports unresolvable stay dangling.
func (p *Pipeline) fillMissingWikidata(ctx context.Context, osmRecs []osm.Record, wdRecs []wikidata.Record) ([]wikidata.Record, error) {
	have := make(map[string]bool, len(wdRecs))
	for _, r := range wdRecs {
		have[r.ID] = true
	}

	var missing []string
	seen := map[string]bool{}
	for _, r := range osmRecs {
		ref := r.WikidataRef()
		if ref == "" || have[ref] || seen[ref] {
			continue
		}
		seen[ref] = true
		missing = append(missing, ref)
	}

	if len(missing) == 0 {
		zap.L().Debug("pipeline: no missing wikidata references")
		return wdRecs, nil
	}

	zap.L().Info("pipeline: fetching missing wikidata records",
		zap.Int("count", len(missing)),
		zap.Strings("qids", missing),
	)
	fetched, err := p.wikidata.ByIDs(ctx, missing)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch missing wikidata records")
	}

	out := make([]wikidata.Record, 0, len(wdRecs)+len(fetched))
	out = append(out, wdRecs...)
	out = append(out, fetched...)
	return out, nil
}
