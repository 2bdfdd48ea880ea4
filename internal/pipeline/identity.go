package pipeline

import "github.com/water-fountains/datablue/internal/model"

// assignIdentities stamps each feature with a batch-local identifier,
// 0..n-1 in collection order. Identities are unique within one generated
// collection and not stable across regenerations. Pure and total.
func assignIdentities(coll *model.FeatureCollection) {
	for i, f := range coll.Features {
		f.ID = i
	}
}
