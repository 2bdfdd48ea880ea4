package pipeline

import (
	"go.uber.org/zap"

	"github.com/water-fountains/datablue/internal/model"
)

// ExtractIssues collects every diagnostic accumulated on a collection's
// envelopes, in feature and declaration order. It is the read-only feed of
// the processing-errors view.
func ExtractIssues(coll *model.FeatureCollection) []model.Issue {
	var issues []model.Issue
	for _, f := range coll.Features {
		for _, key := range f.Properties.Keys() {
			env := f.Properties.Get(key)
			if env == nil {
				continue
			}
			issues = append(issues, env.Issues...)
		}
	}
	zap.L().Info("pipeline: extracted processing issues", zap.Int("count", len(issues)))
	return issues
}
