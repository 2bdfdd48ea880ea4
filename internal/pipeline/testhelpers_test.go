package pipeline

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/water-fountains/datablue/internal/model"
	"github.com/water-fountains/datablue/internal/registry"
	"github.com/water-fountains/datablue/pkg/osm"
	"github.com/water-fountains/datablue/pkg/streetview"
	"github.com/water-fountains/datablue/pkg/wikidata"
	"github.com/water-fountains/datablue/pkg/wikimedia"
)

type fakeOSM struct {
	recs  []osm.Record
	err   error
	calls int
}

func (f *fakeOSM) ByBoundingBox(_ context.Context, _ *geom.Bounds) ([]osm.Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.recs, nil
}

type fakeWikidata struct {
	ids        []string
	idsErr     error
	records    map[string]wikidata.Record
	byIDsErr   error
	byIDsCalls [][]string
	labels     map[string]string
	fillErr    error
}

func (f *fakeWikidata) IDsByBoundingBox(_ context.Context, _ *geom.Bounds) ([]string, error) {
	if f.idsErr != nil {
		return nil, f.idsErr
	}
	return f.ids, nil
}

func (f *fakeWikidata) ByIDs(_ context.Context, ids []string) ([]wikidata.Record, error) {
	if len(ids) == 0 {
		return []wikidata.Record{}, nil
	}
	f.byIDsCalls = append(f.byIDsCalls, ids)
	if f.byIDsErr != nil {
		return nil, f.byIDsErr
	}
	out := make([]wikidata.Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := f.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeWikidata) fillLabel(feat *model.Feature, key model.PropertyKey) error {
	if f.fillErr != nil {
		return f.fillErr
	}
	env := feat.Properties.Get(key)
	if env == nil || env.IsNull() {
		return nil
	}
	qid := env.StringValue()
	if !wikidata.IsQID(qid) {
		return nil
	}
	if label, ok := f.labels[qid]; ok {
		env.Value = label
		env.Status = model.StatusOK
	}
	return nil
}

func (f *fakeWikidata) FillArtistName(_ context.Context, feat *model.Feature) error {
	return f.fillLabel(feat, model.PropArtistName)
}

func (f *fakeWikidata) FillOperatorInfo(_ context.Context, feat *model.Feature) error {
	return f.fillLabel(feat, model.PropOperatorName)
}

type fakeWikimedia struct {
	galleries map[string][]model.GalleryImage // commons category → gallery
	err       error
	fetches   atomic.Int64
}

func (f *fakeWikimedia) FillGallery(_ context.Context, feat *model.Feature, _ string, _ bool, cache *wikimedia.RunCache) error {
	if f.err != nil {
		return f.err
	}
	category := feat.Properties.Get(model.PropWikiCommonsName).StringValue()
	if category == "" {
		return nil
	}
	images, ok := cache.Get(category)
	if !ok {
		f.fetches.Add(1)
		images = f.galleries[category]
		cache.Put(category, images)
	}
	if len(images) > 0 {
		feat.Properties.Get(model.PropGallery).SetValue(images, "Wikimedia Commons", "")
	}
	return nil
}

type fakeWikipedia struct {
	summaries map[string]string // article URL → summary
	err       error
	calls     atomic.Int64
}

func (f *fakeWikipedia) Summary(_ context.Context, articleURL string) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return f.summaries[articleURL], nil
}

func testRegistries(t *testing.T) (*registry.Locations, *registry.Properties) {
	t.Helper()
	props, err := registry.LoadProperties("")
	require.NoError(t, err)
	locations := registry.NewLocations(map[string]registry.Location{
		"test": {
			Label: "Test",
			BoundingBox: registry.BoundingBox{
				LatMin: 47.36, LngMin: 8.52, LatMax: 47.38, LngMax: 8.56,
			},
		},
	})
	return locations, props
}

type fakes struct {
	osm       *fakeOSM
	wikidata  *fakeWikidata
	wikimedia *fakeWikimedia
	wikipedia *fakeWikipedia
}

func newTestPipeline(t *testing.T) (*Pipeline, *fakes) {
	t.Helper()
	locations, props := testRegistries(t)
	f := &fakes{
		osm:       &fakeOSM{},
		wikidata:  &fakeWikidata{records: map[string]wikidata.Record{}, labels: map[string]string{}},
		wikimedia: &fakeWikimedia{galleries: map[string][]model.GalleryImage{}},
		wikipedia: &fakeWikipedia{summaries: map[string]string{}},
	}
	p := New(locations, props, f.osm, f.wikidata, f.wikimedia, f.wikipedia, streetview.NewClient(""))
	return p, f
}

// newFeature builds an empty feature over the default property shape.
func newFeature(t *testing.T, props *registry.Properties, lng, lat float64) *model.Feature {
	t.Helper()
	return model.NewFeature(lng, lat, model.NewProperties(props.Keys()))
}
