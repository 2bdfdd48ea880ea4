package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/water-fountains/datablue/internal/model"
	"github.com/water-fountains/datablue/pkg/osm"
	"github.com/water-fountains/datablue/pkg/wikidata"
)

func TestRun_UnknownLocationFailsBeforeAnyFetch(t *testing.T) {
	t.Parallel()
	p, f := newTestPipeline(t)

	coll, err := p.Run(context.Background(), "atlantis")
	require.Error(t, err)
	assert.Nil(t, coll)
	assert.Contains(t, err.Error(), "atlantis")
	assert.Zero(t, f.osm.calls)
	assert.Empty(t, f.wikidata.byIDsCalls)
}

func TestRun_HappyPath(t *testing.T) {
	t.Parallel()
	p, f := newTestPipeline(t)

	f.osm.recs = []osm.Record{
		{ID: 1, Type: "node", Lat: 47.37, Lng: 8.54, Tags: map[string]string{
			"name":              "Brunnen am See",
			"wikidata":          "Q1",
			"wikimedia_commons": "Category:Fountains of Zurich",
		}},
		{ID: 2, Type: "node", Lat: 47.375, Lng: 8.55, Tags: map[string]string{
			"name": "Dorfbrunnen",
		}},
	}
	f.wikidata.ids = []string{"Q2"}
	f.wikidata.records = map[string]wikidata.Record{
		"Q1": {ID: "Q1", Labels: map[string]string{"fr": "Fontaine du lac"}, CreatorQID: "Q77"},
		"Q2": {ID: "Q2", Lat: 47.372, Lng: 8.545, Labels: map[string]string{"de": "Anderer Brunnen"}},
	}
	f.wikidata.labels["Q77"] = "Alfred Aebli"
	f.wikimedia.galleries["Fountains of Zurich"] = []model.GalleryImage{
		{Source: "https://commons.example/a.jpg", PageTitle: "A.jpg"},
	}

	coll, err := p.Run(context.Background(), "test")
	require.NoError(t, err)
	require.Equal(t, 3, coll.Len())

	// Identities are batch-local, 0..n-1 in order.
	for i, feat := range coll.Features {
		assert.Equal(t, i, feat.ID)
	}

	merged := coll.Features[0]
	assert.Equal(t, "Brunnen am See", merged.Properties.Get(model.PropName).StringValue())
	assert.Equal(t, "Fontaine du lac", merged.Properties.Get(model.PropNameFr).StringValue())
	// Names were backfilled after the gallery stage.
	assert.Equal(t, "Brunnen am See", merged.Properties.Get(model.PropNameEn).StringValue())
	// The creator identifier was resolved to a display name.
	assert.Equal(t, "Alfred Aebli", merged.Properties.Get(model.PropArtistName).StringValue())
	// The commons category produced a real gallery.
	assert.False(t, merged.Properties.Get(model.PropGallery).IsPlaceholderGallery())

	// The feature without media fell back to a placeholder.
	osmOnly := coll.Features[1]
	assert.True(t, osmOnly.Properties.Get(model.PropGallery).IsPlaceholderGallery())

	// Gap filling fetched the referenced record not returned by the area
	// query.
	require.NotEmpty(t, f.wikidata.byIDsCalls)
	last := f.wikidata.byIDsCalls[len(f.wikidata.byIDsCalls)-1]
	assert.Equal(t, []string{"Q1"}, last)

	// The essence projection of the run is internally consistent.
	ess := p.Essence(coll)
	require.Len(t, ess.Features, 3)
	bag := ess.Features[0].Properties
	assert.Equal(t, 0, bag["id"])
	assert.NotEqual(t, model.NoPhoto, bag["ph"])
	assert.Equal(t, model.NoPhoto, ess.Features[1].Properties["ph"])
}

func TestRun_SourceFetchFailureAborts(t *testing.T) {
	t.Parallel()
	p, f := newTestPipeline(t)
	f.osm.err = eris.New("osm: interpreter request")

	coll, err := p.Run(context.Background(), "test")
	require.Error(t, err)
	assert.Nil(t, coll)
}

func TestRun_StageFailureYieldsNoPartialCollection(t *testing.T) {
	t.Parallel()
	p, f := newTestPipeline(t)
	f.osm.recs = []osm.Record{
		{ID: 1, Type: "node", Lat: 47.37, Lng: 8.54, Tags: map[string]string{
			"name":              "Brunnen am See",
			"wikimedia_commons": "Category:Broken",
		}},
	}
	f.wikimedia.err = eris.New("wikimedia: category members")

	coll, err := p.Run(context.Background(), "test")
	require.Error(t, err)
	assert.Nil(t, coll)
}

func TestRun_ImpliedPropertiesApplied(t *testing.T) {
	t.Parallel()
	p, f := newTestPipeline(t)
	f.osm.recs = []osm.Record{
		{ID: 1, Type: "node", Lat: 47.37, Lng: 8.54, Tags: map[string]string{
			"amenity": "drinking_water",
		}},
	}

	coll, err := p.Run(context.Background(), "test")
	require.NoError(t, err)
	require.Equal(t, 1, coll.Len())
	assert.Equal(t, "yes", coll.Features[0].Properties.Get(model.PropPotable).StringValue())
}
