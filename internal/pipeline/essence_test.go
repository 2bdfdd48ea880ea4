package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/water-fountains/datablue/internal/model"
	"github.com/water-fountains/datablue/internal/registry"
)

func TestAssignIdentities(t *testing.T) {
	t.Parallel()
	_, props := testRegistries(t)

	coll := &model.FeatureCollection{}
	for i := 0; i < 5; i++ {
		coll.Features = append(coll.Features, newFeature(t, props, 8.54, 47.37))
	}
	assignIdentities(coll)

	for i, f := range coll.Features {
		assert.Equal(t, i, f.ID)
	}
}

func TestEssence_EssentialBareValues(t *testing.T) {
	t.Parallel()
	_, props := testRegistries(t)

	f := newFeature(t, props, 8.54, 47.37)
	f.Properties.Get(model.PropName).SetValue("Brunnen am See", registry.SourceOSM, "https://osm.example/node/1")
	f.Properties.Get(model.PropPotable).SetValue("yes", registry.SourceOSM, "")
	// Non-essential properties never reach the projection.
	f.Properties.Get(model.PropDirections).SetValue("next to the pier", registry.SourceOSM, "")
	f.ID = 3

	coll := &model.FeatureCollection{Features: []*model.Feature{f}}
	ess := Essence(coll, props)
	require.Len(t, ess.Features, 1)

	bag := ess.Features[0].Properties
	assert.Equal(t, "Brunnen am See", bag["name"])
	assert.Equal(t, "yes", bag["potable"])
	assert.Equal(t, 3, bag["id"])
	assert.NotContains(t, bag, "directions")
	assert.NotContains(t, bag, "ph")

	assert.Equal(t, 8.54, ess.Features[0].Lng)
	assert.Equal(t, 47.37, ess.Features[0].Lat)
	assert.WithinDuration(t, time.Now().UTC(), ess.LastScan, time.Minute)
}

func TestEssence_PhotoFromGallery(t *testing.T) {
	t.Parallel()
	_, props := testRegistries(t)

	f := newFeature(t, props, 8.54, 47.37)
	f.Properties.Get(model.PropGallery).SetValue([]model.GalleryImage{
		{Source: "https://commons.example/a.jpg", PageTitle: "A.jpg"},
		{Source: "https://commons.example/b.jpg", PageTitle: "B.jpg"},
	}, "Wikimedia Commons", "")

	ess := Essence(&model.FeatureCollection{Features: []*model.Feature{f}}, props)
	require.Len(t, ess.Features, 1)

	photo, ok := ess.Features[0].Properties["ph"].(model.EssencePhoto)
	require.True(t, ok)
	assert.Equal(t, "https://commons.example/a.jpg", photo.Thumbnail)
	assert.Equal(t, "A.jpg", photo.Title)
}

func TestEssence_PlaceholderBecomesNoPhotoMarker(t *testing.T) {
	t.Parallel()
	_, props := testRegistries(t)

	f := newFeature(t, props, 8.54, 47.37)
	env := f.Properties.Get(model.PropGallery)
	env.SetValue([]model.GalleryImage{{Source: "https://maps.example/sv", PageTitle: "Street-level preview"}}, "Street-level imagery", "")
	env.Comments = model.PlaceholderComment

	ess := Essence(&model.FeatureCollection{Features: []*model.Feature{f}}, props)
	require.Len(t, ess.Features, 1)
	assert.Equal(t, model.NoPhoto, ess.Features[0].Properties["ph"])
}

func TestEssence_SourceCollectionUnchanged(t *testing.T) {
	t.Parallel()
	_, props := testRegistries(t)

	f := newFeature(t, props, 8.54, 47.37)
	f.Properties.Get(model.PropName).SetValue("Brunnen", registry.SourceOSM, "")
	coll := &model.FeatureCollection{Features: []*model.Feature{f}}

	Essence(coll, props)

	env := coll.Features[0].Properties.Get(model.PropName)
	assert.Equal(t, "Brunnen", env.StringValue())
	assert.Equal(t, registry.SourceOSM, env.SourceName)
}

func TestExtractIssues_FeatureAndDeclarationOrder(t *testing.T) {
	t.Parallel()
	_, props := testRegistries(t)

	first := newFeature(t, props, 8.54, 47.37)
	first.Properties.Get(model.PropIDWikidata).AddIssue(model.Issue{
		Status: model.StatusWarning, Message: "referenced record could not be resolved", Property: "id_wikidata",
	})
	second := newFeature(t, props, 8.55, 47.38)
	second.Properties.Get(model.PropName).AddIssue(model.Issue{
		Status: model.StatusInfo, Message: "conflicting value from Wikidata discarded", Property: "name",
	})

	coll := &model.FeatureCollection{Features: []*model.Feature{first, second}}
	issues := ExtractIssues(coll)

	require.Len(t, issues, 2)
	assert.Equal(t, "id_wikidata", issues[0].Property)
	assert.Equal(t, "name", issues[1].Property)
}

func TestExtractIssues_EmptyCollection(t *testing.T) {
	t.Parallel()
	issues := ExtractIssues(&model.FeatureCollection{})
	assert.Empty(t, issues)
}
