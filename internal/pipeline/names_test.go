package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/water-fountains/datablue/internal/model"
	"github.com/water-fountains/datablue/internal/registry"
)

func TestFillOutNames_DefaultFromLocale(t *testing.T) {
	t.Parallel()
	_, props := testRegistries(t)

	f := newFeature(t, props, 8.54, 47.37)
	f.Properties.Get(model.PropNameFr).SetValue("Fontaine A", registry.SourceWikidata, "")

	coll := &model.FeatureCollection{Features: []*model.Feature{f}}
	fillOutNames(coll)

	def := f.Properties.Get(model.PropName)
	assert.Equal(t, "Fontaine A", def.StringValue())
	assert.Equal(t, model.StatusInfo, def.Status)
	assert.Equal(t, "Value taken from language fr.", def.Comments)

	// Every other locale is filled from the derived default, with both
	// comments kept.
	en := f.Properties.Get(model.PropNameEn)
	assert.Equal(t, "Fontaine A", en.StringValue())
	assert.Equal(t, model.StatusInfo, en.Status)
	assert.Equal(t, "Value taken from default language. Value taken from language fr.", en.Comments)

	// The envelope the default was taken from is left untouched.
	fr := f.Properties.Get(model.PropNameFr)
	assert.Empty(t, fr.Comments)
}

func TestFillOutNames_LocalesFromDefault(t *testing.T) {
	t.Parallel()
	_, props := testRegistries(t)

	f := newFeature(t, props, 8.54, 47.37)
	f.Properties.Get(model.PropName).SetValue("Brunnen am See", registry.SourceOSM, "")
	f.Properties.Get(model.PropNameDe).SetValue("Brunnen am See", registry.SourceOSM, "")

	coll := &model.FeatureCollection{Features: []*model.Feature{f}}
	fillOutNames(coll)

	for _, tag := range registry.Locales {
		env := f.Properties.Get(registry.NameKey(tag))
		assert.Equal(t, "Brunnen am See", env.StringValue(), "locale %s", tag)
	}
	// A locale that already had a value is not overwritten or annotated.
	assert.Empty(t, f.Properties.Get(model.PropNameDe).Comments)
	assert.Equal(t, "Value taken from default language.", f.Properties.Get(model.PropNameTr).Comments)
}

func TestFillOutNames_Idempotent(t *testing.T) {
	t.Parallel()
	_, props := testRegistries(t)

	f := newFeature(t, props, 8.54, 47.37)
	f.Properties.Get(model.PropNameIt).SetValue("Fontana B", registry.SourceWikidata, "")
	coll := &model.FeatureCollection{Features: []*model.Feature{f}}

	fillOutNames(coll)
	first := map[model.PropertyKey]model.Envelope{}
	for _, tag := range registry.Locales {
		key := registry.NameKey(tag)
		first[key] = *f.Properties.Get(key)
	}

	fillOutNames(coll)
	for key, want := range first {
		require.Equal(t, want, *f.Properties.Get(key), "property %s", key)
	}
}

func TestFillOutNames_AllEmptyLeavesFeatureAlone(t *testing.T) {
	t.Parallel()
	_, props := testRegistries(t)

	f := newFeature(t, props, 8.54, 47.37)
	coll := &model.FeatureCollection{Features: []*model.Feature{f}}
	fillOutNames(coll)

	assert.True(t, f.Properties.Get(model.PropName).IsNull())
	for _, tag := range registry.Locales {
		assert.True(t, f.Properties.Get(registry.NameKey(tag)).IsNull())
	}
}
