package pipeline

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/water-fountains/datablue/internal/model"
	"github.com/water-fountains/datablue/internal/registry"
	"github.com/water-fountains/datablue/pkg/osm"
	"github.com/water-fountains/datablue/pkg/wikidata"
)

// osmEnvelopes maps a raw OSM record's tags onto property envelopes. Raw
// records are discarded after conflation; only the envelopes survive.
func osmEnvelopes(rec osm.Record) map[model.PropertyKey]*model.Envelope {
	src := rec.URL()
	envs := map[model.PropertyKey]*model.Envelope{}
	set := func(key model.PropertyKey, value string) {
		if value == "" {
			return
		}
		env := model.NewEnvelope()
		env.SetValue(value, registry.SourceOSM, src)
		envs[key] = env
	}

	set(model.PropName, rec.Tags["name"])
	for _, tag := range registry.Locales {
		set(registry.NameKey(tag), rec.Tags["name:"+tag.String()])
	}
	set(model.PropIDOsm, fmt.Sprintf("%s/%d", rec.Type, rec.ID))
	set(model.PropIDWikidata, rec.WikidataRef())
	set(model.PropConstructionDate, rec.Tags["start_date"])
	set(model.PropWaterType, rec.Tags["fountain"])
	set(model.PropPotable, rec.Tags["drinking_water"])
	set(model.PropAccessBottle, rec.Tags["bottle"])
	set(model.PropAccessPet, rec.Tags["dog"])
	set(model.PropAccessWheelchair, rec.Tags["wheelchair"])
	set(model.PropDirections, rec.Tags["description"])
	set(model.PropPanoURL, rec.Tags["pano_url"])
	set(model.PropArtistName, rec.Tags["artist_name"])
	set(model.PropOperatorName, rec.Tags["operator"])
	set(model.PropWikiCommonsName, strings.TrimPrefix(rec.Tags["wikimedia_commons"], "Category:"))

	for _, tag := range registry.Locales {
		set(registry.WikipediaURLKey(tag), osmWikipediaURL(rec.Tags, tag))
	}
	return envs
}

// osmWikipediaURL resolves the per-locale article URL from either the
// locale-specific tag or the combined "lang:Title" convention.
func osmWikipediaURL(tags map[string]string, tag language.Tag) string {
	locale := tag.String()
	if title := tags["wikipedia:"+locale]; title != "" {
		return articleURL(locale, title)
	}
	combined := tags["wikipedia"]
	lang, title, ok := strings.Cut(combined, ":")
	if !ok || lang != locale || title == "" {
		return ""
	}
	return articleURL(locale, title)
}

func articleURL(locale, title string) string {
	return fmt.Sprintf("https://%s.wikipedia.org/wiki/%s", locale, strings.ReplaceAll(title, " ", "_"))
}

// wikidataEnvelopes maps a raw Wikidata record's claims onto property
// envelopes.
func wikidataEnvelopes(rec wikidata.Record) map[model.PropertyKey]*model.Envelope {
	src := rec.URL()
	envs := map[model.PropertyKey]*model.Envelope{}
	set := func(key model.PropertyKey, value string) {
		if value == "" {
			return
		}
		env := model.NewEnvelope()
		env.SetValue(value, registry.SourceWikidata, src)
		envs[key] = env
	}

	set(model.PropIDWikidata, rec.ID)
	for _, tag := range registry.Locales {
		set(registry.NameKey(tag), rec.Labels[tag.String()])
		set(registry.WikipediaURLKey(tag), rec.Sitelinks[tag.String()])
	}
	set(model.PropConstructionDate, rec.Inception)
	set(model.PropWaterType, rec.WaterType)
	set(model.PropArtistName, rec.CreatorQID)
	set(model.PropOperatorName, rec.OperatorQID)
	set(model.PropWikiCommonsName, rec.CommonsCategory)
	set(model.PropFeaturedImage, rec.Image)
	return envs
}
