package registry

import (
	"golang.org/x/text/language"

	"github.com/water-fountains/datablue/internal/model"
)

// Locales is the fixed list of supported locales, in backfill priority
// order: when the default name is empty it is filled from the first
// non-empty locale name in this order.
var Locales = []language.Tag{
	language.English,
	language.German,
	language.French,
	language.Italian,
	language.Turkish,
}

// NameKey returns the property key of the localized name for a locale.
func NameKey(tag language.Tag) model.PropertyKey {
	return model.PropertyKey("name_" + tag.String())
}

// WikipediaURLKey returns the property key of the encyclopedia article URL
// for a locale.
func WikipediaURLKey(tag language.Tag) model.PropertyKey {
	return model.PropertyKey("wikipedia_" + tag.String() + "_url")
}
