package model

// PropertyKey names one fixed descriptive property of a fountain feature.
// The full set of valid keys is declared by the property registry; features
// reject keys outside that set.
type PropertyKey string

const (
	PropName             PropertyKey = "name"
	PropNameEn           PropertyKey = "name_en"
	PropNameDe           PropertyKey = "name_de"
	PropNameFr           PropertyKey = "name_fr"
	PropNameIt           PropertyKey = "name_it"
	PropNameTr           PropertyKey = "name_tr"
	PropIDOsm            PropertyKey = "id_osm"
	PropIDWikidata       PropertyKey = "id_wikidata"
	PropConstructionDate PropertyKey = "construction_date"
	PropWaterType        PropertyKey = "water_type"
	PropPotable          PropertyKey = "potable"
	PropAccessBottle     PropertyKey = "access_bottle"
	PropAccessPet        PropertyKey = "access_pet"
	PropAccessWheelchair PropertyKey = "access_wheelchair"
	PropDirections       PropertyKey = "directions"
	PropPanoURL          PropertyKey = "pano_url"
	PropArtistName       PropertyKey = "artist_name"
	PropOperatorName     PropertyKey = "operator_name"
	PropWikiCommonsName  PropertyKey = "wiki_commons_name"
	PropFeaturedImage    PropertyKey = "featured_image_name"
	PropWikipediaEnURL   PropertyKey = "wikipedia_en_url"
	PropWikipediaDeURL   PropertyKey = "wikipedia_de_url"
	PropWikipediaFrURL   PropertyKey = "wikipedia_fr_url"
	PropWikipediaItURL   PropertyKey = "wikipedia_it_url"
	PropWikipediaTrURL   PropertyKey = "wikipedia_tr_url"
	PropGallery          PropertyKey = "gallery"
)
