package model

import (
	"encoding/json"
	"time"
)

// NoPhoto is the explicit marker emitted by the essence projector when a
// feature's gallery fell back to the street-level placeholder. The compact
// view must never present a placeholder as a real feature photo.
const NoPhoto = ""

// EssencePhoto is the compact reference to a feature's first real gallery
// entry.
type EssencePhoto struct {
	Thumbnail string `json:"s"`
	Title     string `json:"pt"`
}

// EssenceFeature is the lossy, provenance-stripped projection of one
// feature: bare values for essential properties only, plus the identity
// copied verbatim.
type EssenceFeature struct {
	Lng        float64
	Lat        float64
	Properties map[string]any
}

// MarshalJSON renders the essence feature as a GeoJSON Feature.
func (f EssenceFeature) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       string         `json:"type"`
		Geometry   geometryJSON   `json:"geometry"`
		Properties map[string]any `json:"properties"`
	}{
		Type: "Feature",
		Geometry: geometryJSON{
			Type:        "Point",
			Coordinates: []float64{f.Lng, f.Lat},
		},
		Properties: f.Properties,
	})
}

// EssenceCollection is the compact client projection of a generated
// collection. LastScan is stamped at projection time.
type EssenceCollection struct {
	LastScan time.Time
	Features []EssenceFeature
}

// MarshalJSON renders the essence collection with its collection-level
// last_scan metadata.
func (c *EssenceCollection) MarshalJSON() ([]byte, error) {
	features := c.Features
	if features == nil {
		features = []EssenceFeature{}
	}
	return json.Marshal(struct {
		Type       string           `json:"type"`
		Properties map[string]any   `json:"properties"`
		Features   []EssenceFeature `json:"features"`
	}{
		Type:       "FeatureCollection",
		Properties: map[string]any{"last_scan": c.LastScan},
		Features:   features,
	})
}
