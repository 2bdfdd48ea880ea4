package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// UnassignedID marks a feature that has not yet passed identity assignment.
const UnassignedID = -1

// Properties is the fixed property bag of a feature. Its shape is declared
// once, from the property registry's key set: every registered key starts
// with an empty envelope, and writes outside the declared shape fail.
type Properties struct {
	keys []PropertyKey
	m    map[PropertyKey]*Envelope
}

// NewProperties declares a property bag over the given key set, one empty
// envelope per key. Key order is preserved for deterministic iteration.
func NewProperties(keys []PropertyKey) *Properties {
	p := &Properties{
		keys: make([]PropertyKey, len(keys)),
		m:    make(map[PropertyKey]*Envelope, len(keys)),
	}
	copy(p.keys, keys)
	for _, k := range keys {
		p.m[k] = NewEnvelope()
	}
	return p
}

// Get returns the envelope for key, or nil when the key is outside the
// declared shape.
func (p *Properties) Get(key PropertyKey) *Envelope {
	return p.m[key]
}

// Set replaces the envelope for a declared key.
func (p *Properties) Set(key PropertyKey, env *Envelope) error {
	if _, ok := p.m[key]; !ok {
		return eris.Errorf("model: property %q not declared in registry", key)
	}
	if env == nil {
		return eris.Errorf("model: nil envelope for property %q", key)
	}
	p.m[key] = env
	return nil
}

// Keys returns the declared keys in registry order.
func (p *Properties) Keys() []PropertyKey {
	out := make([]PropertyKey, len(p.keys))
	copy(out, p.keys)
	return out
}

// MarshalJSON renders the bag as a plain name→envelope object.
func (p *Properties) MarshalJSON() ([]byte, error) {
	out := make(map[PropertyKey]*Envelope, len(p.m))
	for k, v := range p.m {
		out[k] = v
	}
	return json.Marshal(out)
}

// Feature is one unified fountain record: a point geometry plus the
// provenance-tracked property bag. ID stays UnassignedID until the identity
// assigner stamps it, and is immutable afterwards.
type Feature struct {
	ID         int
	Geometry   geom.Coord // lng, lat
	Properties *Properties
}

// NewFeature creates an unidentified feature at the given coordinate.
func NewFeature(lng, lat float64, props *Properties) *Feature {
	return &Feature{
		ID:         UnassignedID,
		Geometry:   geom.Coord{lng, lat},
		Properties: props,
	}
}

// MarshalJSON renders the feature as a GeoJSON Feature with the batch-local
// id injected alongside the property envelopes.
func (f *Feature) MarshalJSON() ([]byte, error) {
	props, err := f.Properties.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var bag map[string]json.RawMessage
	if err := json.Unmarshal(props, &bag); err != nil {
		return nil, err
	}
	id, err := json.Marshal(f.ID)
	if err != nil {
		return nil, err
	}
	bag["id"] = id
	return json.Marshal(struct {
		Type       string                     `json:"type"`
		Geometry   geometryJSON               `json:"geometry"`
		Properties map[string]json.RawMessage `json:"properties"`
	}{
		Type: "Feature",
		Geometry: geometryJSON{
			Type:        "Point",
			Coordinates: []float64{f.Geometry.X(), f.Geometry.Y()},
		},
		Properties: bag,
	})
}

type geometryJSON struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// FeatureCollection is an ordered sequence of unified features.
type FeatureCollection struct {
	Features []*Feature
}

// Len returns the number of features.
func (c *FeatureCollection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Features)
}

// MarshalJSON renders the collection as a GeoJSON FeatureCollection.
func (c *FeatureCollection) MarshalJSON() ([]byte, error) {
	features := c.Features
	if features == nil {
		features = []*Feature{}
	}
	return json.Marshal(struct {
		Type     string     `json:"type"`
		Features []*Feature `json:"features"`
	}{Type: "FeatureCollection", Features: features})
}
