package registry

import (
	_ "embed"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"gopkg.in/yaml.v3"
)

//go:embed locations.yaml
var defaultLocationsYAML []byte

// BoundingBox is the fetch window of one location.
type BoundingBox struct {
	LatMin float64 `yaml:"lat_min" json:"latMin"`
	LngMin float64 `yaml:"lng_min" json:"lngMin"`
	LatMax float64 `yaml:"lat_max" json:"latMax"`
	LngMax float64 `yaml:"lng_max" json:"lngMax"`
}

// Bounds converts the box to go-geom bounds (x = lng, y = lat).
func (b BoundingBox) Bounds() *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(b.LngMin, b.LatMin, b.LngMax, b.LatMax)
}

// Location is one named processing target.
type Location struct {
	Label       string      `yaml:"label" json:"name"`
	BoundingBox BoundingBox `yaml:"bounding_box" json:"bounding_box"`
}

// Locations is the immutable name → location registry, loaded once at
// startup.
type Locations struct {
	byName map[string]Location
}

type locationsFile struct {
	Locations map[string]Location `yaml:"locations"`
}

// LoadLocations reads the location registry from path, or from the embedded
// default set when path is empty.
func LoadLocations(path string) (*Locations, error) {
	raw := defaultLocationsYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrap(err, "registry: read locations file")
		}
		raw = b
	}
	var f locationsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrap(err, "registry: parse locations file")
	}
	if len(f.Locations) == 0 {
		return nil, eris.New("registry: no locations configured")
	}
	return &Locations{byName: f.Locations}, nil
}

// NewLocations builds a registry from an explicit map, mainly for tests.
func NewLocations(byName map[string]Location) *Locations {
	return &Locations{byName: byName}
}

// Get returns the location for name.
func (r *Locations) Get(name string) (Location, bool) {
	loc, ok := r.byName[name]
	return loc, ok
}

// Names returns all configured location names, sorted.
func (r *Locations) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns a copy of the registry map for the metadata endpoint.
func (r *Locations) All() map[string]Location {
	out := make(map[string]Location, len(r.byName))
	for k, v := range r.byName {
		out[k] = v
	}
	return out
}
