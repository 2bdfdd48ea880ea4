package registry

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/water-fountains/datablue/internal/model"
)

//go:embed properties.yaml
var defaultPropertiesYAML []byte

// SourceOSM and SourceWikidata name the two record origins in precedence
// lists and provenance fields.
const (
	SourceOSM      = "OpenStreetMap"
	SourceWikidata = "Wikidata"
)

// PropertyMeta describes one fixed property: whether the essence projection
// keeps it, which source wins a merge conflict, and the locale it belongs
// to, if any.
type PropertyMeta struct {
	Name       model.PropertyKey `yaml:"name" json:"name"`
	Essential  bool              `yaml:"essential" json:"essential"`
	Precedence []string          `yaml:"precedence,omitempty" json:"precedence,omitempty"`
	Locale     string            `yaml:"locale,omitempty" json:"locale,omitempty"`
}

// Properties is the immutable property-metadata registry, loaded once at
// startup and passed by reference.
type Properties struct {
	entries   []PropertyMeta
	byKey     map[model.PropertyKey]*PropertyMeta
	essential []model.PropertyKey
}

type propertiesFile struct {
	Properties []PropertyMeta `yaml:"properties"`
}

// NewProperties indexes a property list into a registry.
func NewProperties(entries []PropertyMeta) (*Properties, error) {
	r := &Properties{
		entries: entries,
		byKey:   make(map[model.PropertyKey]*PropertyMeta, len(entries)),
	}
	for i := range r.entries {
		m := &r.entries[i]
		if m.Name == "" {
			return nil, eris.New("registry: property with empty name")
		}
		if _, dup := r.byKey[m.Name]; dup {
			return nil, eris.Errorf("registry: duplicate property %q", m.Name)
		}
		if len(m.Precedence) == 0 {
			m.Precedence = []string{SourceOSM, SourceWikidata}
		}
		r.byKey[m.Name] = m
		if m.Essential {
			r.essential = append(r.essential, m.Name)
		}
	}
	return r, nil
}

// LoadProperties reads the property registry from path, or from the
// embedded default set when path is empty.
func LoadProperties(path string) (*Properties, error) {
	raw := defaultPropertiesYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrap(err, "registry: read properties file")
		}
		raw = b
	}
	var f propertiesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrap(err, "registry: parse properties file")
	}
	return NewProperties(f.Properties)
}

// Keys returns all property keys in declaration order.
func (r *Properties) Keys() []model.PropertyKey {
	out := make([]model.PropertyKey, len(r.entries))
	for i, m := range r.entries {
		out[i] = m.Name
	}
	return out
}

// ByKey returns the metadata for a property, or nil when unknown.
func (r *Properties) ByKey(key model.PropertyKey) *PropertyMeta {
	return r.byKey[key]
}

// Essential returns the keys the essence projection keeps, in declaration
// order.
func (r *Properties) Essential() []model.PropertyKey {
	out := make([]model.PropertyKey, len(r.essential))
	copy(out, r.essential)
	return out
}

// Precedence returns the source precedence list for a property. Unknown
// properties get the default OSM-first order.
func (r *Properties) Precedence(key model.PropertyKey) []string {
	if m := r.byKey[key]; m != nil {
		return m.Precedence
	}
	return []string{SourceOSM, SourceWikidata}
}

// All returns the full metadata list for the metadata endpoint.
func (r *Properties) All() []PropertyMeta {
	out := make([]PropertyMeta, len(r.entries))
	copy(out, r.entries)
	return out
}
