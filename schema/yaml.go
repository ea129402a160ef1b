package schema

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type documentDef struct {
	Features sectionDef `yaml:"features"`
	Metadata sectionDef `yaml:"metadata"`
}

type sectionDef struct {
	AllowUnknown bool                `yaml:"allow_unknown"`
	Fields       map[string]fieldDef `yaml:"fields"`
}

type fieldDef struct {
	Type     Type       `yaml:"type"`
	Required bool       `yaml:"required"`
	Range    *rangeDef  `yaml:"range"`
	Length   *lengthDef `yaml:"length"`
	Pattern  string     `yaml:"pattern"`
	MinItems *int       `yaml:"min_items"`
	Items    *fieldDef  `yaml:"items"`
	OneOf    []any      `yaml:"one_of"`
}

type rangeDef struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

type lengthDef struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Parse reads a YAML license schema definition.
func Parse(data []byte) (*LicenseSchema, error) {
	var doc documentDef
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	features, err := doc.Features.fields("features")
	if err != nil {
		return nil, err
	}
	metadata, err := doc.Metadata.fields("metadata")
	if err != nil {
		return nil, err
	}

	return &LicenseSchema{
		Features:             features,
		Metadata:             metadata,
		AllowUnknownFeatures: doc.Features.AllowUnknown,
		AllowUnknownMetadata: doc.Metadata.AllowUnknown,
	}, nil
}

// Load reads a YAML license schema definition from a file.
func Load(path string) (*LicenseSchema, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// LoadFs is Load over an arbitrary filesystem.
func LoadFs(fs afero.Fs, path string) (*LicenseSchema, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(data)
}

func (s sectionDef) fields(section string) (map[string]Field, error) {
	out := make(map[string]Field, len(s.Fields))
	for name, def := range s.Fields {
		f, err := def.field()
		if err != nil {
			return nil, fmt.Errorf("schema %s.%s: %w", section, name, err)
		}
		out[name] = f
	}
	return out, nil
}

func (d fieldDef) field() (Field, error) {
	t := d.Type
	if t == "" {
		t = TypeAny
	}
	if !t.Valid() {
		return Field{}, fmt.Errorf("unknown type %q", d.Type)
	}
	rules, err := d.rules()
	if err != nil {
		return Field{}, err
	}
	return Field{Type: t, Required: d.Required, Rules: rules}, nil
}

func (d fieldDef) rules() ([]Rule, error) {
	var rules []Rule
	if d.Range != nil {
		rules = append(rules, Range{Min: d.Range.Min, Max: d.Range.Max})
	}
	if d.Length != nil {
		rules = append(rules, Length{Min: d.Length.Min, Max: d.Length.Max})
	}
	if d.Pattern != "" {
		p, err := MatchPattern(d.Pattern)
		if err != nil {
			return nil, err
		}
		rules = append(rules, p)
	}
	if d.MinItems != nil {
		rules = append(rules, MinItems{N: *d.MinItems})
	}
	if d.Items != nil {
		elem, err := d.Items.field()
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		rules = append(rules, Items{Type: elem.Type, Rules: elem.Rules})
	}
	if len(d.OneOf) > 0 {
		rules = append(rules, OneOf{Values: d.OneOf})
	}
	return rules, nil
}
