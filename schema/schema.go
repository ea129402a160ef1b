package schema

import "fmt"

// Field declares one key of a map.
type Field struct {
	Type     Type
	Required bool
	Rules    []Rule
}

// Schema declares the keys of one map.
type Schema struct {
	Fields       map[string]Field
	AllowUnknown bool
}

// Validate checks values against the schema. A nil map is vacuously valid.
func (s *Schema) Validate(values map[string]any) Result {
	return s.validate("", values)
}

func (s *Schema) validate(prefix string, values map[string]any) Result {
	res := newResult()
	if s == nil || values == nil {
		return res
	}

	for name, field := range s.Fields {
		key := prefix + name
		v, ok := values[name]
		if !ok {
			if field.Required {
				res.add(key, "is required")
			}
			continue
		}
		if field.Type != "" && !field.Type.Matches(v) {
			res.add(key, fmt.Sprintf("expected %s, got %s", field.Type, typeName(v)))
			continue
		}
		for _, rule := range field.Rules {
			res.add(key, rule.Check(v)...)
		}
	}

	if !s.AllowUnknown {
		for name := range values {
			if _, ok := s.Fields[name]; !ok {
				res.add(prefix+name, "unknown field")
			}
		}
	}
	return res
}

// LicenseSchema validates the features and metadata maps of a license.
// Errors are keyed "features.<name>" and "metadata.<name>".
type LicenseSchema struct {
	Features             map[string]Field
	Metadata             map[string]Field
	AllowUnknownFeatures bool
	AllowUnknownMetadata bool
}

// Validate checks both maps. Missing features are checked as an empty map so
// required features are reported; missing metadata is vacuously valid.
func (s *LicenseSchema) Validate(features, metadata map[string]any) Result {
	res := newResult()
	if s == nil {
		return res
	}
	if features == nil {
		features = map[string]any{}
	}

	fs := &Schema{Fields: s.Features, AllowUnknown: s.AllowUnknownFeatures}
	res.Merge(fs.validate("features.", features))

	ms := &Schema{Fields: s.Metadata, AllowUnknown: s.AllowUnknownMetadata}
	res.Merge(ms.validate("metadata.", metadata))
	return res
}
