package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func featureSchema() *Schema {
	return &Schema{
		Fields: map[string]Field{
			"seats": {Type: TypeInteger, Required: true, Rules: []Rule{Between(1, 100)}},
			"tier":  {Type: TypeString, Rules: []Rule{OneOf{Values: []any{"basic", "gold"}}}},
			"code":  {Type: TypeString, Rules: []Rule{Length{Min: 3, Max: 3}, MustPattern(`^[A-Z]+$`)}},
			"modules": {Type: TypeArray, Rules: []Rule{
				MinItems{N: 1},
				Items{Type: TypeString, Rules: []Rule{Length{Min: 2}}},
			}},
			"ratio":  {Type: TypeNumber, Rules: []Rule{AtLeast(0), AtMost(1)}},
			"beta":   {Type: TypeBoolean},
			"limits": {Type: TypeObject},
			"extra":  {Type: TypeAny},
		},
	}
}

func TestSchema_Valid(t *testing.T) {
	values := map[string]any{
		"seats":   float64(10),
		"tier":    "gold",
		"code":    "ABC",
		"modules": []any{"reports", "api"},
		"ratio":   0.5,
		"beta":    true,
		"limits":  map[string]any{"api": 10},
		"extra":   nil,
	}

	res := featureSchema().Validate(values)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.NoError(t, res.Err())
}

func TestSchema_MissingRequired(t *testing.T) {
	res := featureSchema().Validate(map[string]any{"tier": "basic"})

	assert.False(t, res.Valid)
	require.Contains(t, res.Errors, "seats")
	assert.Equal(t, []string{"is required"}, res.Errors["seats"])
	assert.Len(t, res.Errors, 1)
}

func TestSchema_NilMapIsVacuouslyValid(t *testing.T) {
	res := featureSchema().Validate(nil)
	assert.True(t, res.Valid)

	var nilSchema *Schema
	assert.True(t, nilSchema.Validate(map[string]any{"x": 1}).Valid)
}

func TestSchema_TypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
		want  string
	}{
		{"string for integer", "seats", "ten", "expected integer, got string"},
		{"fraction for integer", "seats", 2.5, "expected integer, got number"},
		{"number for string", "tier", float64(1), "expected string, got integer"},
		{"object for array", "modules", map[string]any{}, "expected array, got object"},
		{"string for boolean", "beta", "yes", "expected boolean, got string"},
		{"array for object", "limits", []any{}, "expected object, got array"},
		{"null for number", "ratio", nil, "expected number, got null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := map[string]any{"seats": float64(1), tt.field: tt.value}
			res := featureSchema().Validate(values)

			assert.False(t, res.Valid)
			assert.Equal(t, []string{tt.want}, res.Errors[tt.field])
		})
	}
}

func TestSchema_AccumulatesAllRuleErrors(t *testing.T) {
	res := featureSchema().Validate(map[string]any{
		"seats": float64(1),
		"code":  "toolong",
	})

	assert.False(t, res.Valid)
	assert.Equal(t, []string{"length must be <= 3", "must match pattern ^[A-Z]+$"}, res.Errors["code"])
}

func TestSchema_Rules(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		field  string
		want   []string
	}{
		{"below range", map[string]any{"seats": float64(0)}, "seats", []string{"must be >= 1"}},
		{"above range", map[string]any{"seats": float64(101)}, "seats", []string{"must be <= 100"}},
		{"not in set", map[string]any{"seats": float64(1), "tier": "silver"}, "tier", []string{"must be one of [basic gold]"}},
		{"too few items", map[string]any{"seats": float64(1), "modules": []any{}}, "modules", []string{"must have at least 1 items, got 0"}},
		{"bad item type", map[string]any{"seats": float64(1), "modules": []any{"api", 3}}, "modules", []string{"item 1: expected string, got integer"}},
		{"bad item rule", map[string]any{"seats": float64(1), "modules": []any{"x"}}, "modules", []string{"item 0: length must be >= 2"}},
		{"ratio above", map[string]any{"seats": float64(1), "ratio": 1.5}, "ratio", []string{"must be <= 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := featureSchema().Validate(tt.values)
			assert.False(t, res.Valid)
			assert.Equal(t, tt.want, res.Errors[tt.field])
		})
	}
}

func TestSchema_UnknownFields(t *testing.T) {
	s := featureSchema()
	values := map[string]any{"seats": float64(1), "surprise": true}

	res := s.Validate(values)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"unknown field"}, res.Errors["surprise"])

	s.AllowUnknown = true
	assert.True(t, s.Validate(values).Valid)
}

func TestSchema_JSONNumbers(t *testing.T) {
	var values map[string]any
	dec := json.NewDecoder(strings.NewReader(`{"seats": 12, "ratio": 0.25}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&values))

	res := featureSchema().Validate(values)
	assert.True(t, res.Valid, "errors: %v", res.Errors)
}

func TestOneOf_MixedNumericTypes(t *testing.T) {
	rule := OneOf{Values: []any{1, 2, 3}}
	assert.Empty(t, rule.Check(float64(2)))
	assert.Empty(t, rule.Check(json.Number("3")))
	assert.NotEmpty(t, rule.Check("2"))
	assert.NotEmpty(t, rule.Check(map[string]any{}))
}

func TestLicenseSchema(t *testing.T) {
	ls := &LicenseSchema{
		Features: map[string]Field{
			"seats": {Type: TypeInteger, Required: true},
		},
		Metadata: map[string]Field{
			"region": {Type: TypeString, Required: true},
		},
		AllowUnknownMetadata: true,
	}

	t.Run("valid", func(t *testing.T) {
		res := ls.Validate(map[string]any{"seats": float64(3)}, map[string]any{"region": "eu", "note": "x"})
		assert.True(t, res.Valid, "errors: %v", res.Errors)
	})

	t.Run("missing feature", func(t *testing.T) {
		res := ls.Validate(map[string]any{}, nil)
		assert.False(t, res.Valid)
		assert.Equal(t, []string{"features.seats"}, res.Fields())
	})

	t.Run("nil features checks required", func(t *testing.T) {
		res := ls.Validate(nil, nil)
		assert.Contains(t, res.Errors, "features.seats")
	})

	t.Run("null metadata is valid", func(t *testing.T) {
		res := ls.Validate(map[string]any{"seats": float64(1)}, nil)
		assert.True(t, res.Valid)
	})

	t.Run("unknown feature", func(t *testing.T) {
		res := ls.Validate(map[string]any{"seats": float64(1), "gpu": true}, nil)
		assert.Equal(t, []string{"features.gpu"}, res.Fields())
	})

	t.Run("metadata errors are prefixed", func(t *testing.T) {
		res := ls.Validate(map[string]any{"seats": float64(1)}, map[string]any{"region": 5})
		assert.Equal(t, []string{"expected string, got integer"}, res.Errors["metadata.region"])
	})
}

func TestSchema_ErrorKeys(t *testing.T) {
	features := map[string]any{"seats": "ten", "gpu": true}
	fields := map[string]Field{"seats": {Type: TypeInteger}}

	res := (&Schema{Fields: fields}).Validate(features)
	assert.Equal(t, []string{"gpu", "seats"}, res.Fields())

	lres := (&LicenseSchema{Features: fields, Metadata: fields}).Validate(features, map[string]any{"seats": "ten"})
	assert.Equal(t, []string{"features.gpu", "features.seats", "metadata.seats"}, lres.Fields())
	assert.Equal(t, res.Errors["seats"], lres.Errors["features.seats"])
}

func TestValidationError(t *testing.T) {
	res := featureSchema().Validate(map[string]any{"tier": 1})
	err := res.Err()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors, "seats")
	assert.Equal(t, "schema validation failed: seats: is required; tier: expected string, got integer", err.Error())
}
