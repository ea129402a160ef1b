package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// Type is the expected JSON type of a field.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
	TypeAny     Type = "any"
)

// Valid reports whether t is one of the declared types.
func (t Type) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray, TypeObject, TypeAny:
		return true
	}
	return false
}

// Matches reports whether v has type t.
func (t Type) Matches(v any) bool {
	switch t {
	case TypeAny:
		return true
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeNumber:
		_, ok := toFloat(v)
		return ok
	case TypeInteger:
		f, ok := toFloat(v)
		return ok && f == math.Trunc(f) && !math.IsInf(f, 0)
	case TypeArray:
		return kindOf(v) == reflect.Slice || kindOf(v) == reflect.Array
	case TypeObject:
		return kindOf(v) == reflect.Map
	}
	return false
}

// typeName describes the JSON type of v for error messages.
func typeName(v any) string {
	switch {
	case v == nil:
		return "null"
	case TypeString.Matches(v):
		return "string"
	case TypeBoolean.Matches(v):
		return "boolean"
	case TypeInteger.Matches(v):
		return "integer"
	case TypeNumber.Matches(v):
		return "number"
	case TypeArray.Matches(v):
		return "array"
	case TypeObject.Matches(v):
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func kindOf(v any) reflect.Kind {
	if v == nil {
		return reflect.Invalid
	}
	return reflect.TypeOf(v).Kind()
}

// toFloat converts the numeric types produced by encoding/json, yaml.v3 and
// Go literals.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// items returns the elements of an array value.
func items(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
