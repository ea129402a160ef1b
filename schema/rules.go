package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"unicode/utf8"
)

// Rule checks a value that already has the field's declared type. It returns
// one message per violation. Rules ignore values they do not apply to.
type Rule interface {
	Check(v any) []string
}

// Range bounds a number. Nil bounds are open.
type Range struct {
	Min *float64
	Max *float64
}

// Between returns a closed range.
func Between(min, max float64) Range {
	return Range{Min: &min, Max: &max}
}

// AtLeast returns a range with only a lower bound.
func AtLeast(min float64) Range {
	return Range{Min: &min}
}

// AtMost returns a range with only an upper bound.
func AtMost(max float64) Range {
	return Range{Max: &max}
}

func (r Range) Check(v any) []string {
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	var msgs []string
	if r.Min != nil && f < *r.Min {
		msgs = append(msgs, fmt.Sprintf("must be >= %v", *r.Min))
	}
	if r.Max != nil && f > *r.Max {
		msgs = append(msgs, fmt.Sprintf("must be <= %v", *r.Max))
	}
	return msgs
}

// Length bounds the number of characters of a string. Zero Max means no
// upper bound.
type Length struct {
	Min int
	Max int
}

func (l Length) Check(v any) []string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	n := utf8.RuneCountInString(s)
	var msgs []string
	if n < l.Min {
		msgs = append(msgs, fmt.Sprintf("length must be >= %d", l.Min))
	}
	if l.Max > 0 && n > l.Max {
		msgs = append(msgs, fmt.Sprintf("length must be <= %d", l.Max))
	}
	return msgs
}

// Pattern requires a string to match a regular expression.
type Pattern struct {
	Regexp *regexp.Regexp
}

// MatchPattern compiles expr into a Pattern rule.
func MatchPattern(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("compile pattern %q: %w", expr, err)
	}
	return Pattern{Regexp: re}, nil
}

// MustPattern is MatchPattern for expressions known to be valid.
func MustPattern(expr string) Pattern {
	return Pattern{Regexp: regexp.MustCompile(expr)}
}

func (p Pattern) Check(v any) []string {
	s, ok := v.(string)
	if !ok || p.Regexp == nil {
		return nil
	}
	if !p.Regexp.MatchString(s) {
		return []string{fmt.Sprintf("must match pattern %s", p.Regexp)}
	}
	return nil
}

// MinItems requires an array to have at least N elements.
type MinItems struct {
	N int
}

func (m MinItems) Check(v any) []string {
	if !TypeArray.Matches(v) {
		return nil
	}
	if n := len(items(v)); n < m.N {
		return []string{fmt.Sprintf("must have at least %d items, got %d", m.N, n)}
	}
	return nil
}

// Items checks every element of an array against a type and rules.
type Items struct {
	Type  Type
	Rules []Rule
}

func (it Items) Check(v any) []string {
	if !TypeArray.Matches(v) {
		return nil
	}
	var msgs []string
	for i, elem := range items(v) {
		if it.Type != "" && !it.Type.Matches(elem) {
			msgs = append(msgs, fmt.Sprintf("item %d: expected %s, got %s", i, it.Type, typeName(elem)))
			continue
		}
		for _, r := range it.Rules {
			for _, m := range r.Check(elem) {
				msgs = append(msgs, fmt.Sprintf("item %d: %s", i, m))
			}
		}
	}
	return msgs
}

// OneOf restricts a value to an enumerated set. Numbers compare by value
// regardless of their Go type.
type OneOf struct {
	Values []any
}

func (o OneOf) Check(v any) []string {
	for _, allowed := range o.Values {
		if equal(v, allowed) {
			return nil
		}
	}
	return []string{fmt.Sprintf("must be one of %v", o.Values)}
}

func equal(a, b any) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum || bNum {
		return aNum && bNum && fa == fb
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return false
	}
	return a == b
}
