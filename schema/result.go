package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrSchema is matched by every *ValidationError.
var ErrSchema = errors.New("schema validation failed")

// Result is the outcome of a validation. Valid is true iff Errors is empty.
type Result struct {
	Valid  bool
	Errors map[string][]string
}

func newResult() Result {
	return Result{Valid: true}
}

func (r *Result) add(field string, msgs ...string) {
	if len(msgs) == 0 {
		return
	}
	if r.Errors == nil {
		r.Errors = make(map[string][]string)
	}
	r.Errors[field] = append(r.Errors[field], msgs...)
	r.Valid = false
}

// Merge adds every error of other to r.
func (r *Result) Merge(other Result) {
	for field, msgs := range other.Errors {
		r.add(field, msgs...)
	}
}

// Fields returns the names of failing fields in sorted order.
func (r Result) Fields() []string {
	fields := make([]string, 0, len(r.Errors))
	for f := range r.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// ValidationError aggregates field errors.
type ValidationError struct {
	Errors map[string][]string
}

func (e *ValidationError) Error() string {
	r := Result{Errors: e.Errors}
	parts := make([]string, 0, len(e.Errors))
	for _, f := range r.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Errors[f], ", ")))
	}
	return fmt.Sprintf("%v: %s", ErrSchema, strings.Join(parts, "; "))
}

// Is implements errors.Is for sentinel error matching.
func (e *ValidationError) Is(target error) bool {
	return target == ErrSchema
}
