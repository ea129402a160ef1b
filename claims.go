package licensekit

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

// Type is the license tier.
type Type string

const (
	TypeStandard Type = "standard"
	TypePro      Type = "pro"
)

var (
	appIDPattern = regexp.MustCompile(`^[A-Za-z0-9\-_.]{3,100}$`)
	typePattern  = regexp.MustCompile(`^[a-z0-9\-_.@]{2,100}$`)
)

// ParseType lower-cases s and checks it is a predefined type or a custom
// 2 to 100 character token of [a-z0-9-_.@].
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeStandard, TypePro:
		return t, nil
	}
	if !typePattern.MatchString(string(t)) {
		return "", fmt.Errorf("%w: type %q must be 2-100 characters of [a-z0-9-_.@]", ErrInvalidClaims, s)
	}
	return t, nil
}

// Custom reports whether t is not one of the predefined types.
func (t Type) Custom() bool {
	return t != TypeStandard && t != TypePro
}

// Claims is the payload of a license token.
type Claims struct {
	Subject   string         `json:"sub"`
	AppID     string         `json:"app_id"`
	Type      Type           `json:"type"`
	IssuedAt  time.Time      `json:"iat,omitzero"`
	ExpiresAt time.Time      `json:"exp"`
	NotBefore time.Time      `json:"nbf,omitzero"`
	Issuer    string         `json:"iss,omitempty"`
	Trial     bool           `json:"trial,omitempty"`
	Device    string         `json:"device,omitempty"`
	Features  map[string]any `json:"features"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Validate checks the construction rules. It returns a *ClaimsError keyed by
// JSON field name.
func (c *Claims) Validate() error {
	var cerr ClaimsError

	if strings.TrimSpace(c.Subject) == "" {
		cerr.add("sub", "is required")
	}
	if !appIDPattern.MatchString(c.AppID) {
		cerr.add("app_id", "must be 3-100 characters of [A-Za-z0-9-_.]")
	}
	if t, err := ParseType(string(c.Type)); err != nil || t != c.Type {
		cerr.add("type", "must be standard, pro or a lower-case token of 2-100 characters of [a-z0-9-_.@]")
	}
	if c.ExpiresAt.IsZero() {
		cerr.add("exp", "is required")
	}
	if !c.NotBefore.IsZero() && !c.ExpiresAt.IsZero() && !c.NotBefore.Before(c.ExpiresAt) {
		cerr.add("nbf", "must be before exp")
	}
	return cerr.errOrNil()
}

// normalize folds the type to lower case so that tokens issued with "Pro"
// construct as "pro".
func (c *Claims) normalize() {
	if t, err := ParseType(string(c.Type)); err == nil {
		c.Type = t
	}
}

// clone returns a copy that shares no maps or slices with c.
func (c Claims) clone() Claims {
	c.Features = cloneMap(c.Features)
	c.Metadata = cloneMap(c.Metadata)
	return c
}

// cloneMap deep-copies the JSON-shaped values of m. A nil map stays nil.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		if v == nil {
			return v
		}
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return slices.Clone(v)
	}
	return v
}

// Feature returns a feature value.
func (c *Claims) Feature(name string) (any, bool) {
	v, ok := c.Features[name]
	return v, ok
}

// HasFeature reports whether a feature is present and not false or null.
func (c *Claims) HasFeature(name string) bool {
	v, ok := c.Features[name]
	if !ok || v == nil {
		return false
	}
	if b, isBool := v.(bool); isBool {
		return b
	}
	return true
}
