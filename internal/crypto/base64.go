package crypto

import (
	"encoding/base64"
	"strings"
)

var strictRawURL = base64.RawURLEncoding.Strict()

// ToBase64URL encodes bytes to URL-safe base64 without padding.
func ToBase64URL(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

// FromBase64URL decodes URL-safe base64 without padding. Padding characters
// and non-canonical trailing bits are rejected so that every value has
// exactly one textual form.
func FromBase64URL(s string) ([]byte, error) {
	return strictRawURL.DecodeString(s)
}

// DecodeBase64 decodes standard or URL-safe base64, with or without padding.
// Surrounding whitespace is ignored.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "-_") {
		return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
