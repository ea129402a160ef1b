package paserk

import (
	"fmt"
	"strings"

	"github.com/licensekit/licensekit-go/internal/crypto"
	"github.com/licensekit/licensekit-go/keys"
)

// Version is the PASERK version prefix implemented by this package.
const Version = "k4"

// Type is the second field of a PASERK header.
type Type string

const (
	TypeLocal      Type = "local"
	TypePublic     Type = "public"
	TypeSecret     Type = "secret"
	TypeLocalID    Type = "lid"
	TypePublicID   Type = "pid"
	TypeSecretID   Type = "sid"
	TypeLocalPW    Type = "local-pw"
	TypeSecretPW   Type = "secret-pw"
	TypeLocalWrap  Type = "local-wrap"
	TypeSecretWrap Type = "secret-wrap"
	TypeSeal       Type = "seal"
)

// Header returns the "k4.<type>." prefix.
func (t Type) Header() string {
	return Version + "." + string(t) + "."
}

// TypeOf returns the type of a PASERK string without decoding its data.
func TypeOf(s string) (Type, error) {
	version, rest, ok := strings.Cut(s, ".")
	if !ok || version != Version {
		return "", fmt.Errorf("%w: missing %s prefix", ErrMalformed, Version)
	}
	typ, _, ok := strings.Cut(rest, ".")
	if !ok || typ == "" {
		return "", fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return Type(typ), nil
}

// Encode returns the k4.local, k4.public or k4.secret encoding of key.
func Encode(key keys.Key) (string, error) {
	var t Type
	switch k := key.(type) {
	case *keys.SymmetricKey:
		t = TypeLocal
	case *keys.PublicKey:
		if err := keys.Require(k, "encode k4.public", keys.KindEd25519); err != nil {
			return "", err
		}
		t = TypePublic
	case *keys.PrivateKey:
		if err := keys.Require(k, "encode k4.secret", keys.KindEd25519); err != nil {
			return "", err
		}
		t = TypeSecret
	default:
		return "", fmt.Errorf("encode paserk: %w", keys.ErrNilKey)
	}

	return keys.WithRawBytes(key, func(raw []byte) (string, error) {
		return t.Header() + crypto.ToBase64URL(raw), nil
	})
}

// Decode decodes a k4.local, k4.public or k4.secret string.
func Decode(s string) (keys.Key, error) {
	t, err := TypeOf(s)
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeLocal:
		return DecodeLocal(s)
	case TypePublic:
		return DecodePublic(s)
	case TypeSecret:
		return DecodeSecret(s)
	}
	return nil, &TypeError{Want: []Type{TypeLocal, TypePublic, TypeSecret}, Got: string(t)}
}

// DecodeLocal decodes a k4.local string.
func DecodeLocal(s string) (*keys.SymmetricKey, error) {
	raw, err := payload(s, TypeLocal, TypeLocal.Header())
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(raw)
	return keys.NewSymmetricKey(raw)
}

// DecodePublic decodes a k4.public string.
func DecodePublic(s string) (*keys.PublicKey, error) {
	raw, err := payload(s, TypePublic, TypePublic.Header())
	if err != nil {
		return nil, err
	}
	return keys.NewEd25519PublicKey(raw)
}

// DecodeSecret decodes a k4.secret string. The embedded public key must be
// the one derived from the seed.
func DecodeSecret(s string) (*keys.PrivateKey, error) {
	raw, err := payload(s, TypeSecret, TypeSecret.Header())
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(raw)
	return keys.NewEd25519PrivateKey(raw)
}

// payload checks that s starts with header and decodes the data that
// follows it. t names the expected type in errors.
func payload(s string, t Type, header string) ([]byte, error) {
	data, ok := strings.CutPrefix(s, header)
	if !ok {
		got, err := TypeOf(s)
		if err != nil {
			return nil, err
		}
		if got == t {
			return nil, fmt.Errorf("%w: unsupported %s header", ErrMalformed, t)
		}
		return nil, &TypeError{Want: []Type{t}, Got: string(got)}
	}
	raw, err := crypto.FromBase64URL(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return raw, nil
}
