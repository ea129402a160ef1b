package paserk

import (
	"fmt"

	"github.com/licensekit/licensekit-go/internal/crypto"
	"github.com/licensekit/licensekit-go/keys"
)

// idSize is the BLAKE2b digest length of a key identifier (264 bits).
const idSize = 33

// ID returns the k4.lid, k4.pid or k4.sid identifier of key.
func ID(key keys.Key) (string, error) {
	encoded, err := Encode(key)
	if err != nil {
		return "", err
	}
	return IDOf(encoded)
}

// IDOf returns the identifier for an encoded k4.local, k4.public or
// k4.secret string. The encoding is not decoded, so IDOf also serves keys
// held only as text.
func IDOf(encoded string) (string, error) {
	t, err := TypeOf(encoded)
	if err != nil {
		return "", err
	}

	var idType Type
	switch t {
	case TypeLocal:
		idType = TypeLocalID
	case TypePublic:
		idType = TypePublicID
	case TypeSecret:
		idType = TypeSecretID
	default:
		return "", &TypeError{Want: []Type{TypeLocal, TypePublic, TypeSecret}, Got: string(t)}
	}

	h := idType.Header()
	d, err := crypto.Blake2b(idSize, nil, []byte(h), []byte(encoded))
	if err != nil {
		return "", fmt.Errorf("compute %s: %w", idType, err)
	}
	return h + crypto.ToBase64URL(d), nil
}
