package paserk

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/licensekit/licensekit-go/internal/crypto"
	"github.com/licensekit/licensekit-go/keys"
)

// pieProtocol is the only key-wrapping protocol defined for version 4.
const pieProtocol = "pie"

const (
	pieEncryptionDomain = 0x80
	pieAuthDomain       = 0x81
)

func pieHeader(t Type) string {
	return t.Header() + pieProtocol + "."
}

// Wrap encrypts a symmetric key (k4.local-wrap.pie) or Ed25519 private key
// (k4.secret-wrap.pie) under wrappingKey. A nil r selects crypto/rand.
func Wrap(key keys.Key, wrappingKey *keys.SymmetricKey, r io.Reader) (string, error) {
	t, err := wrapType(key, TypeLocalWrap, TypeSecretWrap)
	if err != nil {
		return "", err
	}
	if err := keys.Require(wrappingKey, "wrap with pie", keys.KindSymmetric); err != nil {
		return "", err
	}
	if r == nil {
		r = rand.Reader
	}

	nonce := make([]byte, crypto.LocalNonceSize)
	if _, err := io.ReadFull(r, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}

	h := pieHeader(t)
	return keys.WithRawBytes(key, func(ptk []byte) (string, error) {
		return keys.WithRawBytes(wrappingKey, func(wk []byte) (string, error) {
			ek, n2, ak, err := pieKeys(wk, nonce)
			if err != nil {
				return "", err
			}
			defer crypto.Wipe(ek)
			defer crypto.Wipe(ak)

			c, err := crypto.XChaCha20(ek, n2, ptk)
			if err != nil {
				return "", err
			}
			tag, err := crypto.Blake2b(crypto.MACSize, ak, []byte(h), nonce, c)
			if err != nil {
				return "", err
			}

			out := make([]byte, 0, len(tag)+len(nonce)+len(c))
			out = append(out, tag...)
			out = append(out, nonce...)
			out = append(out, c...)
			return h + crypto.ToBase64URL(out), nil
		})
	})
}

// Unwrap recovers a key wrapped by Wrap. The tag is checked before
// decryption; a mismatch is reported as ErrCorruptWrapping.
func Unwrap(s string, wrappingKey *keys.SymmetricKey) (keys.Key, error) {
	if err := keys.Require(wrappingKey, "unwrap pie", keys.KindSymmetric); err != nil {
		return nil, err
	}

	t, err := TypeOf(s)
	if err != nil {
		return nil, err
	}
	var keyLen int
	switch t {
	case TypeLocalWrap:
		keyLen = crypto.SymmetricKeySize
	case TypeSecretWrap:
		keyLen = crypto.Ed25519PrivateKeySize
	default:
		return nil, &TypeError{Want: []Type{TypeLocalWrap, TypeSecretWrap}, Got: string(t)}
	}

	h := pieHeader(t)
	data, err := payload(s, t, h)
	if err != nil {
		return nil, err
	}
	if len(data) != crypto.MACSize+crypto.LocalNonceSize+keyLen {
		return nil, fmt.Errorf("%w: %s payload is %d bytes", ErrCorruptWrapping, t, len(data))
	}
	tag := data[:crypto.MACSize]
	nonce := data[crypto.MACSize : crypto.MACSize+crypto.LocalNonceSize]
	c := data[crypto.MACSize+crypto.LocalNonceSize:]

	ptk, err := keys.WithRawBytes(wrappingKey, func(wk []byte) ([]byte, error) {
		ek, n2, ak, err := pieKeys(wk, nonce)
		if err != nil {
			return nil, err
		}
		defer crypto.Wipe(ek)
		defer crypto.Wipe(ak)

		expected, err := crypto.Blake2b(crypto.MACSize, ak, []byte(h), nonce, c)
		if err != nil {
			return nil, err
		}
		if !crypto.Equal(expected, tag) {
			return nil, ErrCorruptWrapping
		}
		return crypto.XChaCha20(ek, n2, c)
	})
	if err != nil {
		return nil, fmt.Errorf("unwrap %s: %w", t, err)
	}
	defer crypto.Wipe(ptk)
	return unwrappedKey(t, ptk)
}

func pieKeys(wk, nonce []byte) (ek, n2, ak []byte, err error) {
	x, err := crypto.Blake2b(crypto.SymmetricKeySize+crypto.XChaChaNonceSize, wk, []byte{pieEncryptionDomain}, nonce)
	if err != nil {
		return nil, nil, nil, err
	}
	ak, err = crypto.Blake2b(crypto.MACSize, wk, []byte{pieAuthDomain}, nonce)
	if err != nil {
		crypto.Wipe(x)
		return nil, nil, nil, err
	}
	return x[:crypto.SymmetricKeySize], x[crypto.SymmetricKeySize:], ak, nil
}
