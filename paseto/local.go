package paseto

import (
	"fmt"
	"io"

	"github.com/licensekit/licensekit-go/internal/crypto"
	"github.com/licensekit/licensekit-go/keys"
)

var (
	encryptionKeyInfo = []byte("paseto-encryption-key")
	authKeyInfo       = []byte("paseto-auth-key-for-aead")
)

// Encrypt returns a v4.local token carrying message encrypted under a
// symmetric key. A fresh 32-byte nonce is drawn for every call.
func Encrypt(key *keys.SymmetricKey, message []byte, opts ...Option) (string, error) {
	if err := keys.Require(key, "encrypt v4.local token", keys.KindSymmetric); err != nil {
		return "", err
	}
	cfg := newConfig(opts)

	nonce := make([]byte, crypto.LocalNonceSize)
	if _, err := io.ReadFull(cfg.rand, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}

	header := []byte(PurposeLocal.Header())
	body, err := keys.WithRawBytes(key, func(k []byte) ([]byte, error) {
		ek, n2, ak, err := splitKeys(k, nonce)
		if err != nil {
			return nil, err
		}
		defer crypto.Wipe(ek)
		defer crypto.Wipe(ak)

		c, err := crypto.XChaCha20(ek, n2, message)
		if err != nil {
			return nil, err
		}
		tag, err := crypto.Blake2b(crypto.MACSize, ak, crypto.PAE(header, nonce, c, cfg.footer, cfg.implicit))
		if err != nil {
			return nil, err
		}

		out := make([]byte, 0, len(nonce)+len(c)+len(tag))
		out = append(out, nonce...)
		out = append(out, c...)
		return append(out, tag...), nil
	})
	if err != nil {
		return "", fmt.Errorf("encrypt v4.local token: %w", err)
	}

	return assemble(PurposeLocal, body, cfg.footer), nil
}

// EncryptClaims encodes claims as JSON and encrypts them.
func EncryptClaims(key *keys.SymmetricKey, claims any, opts ...Option) (string, error) {
	payload, err := encodeClaims(claims)
	if err != nil {
		return "", err
	}
	return Encrypt(key, payload, opts...)
}

// Decrypt authenticates and decrypts a v4.local token.
func Decrypt(token string, key *keys.SymmetricKey, opts ...Option) (*Message, error) {
	raw, err := Parse(token)
	if err != nil {
		return nil, err
	}
	return DecryptRaw(raw, key, opts...)
}

// DecryptRaw is Decrypt for a token that has already been parsed. The tag is
// checked before any byte is decrypted.
func DecryptRaw(raw *RawToken, key *keys.SymmetricKey, opts ...Option) (*Message, error) {
	if err := keys.Require(key, "decrypt v4.local token", keys.KindSymmetric); err != nil {
		return nil, err
	}
	if err := raw.expect(PurposeLocal); err != nil {
		return nil, err
	}
	cfg := newConfig(opts)
	if err := raw.checkFooter(cfg); err != nil {
		return nil, err
	}

	if len(raw.Body) < crypto.LocalNonceSize+crypto.MACSize {
		return nil, fmt.Errorf("%w: body shorter than nonce and tag", ErrMalformedToken)
	}
	nonce := raw.Body[:crypto.LocalNonceSize]
	c := raw.Body[crypto.LocalNonceSize : len(raw.Body)-crypto.MACSize]
	tag := raw.Body[len(raw.Body)-crypto.MACSize:]

	plaintext, err := keys.WithRawBytes(key, func(k []byte) ([]byte, error) {
		ek, n2, ak, err := splitKeys(k, nonce)
		if err != nil {
			return nil, err
		}
		defer crypto.Wipe(ek)
		defer crypto.Wipe(ak)

		expected, err := crypto.Blake2b(crypto.MACSize, ak, crypto.PAE([]byte(raw.Header()), nonce, c, raw.Footer, cfg.implicit))
		if err != nil {
			return nil, err
		}
		if !crypto.Equal(expected, tag) {
			return nil, ErrDecryptionFailed
		}
		return crypto.XChaCha20(ek, n2, c)
	})
	if err != nil {
		return nil, fmt.Errorf("decrypt v4.local token: %w", err)
	}

	return &Message{
		Payload: plaintext,
		Footer:  append([]byte(nil), raw.Footer...),
	}, nil
}

// splitKeys derives the encryption key, XChaCha20 nonce and authentication
// key for one message.
func splitKeys(key, nonce []byte) (ek, n2, ak []byte, err error) {
	tmp, err := crypto.Blake2b(crypto.SymmetricKeySize+crypto.XChaChaNonceSize, key, encryptionKeyInfo, nonce)
	if err != nil {
		return nil, nil, nil, err
	}
	ak, err = crypto.Blake2b(crypto.MACSize, key, authKeyInfo, nonce)
	if err != nil {
		crypto.Wipe(tmp)
		return nil, nil, nil, err
	}
	return tmp[:crypto.SymmetricKeySize], tmp[crypto.SymmetricKeySize:], ak, nil
}
