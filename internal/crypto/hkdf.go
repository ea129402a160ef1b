package crypto

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveKey derives a key using HKDF-SHA-256.
func DeriveKey(secret, salt, info []byte, length int) ([]byte, error) {
	return DeriveKeyWithHash(sha256.New, secret, salt, info, length)
}

// DeriveKeyWithHash derives a key using HKDF over the given hash.
// An empty salt is replaced by a zero-filled salt of the hash size.
func DeriveKeyWithHash(newHash func() hash.Hash, secret, salt, info []byte, length int) ([]byte, error) {
	if len(salt) == 0 {
		salt = make([]byte, newHash().Size())
	}

	reader := hkdf.New(newHash, secret, salt, info)
	key := make([]byte, length)

	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return key, nil
}
