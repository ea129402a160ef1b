package crypto

import (
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Blake2b returns the size-byte BLAKE2b digest of the concatenated parts,
// keyed with key when key is non-empty.
func Blake2b(size int, key []byte, parts ...[]byte) ([]byte, error) {
	h, err := blake2b.New(size, key)
	if err != nil {
		return nil, fmt.Errorf("blake2b: %w", err)
	}
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil), nil
}
