package crypto

import (
	"fmt"

	"golang.org/x/crypto/chacha20"
)

// XChaCha20 XORs src with the XChaCha20 keystream for key and a 24-byte
// nonce. The same call encrypts and decrypts. It provides no integrity;
// callers verify a MAC first.
func XChaCha20(key, nonce, src []byte) ([]byte, error) {
	if len(key) != chacha20.KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), chacha20.KeySize)
	}

	if len(nonce) != XChaChaNonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), XChaChaNonceSize)
	}

	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, fmt.Errorf("xchacha20: %w", err)
	}

	dst := make([]byte, len(src))
	c.XORKeyStream(dst, src)
	return dst, nil
}
