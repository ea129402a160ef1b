package crypto

import "errors"

var (
	// ErrInvalidKeySize is returned when a key has the wrong length.
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrInvalidNonceSize is returned when a nonce or IV has the wrong length.
	ErrInvalidNonceSize = errors.New("invalid nonce size")

	// ErrInvalidPoint is returned when a public key is not a valid curve point
	// or converts to a low-order point.
	ErrInvalidPoint = errors.New("invalid curve point")

	// ErrPadding is returned when PKCS#7 padding is malformed.
	ErrPadding = errors.New("invalid padding")

	// ErrInvalidCiphertext is returned when a ciphertext is not a whole
	// number of blocks.
	ErrInvalidCiphertext = errors.New("invalid ciphertext length")
)
