package crypto

import "crypto/subtle"

// Wipe overwrites b with zeros.
func Wipe(b []byte) {
	clear(b)
}

// Equal reports whether a and b are equal in constant time.
func Equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
