package crypto

import (
	"crypto/sha512"
	"fmt"
	"io"
	"math/big"

	"github.com/cloudflare/circl/dh/x25519"
)

// fieldPrime is 2^255 - 19.
var fieldPrime = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(19))

// GenerateX25519 creates a new X25519 keypair reading the secret from r.
func GenerateX25519(r io.Reader) (public, secret []byte, err error) {
	var sk, pk x25519.Key
	if _, err := io.ReadFull(r, sk[:]); err != nil {
		return nil, nil, fmt.Errorf("read random: %w", err)
	}
	x25519.KeyGen(&pk, &sk)

	secret = make([]byte, X25519KeySize)
	copy(secret, sk[:])
	Wipe(sk[:])
	return pk[:], secret, nil
}

// X25519Public derives the public key for an X25519 secret.
func X25519Public(secret []byte) ([]byte, error) {
	if len(secret) != X25519KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(secret), X25519KeySize)
	}

	var sk, pk x25519.Key
	copy(sk[:], secret)
	defer Wipe(sk[:])
	x25519.KeyGen(&pk, &sk)
	return pk[:], nil
}

// X25519Shared computes the shared secret between secret and public.
// Low-order public keys, which give an all-zero result, are rejected.
func X25519Shared(secret, public []byte) ([]byte, error) {
	if len(secret) != X25519KeySize || len(public) != X25519KeySize {
		return nil, fmt.Errorf("%w: x25519 keys must be %d bytes", ErrInvalidKeySize, X25519KeySize)
	}

	var sk, pk, shared x25519.Key
	copy(sk[:], secret)
	copy(pk[:], public)
	defer Wipe(sk[:])

	if !x25519.Shared(&shared, &sk, &pk) {
		return nil, ErrInvalidPoint
	}
	return shared[:], nil
}

// Ed25519PublicToX25519 maps an Ed25519 public key to the birationally
// equivalent Montgomery u-coordinate: u = (1 + y) / (1 - y) mod p.
func Ed25519PublicToX25519(public []byte) ([]byte, error) {
	if len(public) != Ed25519PublicKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(public), Ed25519PublicKeySize)
	}

	// Little-endian y with the sign bit of x cleared.
	be := make([]byte, Ed25519PublicKeySize)
	for i, b := range public {
		be[len(be)-1-i] = b
	}
	be[0] &= 0x7f

	y := new(big.Int).SetBytes(be)
	if y.Cmp(fieldPrime) >= 0 {
		return nil, ErrInvalidPoint
	}

	den := new(big.Int).Sub(big.NewInt(1), y)
	den.Mod(den, fieldPrime)
	if den.Sign() == 0 {
		return nil, ErrInvalidPoint
	}

	u := new(big.Int).Add(big.NewInt(1), y)
	u.Mul(u, den.ModInverse(den, fieldPrime))
	u.Mod(u, fieldPrime)

	out := u.FillBytes(make([]byte, X25519KeySize))
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Ed25519SeedToX25519 derives the X25519 secret scalar that corresponds to
// an Ed25519 seed: the clamped low half of SHA-512(seed).
func Ed25519SeedToX25519(seed []byte) ([]byte, error) {
	if len(seed) != Ed25519SeedSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(seed), Ed25519SeedSize)
	}

	h := sha512.Sum512(seed)
	defer Wipe(h[:])

	out := make([]byte, X25519KeySize)
	copy(out, h[:X25519KeySize])
	out[0] &= 248
	out[31] &= 127
	out[31] |= 64
	return out, nil
}
