package legacy

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"

	"github.com/licensekit/licensekit-go/internal/crypto"
	"github.com/licensekit/licensekit-go/keys"
)

// ComputeSharedSecret returns the ECDH shared secret of priv and pub. The
// curves of both keys must agree on P, N, B, Gx, Gy and BitSize.
func ComputeSharedSecret(priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey) ([]byte, error) {
	if priv == nil || pub == nil {
		return nil, fmt.Errorf("compute shared secret: %w", keys.ErrNilKey)
	}
	if err := sameDomain(priv.Curve, pub.Curve); err != nil {
		return nil, err
	}

	ecdhPriv, err := priv.ECDH()
	if err != nil {
		return nil, fmt.Errorf("compute shared secret: private key: %w", err)
	}
	ecdhPub, err := pub.ECDH()
	if err != nil {
		return nil, fmt.Errorf("compute shared secret: public key: %w", err)
	}
	secret, err := ecdhPriv.ECDH(ecdhPub)
	if err != nil {
		return nil, fmt.Errorf("compute shared secret: %w", err)
	}
	return secret, nil
}

// SharedSecret is ComputeSharedSecret for key-model ECDSA keys.
func SharedSecret(priv *keys.PrivateKey, pub *keys.PublicKey) ([]byte, error) {
	ecPriv, err := priv.ECDSA()
	if err != nil {
		return nil, err
	}
	ecPub, err := pub.ECDSA()
	if err != nil {
		return nil, err
	}
	return ComputeSharedSecret(ecPriv, ecPub)
}

func sameDomain(a, b elliptic.Curve) error {
	if a == nil || b == nil {
		return fmt.Errorf("%w: missing curve", ErrCurveMismatch)
	}
	pa, pb := a.Params(), b.Params()
	switch {
	case pa.BitSize != pb.BitSize:
		return fmt.Errorf("%w: bit size %d != %d", ErrCurveMismatch, pa.BitSize, pb.BitSize)
	case pa.P.Cmp(pb.P) != 0:
		return fmt.Errorf("%w: field prime differs", ErrCurveMismatch)
	case pa.N.Cmp(pb.N) != 0:
		return fmt.Errorf("%w: group order differs", ErrCurveMismatch)
	case pa.B.Cmp(pb.B) != 0:
		return fmt.Errorf("%w: curve coefficient differs", ErrCurveMismatch)
	case pa.Gx.Cmp(pb.Gx) != 0 || pa.Gy.Cmp(pb.Gy) != 0:
		return fmt.Errorf("%w: generator differs", ErrCurveMismatch)
	}
	return nil
}

// DeriveSymmetricKey expands a shared secret into a key of length bytes with
// HKDF-SHA-256. An empty salt is replaced by zeros.
func DeriveSymmetricKey(secret, salt, info []byte, length int) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("derive key: invalid length %d", length)
	}
	return crypto.DeriveKey(secret, salt, info, length)
}
