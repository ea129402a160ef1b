package keys

import (
	"crypto/elliptic"
	"fmt"
)

// Kind identifies the algorithm family of a key.
type Kind uint8

const (
	// KindSymmetric is a 32-byte symmetric key.
	KindSymmetric Kind = iota + 1
	// KindEd25519 is a signing-capable Ed25519 key.
	KindEd25519
	// KindX25519 is an encryption-only X25519 key.
	KindX25519
	// KindECDSA is a legacy NIST curve key.
	KindECDSA
	// KindRSA is a legacy RSA key.
	KindRSA
)

func (k Kind) String() string {
	switch k {
	case KindSymmetric:
		return "symmetric"
	case KindEd25519:
		return "ed25519"
	case KindX25519:
		return "x25519"
	case KindECDSA:
		return "ecdsa"
	case KindRSA:
		return "rsa"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// IsLegacy reports whether keys of this kind belong to the legacy path.
func (k Kind) IsLegacy() bool {
	return k == KindECDSA || k == KindRSA
}

// CanSign reports whether keys of this kind may sign new-format tokens.
func (k Kind) CanSign() bool {
	return k == KindEd25519
}

// Curve names the domain parameters of an ECDSA key.
type Curve string

const (
	CurveNone Curve = ""
	CurveP256 Curve = "P-256"
	CurveP384 Curve = "P-384"
	CurveP521 Curve = "P-521"
)

// Elliptic returns the named curve, or false for unknown names.
func (c Curve) Elliptic() (elliptic.Curve, bool) {
	switch c {
	case CurveP256:
		return elliptic.P256(), true
	case CurveP384:
		return elliptic.P384(), true
	case CurveP521:
		return elliptic.P521(), true
	default:
		return nil, false
	}
}

func curveOf(c elliptic.Curve) (Curve, bool) {
	if c == nil {
		return CurveNone, false
	}
	name := Curve(c.Params().Name)
	if _, ok := name.Elliptic(); !ok {
		return CurveNone, false
	}
	return name, true
}

// Params carries algorithm parameters for key generation.
type Params struct {
	// Curve selects the ECDSA curve. Defaults to P-256.
	Curve Curve
	// Bits selects the RSA modulus size. Defaults to 3072; minimum 2048.
	Bits int
}
