package legacy

import (
	gocrypto "crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"

	"github.com/licensekit/licensekit-go/keys"
)

// Algorithm names the signature scheme of a legacy key.
type Algorithm string

const (
	ES256 Algorithm = "ES256"
	ES384 Algorithm = "ES384"
	ES512 Algorithm = "ES512"
	RS256 Algorithm = "RS256"
)

func (a Algorithm) hash() gocrypto.Hash {
	switch a {
	case ES384:
		return gocrypto.SHA384
	case ES512:
		return gocrypto.SHA512
	default:
		return gocrypto.SHA256
	}
}

// AlgorithmFor returns the signature algorithm used with key. ECDSA keys
// hash with the SHA-2 variant matching their curve size.
func AlgorithmFor(key keys.Key) (Algorithm, error) {
	if err := keys.Require(key, "legacy signature", keys.KindECDSA, keys.KindRSA); err != nil {
		return "", err
	}
	if key.Kind() == keys.KindRSA {
		return RS256, nil
	}

	var curve keys.Curve
	switch k := key.(type) {
	case *keys.PrivateKey:
		curve = k.Curve()
	case *keys.PublicKey:
		curve = k.Curve()
	}
	switch curve {
	case keys.CurveP256:
		return ES256, nil
	case keys.CurveP384:
		return ES384, nil
	case keys.CurveP521:
		return ES512, nil
	}
	return "", fmt.Errorf("legacy signature: unsupported curve %q: %w", curve, keys.ErrUnsupportedKey)
}

// Sign signs msg with a legacy key. ECDSA signatures are DER encoded; RSA
// signatures use PKCS#1 v1.5 with SHA-256. A nil r selects crypto/rand.
func Sign(priv *keys.PrivateKey, msg []byte, r io.Reader) ([]byte, error) {
	alg, err := AlgorithmFor(priv)
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = rand.Reader
	}
	digest := digestOf(alg, msg)

	if alg == RS256 {
		key, err := priv.RSA()
		if err != nil {
			return nil, err
		}
		sig, err := rsa.SignPKCS1v15(r, key, alg.hash(), digest)
		if err != nil {
			return nil, fmt.Errorf("rsa sign: %w", err)
		}
		return sig, nil
	}

	key, err := priv.ECDSA()
	if err != nil {
		return nil, err
	}
	sr, ss, err := ecdsa.Sign(r, key, digest)
	if err != nil {
		return nil, fmt.Errorf("ecdsa sign: %w", err)
	}
	return EncodeSignature(sr, ss)
}

// VerifySignature checks a signature produced by Sign. A signature that is
// not valid DER is reported as ErrMalformedSignature; one that does not
// verify as ErrSignatureInvalid.
func VerifySignature(pub *keys.PublicKey, msg, sig []byte) error {
	alg, err := AlgorithmFor(pub)
	if err != nil {
		return err
	}
	digest := digestOf(alg, msg)

	if alg == RS256 {
		key, err := pub.RSA()
		if err != nil {
			return err
		}
		if err := rsa.VerifyPKCS1v15(key, alg.hash(), digest, sig); err != nil {
			return ErrSignatureInvalid
		}
		return nil
	}

	key, err := pub.ECDSA()
	if err != nil {
		return err
	}
	r, s, err := DecodeSignature(sig)
	if err != nil {
		return err
	}
	if !ecdsa.Verify(key, digest, r, s) {
		return ErrSignatureInvalid
	}
	return nil
}

func digestOf(alg Algorithm, msg []byte) []byte {
	h := alg.hash().New()
	h.Write(msg)
	return h.Sum(nil)
}
