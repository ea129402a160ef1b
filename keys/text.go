package keys

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	stded25519 "crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/licensekit/licensekit-go/internal/crypto"
)

const (
	pemTypePrivateKey        = "PRIVATE KEY"
	pemTypePublicKey         = "PUBLIC KEY"
	pemTypeECPrivateKey      = "EC PRIVATE KEY"
	pemTypeRSAPrivateKey     = "RSA PRIVATE KEY"
	pemTypeRSAPublicKey      = "RSA PUBLIC KEY"
	pemTypeEd25519PrivateKey = "ED25519 PRIVATE KEY"
	pemTypeEd25519PublicKey  = "ED25519 PUBLIC KEY"
)

// ImportOption configures ImportText.
type ImportOption func(*importConfig)

type importConfig struct {
	curve Curve
}

// WithCurve requires an imported ECDSA key to be on the given curve.
func WithCurve(c Curve) ImportOption {
	return func(cfg *importConfig) {
		cfg.curve = c
	}
}

// ImportText parses PEM or base64 key text into a key of the given kind.
//
// PEM blocks are self-describing: PKCS#8 "PRIVATE KEY", PKIX "PUBLIC KEY",
// SEC1 "EC PRIVATE KEY", PKCS#1 "RSA PRIVATE KEY"/"RSA PUBLIC KEY", and raw
// "ED25519 PRIVATE KEY"/"ED25519 PUBLIC KEY". Bare base64 or base64url text
// is accepted for symmetric keys (32 bytes) and Ed25519 keys (32-byte public
// or 64-byte seed || public).
func ImportText(kind Kind, text string, opts ...ImportOption) (Key, error) {
	cfg := &importConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &FormatError{Kind: kind, Reason: "empty key text"}
	}

	var (
		key Key
		err error
	)
	if strings.HasPrefix(text, "-----BEGIN") {
		key, err = importPEM(kind, []byte(text))
	} else {
		key, err = importBase64(kind, text)
	}
	if err != nil {
		return nil, err
	}

	if cfg.curve != CurveNone && curveOfKey(key) != cfg.curve {
		key.Dispose()
		return nil, &FormatError{Kind: kind, Reason: fmt.Sprintf("curve %s does not match expected %s", curveOfKey(key), cfg.curve)}
	}
	return key, nil
}

func curveOfKey(k Key) Curve {
	switch v := k.(type) {
	case *PublicKey:
		return v.curve
	case *PrivateKey:
		return v.curve
	}
	return CurveNone
}

func importBase64(kind Kind, text string) (Key, error) {
	raw, err := crypto.DecodeBase64(text)
	if err != nil {
		return nil, &FormatError{Kind: kind, Reason: "invalid base64", Err: err}
	}
	defer crypto.Wipe(raw)

	switch kind {
	case KindSymmetric:
		return NewSymmetricKey(raw)
	case KindEd25519:
		switch len(raw) {
		case crypto.Ed25519PublicKeySize:
			return NewEd25519PublicKey(raw)
		case crypto.Ed25519PrivateKeySize:
			return NewEd25519PrivateKey(raw)
		}
		return nil, &FormatError{Kind: kind, Reason: fmt.Sprintf("raw key is %d bytes, want 32 or 64", len(raw))}
	default:
		return nil, &FormatError{Kind: kind, Reason: "raw base64 text is only accepted for symmetric and ed25519 keys; use PEM"}
	}
}

func importPEM(kind Kind, data []byte) (Key, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, &FormatError{Kind: kind, Reason: "failed to decode PEM block"}
	}
	defer crypto.Wipe(block.Bytes)

	var (
		parsed any
		err    error
	)
	switch block.Type {
	case pemTypePrivateKey:
		parsed, err = x509.ParsePKCS8PrivateKey(block.Bytes)
	case pemTypePublicKey:
		parsed, err = x509.ParsePKIXPublicKey(block.Bytes)
	case pemTypeECPrivateKey:
		parsed, err = x509.ParseECPrivateKey(block.Bytes)
	case pemTypeRSAPrivateKey:
		parsed, err = x509.ParsePKCS1PrivateKey(block.Bytes)
	case pemTypeRSAPublicKey:
		parsed, err = x509.ParsePKCS1PublicKey(block.Bytes)
	case pemTypeEd25519PrivateKey:
		if kind != KindEd25519 {
			return nil, &FormatError{Kind: kind, Reason: fmt.Sprintf("PEM type %q holds an ed25519 key", block.Type)}
		}
		return NewEd25519PrivateKey(block.Bytes)
	case pemTypeEd25519PublicKey:
		if kind != KindEd25519 {
			return nil, &FormatError{Kind: kind, Reason: fmt.Sprintf("PEM type %q holds an ed25519 key", block.Type)}
		}
		return NewEd25519PublicKey(block.Bytes)
	default:
		return nil, &FormatError{Kind: kind, Reason: fmt.Sprintf("unexpected PEM type %q", block.Type)}
	}
	if err != nil {
		return nil, &FormatError{Kind: kind, Reason: fmt.Sprintf("parse %s", strings.ToLower(block.Type)), Err: err}
	}

	return fromStdlib(kind, parsed)
}

// fromStdlib converts a parsed standard library key into a Key of the
// requested kind.
func fromStdlib(kind Kind, parsed any) (Key, error) {
	mismatch := func(got Kind) error {
		return &FormatError{Kind: kind, Reason: fmt.Sprintf("text holds a %s key", got)}
	}

	switch v := parsed.(type) {
	case stded25519.PrivateKey:
		if kind != KindEd25519 {
			return nil, mismatch(KindEd25519)
		}
		return NewEd25519PrivateKey(v)
	case stded25519.PublicKey:
		if kind != KindEd25519 {
			return nil, mismatch(KindEd25519)
		}
		return NewEd25519PublicKey(v)
	case *ecdh.PrivateKey:
		if v.Curve() != ecdh.X25519() {
			return nil, &FormatError{Kind: kind, Reason: "only X25519 ECDH keys are supported"}
		}
		if kind != KindX25519 {
			return nil, mismatch(KindX25519)
		}
		return NewX25519PrivateKey(v.Bytes())
	case *ecdh.PublicKey:
		if v.Curve() != ecdh.X25519() {
			return nil, &FormatError{Kind: kind, Reason: "only X25519 ECDH keys are supported"}
		}
		if kind != KindX25519 {
			return nil, mismatch(KindX25519)
		}
		return NewX25519PublicKey(v.Bytes())
	case *ecdsa.PrivateKey:
		if kind != KindECDSA {
			return nil, mismatch(KindECDSA)
		}
		return FromECDSA(v)
	case *ecdsa.PublicKey:
		if kind != KindECDSA {
			return nil, mismatch(KindECDSA)
		}
		return FromECDSAPublic(v)
	case *rsa.PrivateKey:
		if kind != KindRSA {
			return nil, mismatch(KindRSA)
		}
		return FromRSA(v)
	case *rsa.PublicKey:
		if kind != KindRSA {
			return nil, mismatch(KindRSA)
		}
		return FromRSAPublic(v)
	default:
		return nil, &FormatError{Kind: kind, Reason: fmt.Sprintf("unsupported key type %T", parsed)}
	}
}

// ExportText encodes a key for operators: base64url for symmetric keys,
// PKCS#8 PEM for private keys and PKIX PEM for public keys.
func ExportText(k Key) (string, error) {
	if isNil(k) {
		return "", ErrNilKey
	}

	switch v := k.(type) {
	case *SymmetricKey:
		return WithRawBytes(v, func(raw []byte) (string, error) {
			return crypto.ToBase64URL(raw), nil
		})
	case *PublicKey:
		return WithRawBytes(v, func(raw []byte) (string, error) {
			der, err := publicDER(v.kind, raw)
			if err != nil {
				return "", err
			}
			return string(pem.EncodeToMemory(&pem.Block{Type: pemTypePublicKey, Bytes: der})), nil
		})
	case *PrivateKey:
		return WithRawBytes(v, func(raw []byte) (string, error) {
			der, err := privateDER(v.kind, raw)
			if err != nil {
				return "", err
			}
			defer crypto.Wipe(der)
			return string(pem.EncodeToMemory(&pem.Block{Type: pemTypePrivateKey, Bytes: der})), nil
		})
	}
	return "", fmt.Errorf("export %T: %w", k, ErrUnsupportedKey)
}

func publicDER(kind Kind, raw []byte) ([]byte, error) {
	switch kind {
	case KindEd25519:
		return x509.MarshalPKIXPublicKey(stded25519.PublicKey(raw))
	case KindX25519:
		pub, err := ecdh.X25519().NewPublicKey(raw)
		if err != nil {
			return nil, &FormatError{Kind: kind, Reason: "public key", Err: err}
		}
		return x509.MarshalPKIXPublicKey(pub)
	case KindECDSA, KindRSA:
		der := make([]byte, len(raw))
		copy(der, raw)
		return der, nil
	}
	return nil, &KindError{Op: "export public key", Want: []Kind{KindEd25519, KindX25519, KindECDSA, KindRSA}, Got: kind}
}

func privateDER(kind Kind, raw []byte) ([]byte, error) {
	switch kind {
	case KindEd25519:
		return x509.MarshalPKCS8PrivateKey(stded25519.NewKeyFromSeed(raw[:crypto.Ed25519SeedSize]))
	case KindX25519:
		priv, err := ecdh.X25519().NewPrivateKey(raw)
		if err != nil {
			return nil, &FormatError{Kind: kind, Reason: "private key", Err: err}
		}
		return x509.MarshalPKCS8PrivateKey(priv)
	case KindECDSA, KindRSA:
		der := make([]byte, len(raw))
		copy(der, raw)
		return der, nil
	}
	return nil, &KindError{Op: "export private key", Want: []Kind{KindEd25519, KindX25519, KindECDSA, KindRSA}, Got: kind}
}
