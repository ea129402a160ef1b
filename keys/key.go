package keys

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"fmt"

	"github.com/cloudflare/circl/sign/ed25519"

	"github.com/licensekit/licensekit-go/internal/crypto"
)

// Key is implemented by [SymmetricKey], [PublicKey] and [PrivateKey].
type Key interface {
	// Kind returns the algorithm family of the key.
	Kind() Kind
	// Dispose zeroes the key material. It is safe to call more than once.
	Dispose()
	// Disposed reports whether Dispose has been called.
	Disposed() bool

	material() *buffer
}

// SymmetricKey is a 32-byte key for local tokens and key wrapping.
type SymmetricKey struct {
	buf *buffer
}

// PublicKey is the public half of an asymmetric key.
//
// Material layout by kind:
//   - Ed25519, X25519: 32 raw bytes.
//   - ECDSA, RSA: PKIX DER.
type PublicKey struct {
	kind  Kind
	curve Curve
	buf   *buffer
}

// PrivateKey is the private half of an asymmetric key. It always carries the
// matching public key.
//
// Material layout by kind:
//   - Ed25519: seed || public key (64 bytes).
//   - X25519: 32-byte scalar.
//   - ECDSA, RSA: PKCS#8 DER.
type PrivateKey struct {
	kind  Kind
	curve Curve
	buf   *buffer
	pub   *PublicKey
}

// KeyPair groups a private key with its public key.
type KeyPair struct {
	Public  *PublicKey
	Private *PrivateKey
}

// Dispose disposes both halves of the pair.
func (p *KeyPair) Dispose() {
	if p == nil {
		return
	}
	if p.Private != nil {
		p.Private.Dispose()
	}
	if p.Public != nil {
		p.Public.Dispose()
	}
}

// NewSymmetricKey copies raw into a new symmetric key.
func NewSymmetricKey(raw []byte) (*SymmetricKey, error) {
	if len(raw) != crypto.SymmetricKeySize {
		return nil, &FormatError{Kind: KindSymmetric, Reason: fmt.Sprintf("got %d bytes, want %d", len(raw), crypto.SymmetricKeySize)}
	}
	return &SymmetricKey{buf: newBuffer(raw)}, nil
}

func (k *SymmetricKey) Kind() Kind { return KindSymmetric }
func (k *SymmetricKey) Dispose() { k.buf.dispose() }
func (k *SymmetricKey) Disposed() bool { return k.buf.isDisposed() }
func (k *SymmetricKey) material() *buffer { return k.buf }
func (k *SymmetricKey) String() string { return "keys.SymmetricKey{REDACTED}" }
func (k *SymmetricKey) GoString() string { return k.String() }

// NewEd25519PublicKey copies a 32-byte Ed25519 public key.
func NewEd25519PublicKey(raw []byte) (*PublicKey, error) {
	if len(raw) != crypto.Ed25519PublicKeySize {
		return nil, &FormatError{Kind: KindEd25519, Reason: fmt.Sprintf("public key is %d bytes, want %d", len(raw), crypto.Ed25519PublicKeySize)}
	}
	return &PublicKey{kind: KindEd25519, buf: newBuffer(raw)}, nil
}

// NewEd25519PrivateKeyFromSeed derives an Ed25519 private key from a 32-byte seed.
func NewEd25519PrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != crypto.Ed25519SeedSize {
		return nil, &FormatError{Kind: KindEd25519, Reason: fmt.Sprintf("seed is %d bytes, want %d", len(seed), crypto.Ed25519SeedSize)}
	}
	priv := ed25519.NewKeyFromSeed(seed)
	defer crypto.Wipe(priv)
	return newEd25519Private(priv)
}

// NewEd25519PrivateKey imports a 64-byte seed || public key encoding. The
// public half is recomputed from the seed and must match the supplied bytes.
func NewEd25519PrivateKey(raw []byte) (*PrivateKey, error) {
	if len(raw) != crypto.Ed25519PrivateKeySize {
		return nil, &FormatError{Kind: KindEd25519, Reason: fmt.Sprintf("private key is %d bytes, want %d", len(raw), crypto.Ed25519PrivateKeySize)}
	}

	derived := ed25519.NewKeyFromSeed(raw[:crypto.Ed25519SeedSize])
	defer crypto.Wipe(derived)
	if !crypto.Equal(derived[crypto.Ed25519SeedSize:], raw[crypto.Ed25519SeedSize:]) {
		return nil, &FormatError{Kind: KindEd25519, Reason: "embedded public key", Err: ErrPublicKeyMismatch}
	}
	return newEd25519Private(derived)
}

func newEd25519Private(priv ed25519.PrivateKey) (*PrivateKey, error) {
	pub, err := NewEd25519PublicKey(priv[crypto.Ed25519SeedSize:])
	if err != nil {
		return nil, err
	}
	return &PrivateKey{kind: KindEd25519, buf: newBuffer(priv), pub: pub}, nil
}

// NewX25519PublicKey copies a 32-byte X25519 public key.
func NewX25519PublicKey(raw []byte) (*PublicKey, error) {
	if len(raw) != crypto.X25519KeySize {
		return nil, &FormatError{Kind: KindX25519, Reason: fmt.Sprintf("public key is %d bytes, want %d", len(raw), crypto.X25519KeySize)}
	}
	return &PublicKey{kind: KindX25519, buf: newBuffer(raw)}, nil
}

// NewX25519PrivateKey copies a 32-byte X25519 scalar and derives its public key.
func NewX25519PrivateKey(raw []byte) (*PrivateKey, error) {
	pubRaw, err := crypto.X25519Public(raw)
	if err != nil {
		return nil, &FormatError{Kind: KindX25519, Reason: "private key", Err: err}
	}
	pub, err := NewX25519PublicKey(pubRaw)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{kind: KindX25519, buf: newBuffer(raw), pub: pub}, nil
}

// FromECDSA wraps a legacy ECDSA private key. Only the NIST P-curves are accepted.
func FromECDSA(priv *ecdsa.PrivateKey) (*PrivateKey, error) {
	if priv == nil {
		return nil, ErrNilKey
	}
	curve, ok := curveOf(priv.Curve)
	if !ok {
		return nil, &FormatError{Kind: KindECDSA, Reason: "unsupported curve"}
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, &FormatError{Kind: KindECDSA, Reason: "marshal private key", Err: err}
	}
	defer crypto.Wipe(der)

	pub, err := FromECDSAPublic(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{kind: KindECDSA, curve: curve, buf: newBuffer(der), pub: pub}, nil
}

// FromECDSAPublic wraps a legacy ECDSA public key.
func FromECDSAPublic(pub *ecdsa.PublicKey) (*PublicKey, error) {
	if pub == nil {
		return nil, ErrNilKey
	}
	curve, ok := curveOf(pub.Curve)
	if !ok {
		return nil, &FormatError{Kind: KindECDSA, Reason: "unsupported curve"}
	}

	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, &FormatError{Kind: KindECDSA, Reason: "marshal public key", Err: err}
	}
	return &PublicKey{kind: KindECDSA, curve: curve, buf: newBuffer(der)}, nil
}

// FromRSA wraps a legacy RSA private key.
func FromRSA(priv *rsa.PrivateKey) (*PrivateKey, error) {
	if priv == nil {
		return nil, ErrNilKey
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, &FormatError{Kind: KindRSA, Reason: "marshal private key", Err: err}
	}
	defer crypto.Wipe(der)

	pub, err := FromRSAPublic(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{kind: KindRSA, curve: pub.curve, buf: newBuffer(der), pub: pub}, nil
}

// FromRSAPublic wraps a legacy RSA public key.
func FromRSAPublic(pub *rsa.PublicKey) (*PublicKey, error) {
	if pub == nil {
		return nil, ErrNilKey
	}

	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, &FormatError{Kind: KindRSA, Reason: "marshal public key", Err: err}
	}
	return &PublicKey{kind: KindRSA, curve: Curve(fmt.Sprintf("RSA-%d", pub.N.BitLen())), buf: newBuffer(der)}, nil
}

func (k *PublicKey) Kind() Kind { return k.kind }
func (k *PublicKey) Dispose() { k.buf.dispose() }
func (k *PublicKey) Disposed() bool { return k.buf.isDisposed() }
func (k *PublicKey) material() *buffer { return k.buf }

// Curve returns the curve or algorithm tag of a legacy key, or CurveNone.
func (k *PublicKey) Curve() Curve { return k.curve }

func (k *PublicKey) String() string {
	if k.curve != CurveNone {
		return fmt.Sprintf("keys.PublicKey{%s %s}", k.kind, k.curve)
	}
	return fmt.Sprintf("keys.PublicKey{%s}", k.kind)
}

func (k *PublicKey) GoString() string { return k.String() }

// Equal reports whether k and other hold the same kind and material.
func (k *PublicKey) Equal(other *PublicKey) bool {
	if k == nil || other == nil || k.kind != other.kind {
		return false
	}
	eq, err := WithRawBytes(k, func(a []byte) (bool, error) {
		return WithRawBytes(other, func(b []byte) (bool, error) {
			return crypto.Equal(a, b), nil
		})
	})
	return err == nil && eq
}

func (k *PrivateKey) Kind() Kind { return k.kind }
func (k *PrivateKey) Disposed() bool { return k.buf.isDisposed() }
func (k *PrivateKey) material() *buffer { return k.buf }

// Dispose zeroes the private material and the attached public key.
func (k *PrivateKey) Dispose() {
	k.buf.dispose()
	if k.pub != nil {
		k.pub.Dispose()
	}
}

// Curve returns the curve or algorithm tag of a legacy key, or CurveNone.
func (k *PrivateKey) Curve() Curve { return k.curve }

// Public returns the matching public key.
func (k *PrivateKey) Public() *PublicKey { return k.pub }

func (k *PrivateKey) String() string {
	if k.curve != CurveNone {
		return fmt.Sprintf("keys.PrivateKey{%s %s REDACTED}", k.kind, k.curve)
	}
	return fmt.Sprintf("keys.PrivateKey{%s REDACTED}", k.kind)
}

func (k *PrivateKey) GoString() string { return k.String() }

// ECDSA returns a parsed copy of a legacy ECDSA private key. The caller owns
// the returned value.
func (k *PrivateKey) ECDSA() (*ecdsa.PrivateKey, error) {
	if err := Require(k, "ecdsa private key", KindECDSA); err != nil {
		return nil, err
	}
	return WithRawBytes(k, func(der []byte) (*ecdsa.PrivateKey, error) {
		parsed, err := x509.ParsePKCS8PrivateKey(der)
		if err != nil {
			return nil, &FormatError{Kind: KindECDSA, Reason: "parse private key", Err: err}
		}
		priv, ok := parsed.(*ecdsa.PrivateKey)
		if !ok {
			return nil, &FormatError{Kind: KindECDSA, Reason: fmt.Sprintf("unexpected key type %T", parsed)}
		}
		return priv, nil
	})
}

// RSA returns a parsed copy of a legacy RSA private key.
func (k *PrivateKey) RSA() (*rsa.PrivateKey, error) {
	if err := Require(k, "rsa private key", KindRSA); err != nil {
		return nil, err
	}
	return WithRawBytes(k, func(der []byte) (*rsa.PrivateKey, error) {
		parsed, err := x509.ParsePKCS8PrivateKey(der)
		if err != nil {
			return nil, &FormatError{Kind: KindRSA, Reason: "parse private key", Err: err}
		}
		priv, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, &FormatError{Kind: KindRSA, Reason: fmt.Sprintf("unexpected key type %T", parsed)}
		}
		return priv, nil
	})
}

// ECDSA returns a parsed copy of a legacy ECDSA public key.
func (k *PublicKey) ECDSA() (*ecdsa.PublicKey, error) {
	if err := Require(k, "ecdsa public key", KindECDSA); err != nil {
		return nil, err
	}
	return WithRawBytes(k, func(der []byte) (*ecdsa.PublicKey, error) {
		parsed, err := x509.ParsePKIXPublicKey(der)
		if err != nil {
			return nil, &FormatError{Kind: KindECDSA, Reason: "parse public key", Err: err}
		}
		pub, ok := parsed.(*ecdsa.PublicKey)
		if !ok {
			return nil, &FormatError{Kind: KindECDSA, Reason: fmt.Sprintf("unexpected key type %T", parsed)}
		}
		return pub, nil
	})
}

// RSA returns a parsed copy of a legacy RSA public key.
func (k *PublicKey) RSA() (*rsa.PublicKey, error) {
	if err := Require(k, "rsa public key", KindRSA); err != nil {
		return nil, err
	}
	return WithRawBytes(k, func(der []byte) (*rsa.PublicKey, error) {
		parsed, err := x509.ParsePKIXPublicKey(der)
		if err != nil {
			return nil, &FormatError{Kind: KindRSA, Reason: "parse public key", Err: err}
		}
		pub, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, &FormatError{Kind: KindRSA, Reason: fmt.Sprintf("unexpected key type %T", parsed)}
		}
		return pub, nil
	})
}

// Require returns a *KindError unless k is one of the allowed kinds. A nil
// or disposed key is reported as such.
func Require(k Key, op string, kinds ...Kind) error {
	if isNil(k) {
		return fmt.Errorf("%s: %w", op, ErrNilKey)
	}
	if k.Disposed() {
		return fmt.Errorf("%s: %w", op, ErrUseAfterDispose)
	}
	for _, want := range kinds {
		if k.Kind() == want {
			return nil
		}
	}
	return &KindError{Op: op, Want: kinds, Got: k.Kind()}
}

func isNil(k Key) bool {
	switch v := k.(type) {
	case nil:
		return true
	case *SymmetricKey:
		return v == nil
	case *PublicKey:
		return v == nil
	case *PrivateKey:
		return v == nil
	}
	return false
}

const redacted = `"REDACTED"`

// MarshalJSON never emits key material.
func (k *SymmetricKey) MarshalJSON() ([]byte, error) { return []byte(redacted), nil }

// MarshalJSON never emits key material.
func (k *PublicKey) MarshalJSON() ([]byte, error) { return []byte(redacted), nil }

// MarshalJSON never emits key material.
func (k *PrivateKey) MarshalJSON() ([]byte, error) { return []byte(redacted), nil }
