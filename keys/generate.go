package keys

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/ed25519"

	"github.com/licensekit/licensekit-go/internal/crypto"
)

const (
	defaultRSABits = 3072
	minRSABits     = 2048
)

// Generator creates keys from an explicit random source.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a generator reading from r. A nil r selects crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

// DefaultGenerator returns a generator backed by crypto/rand.
func DefaultGenerator() *Generator {
	return NewGenerator(nil)
}

// Reader returns the random source of the generator.
func (g *Generator) Reader() io.Reader {
	if g == nil || g.rand == nil {
		return rand.Reader
	}
	return g.rand
}

// Symmetric creates a new random symmetric key.
func (g *Generator) Symmetric() (*SymmetricKey, error) {
	raw := make([]byte, crypto.SymmetricKeySize)
	defer crypto.Wipe(raw)
	if _, err := io.ReadFull(g.Reader(), raw); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	return NewSymmetricKey(raw)
}

// KeyPair creates a new asymmetric key pair of the given kind.
func (g *Generator) KeyPair(kind Kind, params Params) (*KeyPair, error) {
	var (
		priv *PrivateKey
		err  error
	)

	switch kind {
	case KindEd25519:
		priv, err = g.ed25519()
	case KindX25519:
		priv, err = g.x25519()
	case KindECDSA:
		priv, err = g.ecdsa(params.Curve)
	case KindRSA:
		priv, err = g.rsa(params.Bits)
	default:
		return nil, &KindError{Op: "generate key pair", Want: []Kind{KindEd25519, KindX25519, KindECDSA, KindRSA}, Got: kind}
	}
	if err != nil {
		return nil, err
	}

	return &KeyPair{Public: priv.Public(), Private: priv}, nil
}

func (g *Generator) ed25519() (*PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(g.Reader())
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	defer crypto.Wipe(priv)
	return newEd25519Private(priv)
}

func (g *Generator) x25519() (*PrivateKey, error) {
	_, secret, err := crypto.GenerateX25519(g.Reader())
	if err != nil {
		return nil, fmt.Errorf("generate x25519 key: %w", err)
	}
	defer crypto.Wipe(secret)
	return NewX25519PrivateKey(secret)
}

func (g *Generator) ecdsa(curve Curve) (*PrivateKey, error) {
	if curve == CurveNone {
		curve = CurveP256
	}
	c, ok := curve.Elliptic()
	if !ok {
		return nil, &FormatError{Kind: KindECDSA, Reason: fmt.Sprintf("unsupported curve %q", curve)}
	}

	priv, err := ecdsa.GenerateKey(c, g.Reader())
	if err != nil {
		return nil, fmt.Errorf("generate ecdsa key: %w", err)
	}
	return FromECDSA(priv)
}

func (g *Generator) rsa(bits int) (*PrivateKey, error) {
	if bits == 0 {
		bits = defaultRSABits
	}
	if bits < minRSABits {
		return nil, &FormatError{Kind: KindRSA, Reason: fmt.Sprintf("modulus of %d bits is below the %d bit minimum", bits, minRSABits)}
	}

	priv, err := rsa.GenerateKey(g.Reader(), bits)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}
	return FromRSA(priv)
}

// Generate creates a key of the given kind. For KindSymmetric it returns a
// *SymmetricKey; for asymmetric kinds it returns the *PrivateKey, whose
// Public method yields the other half of the pair.
func Generate(g *Generator, kind Kind, params Params) (Key, error) {
	if g == nil {
		g = DefaultGenerator()
	}
	if kind == KindSymmetric {
		key, err := g.Symmetric()
		if err != nil {
			return nil, err
		}
		return key, nil
	}
	pair, err := g.KeyPair(kind, params)
	if err != nil {
		return nil, err
	}
	return pair.Private, nil
}
