package keys

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerator_Symmetric(t *testing.T) {
	g := DefaultGenerator()

	a, err := g.Symmetric()
	if err != nil {
		t.Fatalf("Symmetric() error = %v", err)
	}
	b, err := g.Symmetric()
	if err != nil {
		t.Fatalf("Symmetric() error = %v", err)
	}

	ra, _ := WithRawBytes(a, func(raw []byte) ([]byte, error) { return append([]byte(nil), raw...), nil })
	rb, _ := WithRawBytes(b, func(raw []byte) ([]byte, error) { return append([]byte(nil), raw...), nil })
	if bytes.Equal(ra, rb) {
		t.Error("two generated symmetric keys are identical")
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{0x24}, 64)

	a, err := NewGenerator(bytes.NewReader(seed)).KeyPair(KindEd25519, Params{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewGenerator(bytes.NewReader(seed)).KeyPair(KindEd25519, Params{})
	if err != nil {
		t.Fatal(err)
	}

	if !a.Public.Equal(b.Public) {
		t.Error("same random source produced different key pairs")
	}
}

func TestGenerator_ShortRandom(t *testing.T) {
	g := NewGenerator(bytes.NewReader([]byte{1, 2, 3}))
	if _, err := g.Symmetric(); err == nil {
		t.Error("Symmetric() with exhausted reader succeeded")
	}
}

func TestGenerator_KeyPair(t *testing.T) {
	tests := []struct {
		name      string
		kind      Kind
		params    Params
		wantCurve Curve
	}{
		{"ed25519", KindEd25519, Params{}, CurveNone},
		{"x25519", KindX25519, Params{}, CurveNone},
		{"ecdsa default", KindECDSA, Params{}, CurveP256},
		{"ecdsa p384", KindECDSA, Params{Curve: CurveP384}, CurveP384},
		{"rsa 2048", KindRSA, Params{Bits: 2048}, Curve("RSA-2048")},
	}

	g := DefaultGenerator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := g.KeyPair(tt.kind, tt.params)
			if err != nil {
				t.Fatalf("KeyPair() error = %v", err)
			}
			defer pair.Dispose()

			if pair.Private.Kind() != tt.kind || pair.Public.Kind() != tt.kind {
				t.Errorf("kinds = %v/%v, want %v", pair.Private.Kind(), pair.Public.Kind(), tt.kind)
			}
			if pair.Private.Curve() != tt.wantCurve {
				t.Errorf("Curve() = %q, want %q", pair.Private.Curve(), tt.wantCurve)
			}
			if !pair.Public.Equal(pair.Private.Public()) {
				t.Error("pair halves do not match")
			}
		})
	}
}

func TestGenerator_KeyPairErrors(t *testing.T) {
	g := DefaultGenerator()

	if _, err := g.KeyPair(KindSymmetric, Params{}); !errors.Is(err, ErrUnsupportedKey) {
		t.Errorf("KeyPair(symmetric) error = %v, want ErrUnsupportedKey", err)
	}
	if _, err := g.KeyPair(KindECDSA, Params{Curve: "P-192"}); !errors.Is(err, ErrKeyFormat) {
		t.Errorf("KeyPair(P-192) error = %v, want ErrKeyFormat", err)
	}
	if _, err := g.KeyPair(KindRSA, Params{Bits: 1024}); !errors.Is(err, ErrKeyFormat) {
		t.Errorf("KeyPair(rsa 1024) error = %v, want ErrKeyFormat", err)
	}
}

func TestGenerate(t *testing.T) {
	sym, err := Generate(nil, KindSymmetric, Params{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sym.(*SymmetricKey); !ok {
		t.Errorf("Generate(symmetric) = %T, want *SymmetricKey", sym)
	}

	priv, err := Generate(nil, KindEd25519, Params{})
	if err != nil {
		t.Fatal(err)
	}
	pk, ok := priv.(*PrivateKey)
	if !ok {
		t.Fatalf("Generate(ed25519) = %T, want *PrivateKey", priv)
	}
	if pk.Public() == nil {
		t.Error("generated private key has no public half")
	}
}

func BenchmarkGenerator_Ed25519(b *testing.B) {
	g := DefaultGenerator()
	for i := 0; i < b.N; i++ {
		pair, err := g.KeyPair(KindEd25519, Params{})
		if err != nil {
			b.Fatal(err)
		}
		pair.Dispose()
	}
}
