package legacy

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// EncodeSignature returns the DER encoding SEQUENCE { INTEGER r, INTEGER s }.
// Integers whose high bit is set get a leading zero byte.
func EncodeSignature(r, s *big.Int) ([]byte, error) {
	if r == nil || s == nil || r.Sign() <= 0 || s.Sign() <= 0 {
		return nil, fmt.Errorf("%w: r and s must be positive", ErrMalformedSignature)
	}

	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})
	return b.Bytes()
}

// DecodeSignature parses a DER two-integer signature. Any tag or length
// mismatch, truncation, trailing data, or non-positive integer is reported as
// ErrMalformedSignature.
func DecodeSignature(der []byte) (r, s *big.Int, err error) {
	r, s = new(big.Int), new(big.Int)

	input := cryptobyte.String(der)
	var inner cryptobyte.String
	if !input.ReadASN1(&inner, asn1.SEQUENCE) {
		return nil, nil, fmt.Errorf("%w: expected SEQUENCE", ErrMalformedSignature)
	}
	if !input.Empty() {
		return nil, nil, fmt.Errorf("%w: trailing data", ErrMalformedSignature)
	}
	if !inner.ReadASN1Integer(r) || !inner.ReadASN1Integer(s) {
		return nil, nil, fmt.Errorf("%w: expected two INTEGERs", ErrMalformedSignature)
	}
	if !inner.Empty() {
		return nil, nil, fmt.Errorf("%w: trailing data in SEQUENCE", ErrMalformedSignature)
	}
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: non-positive integer", ErrMalformedSignature)
	}
	return r, s, nil
}
