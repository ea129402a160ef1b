package paseto

import (
	"fmt"

	"github.com/cloudflare/circl/sign/ed25519"

	"github.com/licensekit/licensekit-go/internal/crypto"
	"github.com/licensekit/licensekit-go/keys"
)

// Sign returns a v4.public token carrying message, signed with an Ed25519
// private key.
func Sign(key *keys.PrivateKey, message []byte, opts ...Option) (string, error) {
	if err := keys.Require(key, "sign v4.public token", keys.KindEd25519); err != nil {
		return "", err
	}
	cfg := newConfig(opts)

	m2 := crypto.PAE([]byte(PurposePublic.Header()), message, cfg.footer, cfg.implicit)
	sig, err := keys.WithRawBytes(key, func(raw []byte) ([]byte, error) {
		return ed25519.Sign(ed25519.PrivateKey(raw), m2), nil
	})
	if err != nil {
		return "", fmt.Errorf("sign v4.public token: %w", err)
	}

	body := make([]byte, 0, len(message)+len(sig))
	body = append(body, message...)
	body = append(body, sig...)
	return assemble(PurposePublic, body, cfg.footer), nil
}

// SignClaims encodes claims as JSON and signs them.
func SignClaims(key *keys.PrivateKey, claims any, opts ...Option) (string, error) {
	payload, err := encodeClaims(claims)
	if err != nil {
		return "", err
	}
	return Sign(key, payload, opts...)
}

// Verify checks a v4.public token against an Ed25519 public key and returns
// its message.
func Verify(token string, key *keys.PublicKey, opts ...Option) (*Message, error) {
	raw, err := Parse(token)
	if err != nil {
		return nil, err
	}
	return VerifyRaw(raw, key, opts...)
}

// VerifyRaw is Verify for a token that has already been parsed.
func VerifyRaw(raw *RawToken, key *keys.PublicKey, opts ...Option) (*Message, error) {
	if err := keys.Require(key, "verify v4.public token", keys.KindEd25519); err != nil {
		return nil, err
	}
	if err := raw.expect(PurposePublic); err != nil {
		return nil, err
	}
	cfg := newConfig(opts)
	if err := raw.checkFooter(cfg); err != nil {
		return nil, err
	}

	if len(raw.Body) < ed25519.SignatureSize {
		return nil, fmt.Errorf("%w: body shorter than a signature", ErrMalformedToken)
	}
	split := len(raw.Body) - ed25519.SignatureSize
	message, sig := raw.Body[:split], raw.Body[split:]

	m2 := crypto.PAE([]byte(raw.Header()), message, raw.Footer, cfg.implicit)
	ok, err := keys.WithRawBytes(key, func(pub []byte) (bool, error) {
		return ed25519.Verify(ed25519.PublicKey(pub), m2, sig), nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify v4.public token: %w", err)
	}
	if !ok {
		return nil, ErrSignatureInvalid
	}

	return &Message{
		Payload: append([]byte(nil), message...),
		Footer:  append([]byte(nil), raw.Footer...),
	}, nil
}
