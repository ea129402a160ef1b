package paseto

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/licensekit/licensekit-go/internal/crypto"
)

// Version is the only protocol version implemented.
const Version = "v4"

// Purpose is the second header field of a token.
type Purpose string

const (
	PurposePublic Purpose = "public"
	PurposeLocal  Purpose = "local"
)

// Header returns the "v4.<purpose>." prefix.
func (p Purpose) Header() string {
	return Version + "." + string(p) + "."
}

// RawToken is a token split into its parts. Nothing in it has been
// authenticated.
type RawToken struct {
	Version string
	Purpose Purpose
	Body    []byte
	Footer  []byte
}

// Header returns the "v4.<purpose>." prefix of the token.
func (t *RawToken) Header() string {
	return t.Version + "." + string(t.Purpose) + "."
}

// Parse splits a token into version, purpose, body and footer. It checks
// structure and encoding only.
func Parse(token string) (*RawToken, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 && len(parts) != 4 {
		return nil, fmt.Errorf("%w: expected 3 or 4 dot-separated parts, got %d", ErrMalformedToken, len(parts))
	}

	if parts[0] != Version {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrHeaderMismatch, parts[0])
	}
	purpose := Purpose(parts[1])
	if purpose != PurposePublic && purpose != PurposeLocal {
		return nil, fmt.Errorf("%w: unsupported purpose %q", ErrHeaderMismatch, parts[1])
	}

	body, err := crypto.FromBase64URL(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrMalformedToken, err)
	}

	raw := &RawToken{Version: Version, Purpose: purpose, Body: body}
	if len(parts) == 4 {
		// A present-but-empty footer is not canonical.
		if parts[3] == "" {
			return nil, fmt.Errorf("%w: empty footer segment", ErrMalformedToken)
		}
		if raw.Footer, err = crypto.FromBase64URL(parts[3]); err != nil {
			return nil, fmt.Errorf("%w: footer: %v", ErrMalformedToken, err)
		}
	}
	return raw, nil
}

// PeekFooter returns the footer of a token without authenticating it. The
// result may only be used to select a key, never trusted as data.
func PeekFooter(token string) ([]byte, error) {
	raw, err := Parse(token)
	if err != nil {
		return nil, err
	}
	return raw.Footer, nil
}

func (t *RawToken) expect(p Purpose) error {
	if t == nil {
		return fmt.Errorf("%w: nil token", ErrMalformedToken)
	}
	if t.Version != Version || t.Purpose != p {
		return fmt.Errorf("%w: got %s, want %s", ErrHeaderMismatch, t.Header(), p.Header())
	}
	return nil
}

func (t *RawToken) checkFooter(cfg *config) error {
	if !cfg.hasFooter {
		return nil
	}
	if subtle.ConstantTimeCompare(t.Footer, cfg.footer) != 1 {
		return ErrFooterMismatch
	}
	return nil
}

func assemble(p Purpose, body, footer []byte) string {
	var b strings.Builder
	b.WriteString(p.Header())
	b.WriteString(crypto.ToBase64URL(body))
	if len(footer) > 0 {
		b.WriteByte('.')
		b.WriteString(crypto.ToBase64URL(footer))
	}
	return b.String()
}
