package licensekit

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/licensekit/licensekit-go/keys"
	"github.com/licensekit/licensekit-go/legacy"
	"github.com/licensekit/licensekit-go/paseto"
)

//go:embed claims.schema.json
var claimsSchemaJSON []byte

const claimsSchemaURL = "inmemory://licensekit/claims.schema.json"

var compiledClaimsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(claimsSchemaURL, bytes.NewReader(claimsSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add claims schema: %w", err)
	}
	return compiler.Compile(claimsSchemaURL)
})

// RawToken is a license token that has been split and decoded but not
// verified. Its contents must not be trusted.
type RawToken struct {
	text string
	tok  *paseto.RawToken
}

// ParseUnverified checks the structure of a license token.
func ParseUnverified(token string) (*RawToken, error) {
	token = strings.TrimSpace(token)
	tok, err := paseto.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("parse license token: %w", err)
	}
	return &RawToken{text: token, tok: tok}, nil
}

// Purpose returns the token purpose.
func (r *RawToken) Purpose() paseto.Purpose { return r.tok.Purpose }

// Footer returns the unauthenticated footer. Use it only to select a key.
func (r *RawToken) Footer() []byte { return append([]byte(nil), r.tok.Footer...) }

func (r *RawToken) String() string { return r.text }

// License is a verified license. The only ways to obtain one are Verify,
// VerifyToken, VerifyLegacy, OpenSealed and Issuer.IssueLicense, all of
// which authenticate the payload first.
type License struct {
	token  string
	claims Claims
	footer []byte
	legacy bool
}

// Verify checks the signature of a v4.public license token and constructs
// the License. Signature failures wrap paseto.ErrSignatureInvalid; claims
// that verify but break construction rules return a *ClaimsError.
func Verify(raw *RawToken, key *keys.PublicKey, opts ...paseto.Option) (*License, error) {
	if raw == nil {
		return nil, fmt.Errorf("verify license: %w: nil token", ErrMalformedToken)
	}
	msg, err := paseto.VerifyRaw(raw.tok, key, opts...)
	if err != nil {
		return nil, fmt.Errorf("verify license: %w", err)
	}
	return newLicense(raw.text, msg.Payload, msg.Footer, false)
}

// VerifyToken is ParseUnverified followed by Verify.
func VerifyToken(token string, key *keys.PublicKey, opts ...paseto.Option) (*License, error) {
	raw, err := ParseUnverified(token)
	if err != nil {
		return nil, err
	}
	return Verify(raw, key, opts...)
}

// VerifyLegacy checks a legacy signed envelope with an ECDSA or RSA public
// key and constructs the License.
func VerifyLegacy(envelope []byte, key *keys.PublicKey) (*License, error) {
	payload, err := legacy.OpenEnvelope(envelope, key)
	if err != nil {
		return nil, fmt.Errorf("verify legacy license: %w", err)
	}
	return newLicense(string(envelope), payload, nil, true)
}

// newLicense constructs a License from an authenticated payload.
func newLicense(token string, payload, footer []byte, isLegacy bool) (*License, error) {
	claims, err := decodeClaims(payload)
	if err != nil {
		return nil, err
	}
	return &License{
		token:  token,
		claims: claims,
		footer: footer,
		legacy: isLegacy,
	}, nil
}

func decodeClaims(payload []byte) (Claims, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		cerr := &ClaimsError{}
		cerr.add("payload", "must be a JSON object")
		return Claims{}, cerr
	}

	s, err := compiledClaimsSchema()
	if err != nil {
		return Claims{}, fmt.Errorf("claims schema: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return Claims{}, shapeErrors(err)
	}

	var c Claims
	if err := json.Unmarshal(payload, &c); err != nil {
		cerr := &ClaimsError{}
		cerr.add("payload", err.Error())
		return Claims{}, cerr
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return Claims{}, err
	}
	return c, nil
}

// shapeErrors converts JSON schema failures into field-keyed claims errors.
func shapeErrors(err error) *ClaimsError {
	cerr := &ClaimsError{}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		cerr.add("payload", err.Error())
		return cerr
	}

	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		field := strings.ReplaceAll(strings.TrimPrefix(e.InstanceLocation, "/"), "/", ".")
		if field == "" {
			field = "payload"
		}
		cerr.add(field, e.Message)
	}
	walk(ve)
	return cerr
}

// Token returns the token or legacy envelope the license was verified from.
func (l *License) Token() string { return l.token }

// Claims returns a copy of the claims.
func (l *License) Claims() Claims { return l.claims.clone() }

// ID returns the license id ("sub").
func (l *License) ID() string { return l.claims.Subject }

func (l *License) AppID() string        { return l.claims.AppID }
func (l *License) Type() Type           { return l.claims.Type }
func (l *License) IssuedAt() time.Time  { return l.claims.IssuedAt }
func (l *License) ExpiresAt() time.Time { return l.claims.ExpiresAt }
func (l *License) Trial() bool          { return l.claims.Trial }
func (l *License) Device() string       { return l.claims.Device }

// Features returns a deep copy of the features map.
func (l *License) Features() map[string]any { return cloneMap(l.claims.Features) }

// Metadata returns a deep copy of the metadata map, or nil.
func (l *License) Metadata() map[string]any { return cloneMap(l.claims.Metadata) }

// HasFeature reports whether a feature is present and not false or null.
func (l *License) HasFeature(name string) bool { return l.claims.HasFeature(name) }

// Footer returns the authenticated footer of the token.
func (l *License) Footer() []byte { return append([]byte(nil), l.footer...) }

// Legacy reports whether the license came from a legacy signed envelope.
func (l *License) Legacy() bool { return l.legacy }

// ExpiredAt reports whether the license has expired at now. A license whose
// exp equals now is expired.
func (l *License) ExpiredAt(now time.Time) bool {
	return !now.Before(l.claims.ExpiresAt)
}

// Amend returns a copy of the claims with fn applied, ready to be issued
// again. The license itself is not changed.
func (l *License) Amend(fn func(*Claims)) Claims {
	c := l.claims.clone()
	if fn != nil {
		fn(&c)
	}
	return c
}

func (l *License) String() string {
	return fmt.Sprintf("License{id=%s app=%s type=%s exp=%s}", l.claims.Subject, l.claims.AppID, l.claims.Type, l.claims.ExpiresAt.Format(time.RFC3339))
}
