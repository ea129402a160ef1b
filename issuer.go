package licensekit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/licensekit/licensekit-go/keys"
	"github.com/licensekit/licensekit-go/paseto"
)

// Issuer signs license claims into v4.public tokens. It is safe for
// concurrent use; the caller keeps ownership of the signing key.
type Issuer struct {
	key *keys.PrivateKey
	cfg config
}

// NewIssuer returns an Issuer signing with an Ed25519 private key.
func NewIssuer(key *keys.PrivateKey, opts ...Option) (*Issuer, error) {
	if err := keys.Require(key, "issue license", keys.KindEd25519); err != nil {
		return nil, err
	}
	return &Issuer{key: key, cfg: newConfig(opts)}, nil
}

// Issue completes claims and signs them. A missing sub gets a random UUID, a
// missing iat gets the current time and a missing iss gets the issuer name.
// Claims that break construction rules are rejected before signing.
func (i *Issuer) Issue(claims Claims) (string, error) {
	c, err := i.prepare(claims)
	if err != nil {
		return "", err
	}

	token, err := paseto.SignClaims(i.key, &c, i.cfg.tokenOptions()...)
	if err != nil {
		return "", fmt.Errorf("issue license: %w", err)
	}

	i.cfg.logger.WithFields(logrus.Fields{
		"license_id": c.Subject,
		"app_id":     c.AppID,
		"type":       c.Type,
		"expires_at": c.ExpiresAt,
	}).Info("license issued")
	return token, nil
}

// IssueLicense issues claims and verifies the result with the public half
// of the signing key.
func (i *Issuer) IssueLicense(claims Claims) (*License, error) {
	token, err := i.Issue(claims)
	if err != nil {
		return nil, err
	}
	return VerifyToken(token, i.key.Public(), i.cfg.tokenOptions()...)
}

func (i *Issuer) prepare(claims Claims) (Claims, error) {
	c := claims.clone()
	if c.Subject == "" {
		c.Subject = uuid.NewString()
	}
	if c.IssuedAt.IsZero() {
		c.IssuedAt = i.cfg.clock().UTC().Truncate(time.Second)
	}
	if c.Issuer == "" {
		c.Issuer = i.cfg.issuerName
	}
	if c.Features == nil {
		c.Features = map[string]any{}
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return Claims{}, fmt.Errorf("issue license: %w", err)
	}
	return c, nil
}
