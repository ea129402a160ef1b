package licensekit

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/licensekit/licensekit-go/keys"
	"github.com/licensekit/licensekit-go/paseto"
	"github.com/licensekit/licensekit-go/schema"
)

// config holds the settings shared by Issuer and Validator. Each reads only
// the fields that apply to it.
type config struct {
	issuerName string
	footer     []byte
	implicit   []byte
	clock      func() time.Time
	logger     logrus.FieldLogger
	rand       io.Reader

	// Validator only
	schema    *schema.LicenseSchema
	metrics   Metrics
	legacyKey *keys.PublicKey
}

// Option configures an Issuer or a Validator.
type Option func(*config)

func newConfig(opts []Option) config {
	cfg := config{
		clock:   time.Now,
		logger:  discardLogger(),
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// tokenOptions returns the paseto options implied by the config.
func (c *config) tokenOptions() []paseto.Option {
	var opts []paseto.Option
	if c.footer != nil {
		opts = append(opts, paseto.WithFooter(c.footer))
	}
	if c.implicit != nil {
		opts = append(opts, paseto.WithImplicitAssertion(c.implicit))
	}
	if c.rand != nil {
		opts = append(opts, paseto.WithRandom(c.rand))
	}
	return opts
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// WithIssuerName sets the "iss" claim of issued licenses that carry none.
func WithIssuerName(name string) Option {
	return func(c *config) {
		c.issuerName = name
	}
}

// WithFooter attaches footer to issued tokens. On a Validator it requires
// tokens to carry exactly this footer.
func WithFooter(footer []byte) Option {
	return func(c *config) {
		c.footer = footer
	}
}

// WithImplicitAssertion binds assertion into every signature. Issuer and
// Validator must use the same value. An application identifier or device
// hash is a typical choice.
func WithImplicitAssertion(assertion []byte) Option {
	return func(c *config) {
		c.implicit = assertion
	}
}

// WithClock sets the time source.
// Default: time.Now
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithLogger sets the logger. Tokens and key material are never logged.
// Default: discard
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRandom sets the random source for nonces and ephemeral keys.
// Default: crypto/rand
func WithRandom(r io.Reader) Option {
	return func(c *config) {
		c.rand = r
	}
}

// WithSchema makes a Validator check features and metadata against s.
func WithSchema(s *schema.LicenseSchema) Option {
	return func(c *config) {
		c.schema = s
	}
}

// WithMetrics makes a Validator record every validation in m.
func WithMetrics(m Metrics) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLegacyKey lets a Validator accept legacy signed envelopes verified
// with an ECDSA or RSA public key.
func WithLegacyKey(key *keys.PublicKey) Option {
	return func(c *config) {
		c.legacyKey = key
	}
}
