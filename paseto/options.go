package paseto

import (
	"crypto/rand"
	"io"
)

// Option configures a token operation.
type Option func(*config)

type config struct {
	footer    []byte
	hasFooter bool
	implicit  []byte
	rand      io.Reader
}

func newConfig(opts []Option) *config {
	cfg := &config{rand: rand.Reader}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithFooter attaches footer to a new token. When verifying or decrypting,
// the token's footer must equal footer.
func WithFooter(footer []byte) Option {
	return func(c *config) {
		c.footer = footer
		c.hasFooter = true
	}
}

// WithImplicitAssertion binds assertion into the signature or tag without
// storing it in the token.
func WithImplicitAssertion(assertion []byte) Option {
	return func(c *config) {
		c.implicit = assertion
	}
}

// WithRandom sets the source of v4.local nonces. The default is crypto/rand.
// Only tests should pass a deterministic reader.
func WithRandom(r io.Reader) Option {
	return func(c *config) {
		if r != nil {
			c.rand = r
		}
	}
}
