package licensekit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/licensekit/licensekit-go/keys"
)

// Validator turns a license token into exactly one Status. Checks run in a
// fixed order: signature, claims construction, expiration, schema. A
// Validator is immutable and safe for concurrent use.
type Validator struct {
	key *keys.PublicKey
	cfg config
}

// NewValidator returns a Validator for tokens signed by key. key may be nil
// when WithLegacyKey is given and only legacy envelopes are expected.
func NewValidator(key *keys.PublicKey, opts ...Option) (*Validator, error) {
	cfg := newConfig(opts)

	if key == nil && cfg.legacyKey == nil {
		return nil, fmt.Errorf("new validator: %w", keys.ErrNilKey)
	}
	if key != nil {
		if err := keys.Require(key, "validate license", keys.KindEd25519); err != nil {
			return nil, err
		}
	}
	if cfg.legacyKey != nil {
		if err := keys.Require(cfg.legacyKey, "validate legacy license", keys.KindECDSA, keys.KindRSA); err != nil {
			return nil, err
		}
	}
	return &Validator{key: key, cfg: cfg}, nil
}

// Validate verifies token and checks the resulting license. An empty token
// yields StateNoLicense. Tokens not starting with "v4." are treated as
// legacy envelopes when a legacy key is configured.
func (v *Validator) Validate(token string) Status {
	return v.run(func() Status {
		token = strings.TrimSpace(token)
		if token == "" {
			return noLicense()
		}
		lic, err := v.verify(token)
		if err != nil {
			return statusFromError(err)
		}
		return v.check(lic)
	})
}

// ValidateLicense runs the full pipeline on a license obtained elsewhere.
// The license is verified again under this validator's keys, so one
// verified under another key yields StateInvalidSignature. A nil license
// yields StateNoLicense.
func (v *Validator) ValidateLicense(l *License) Status {
	return v.run(func() Status {
		if l == nil {
			return noLicense()
		}
		lic, err := v.verify(l.token)
		if err != nil {
			return statusFromError(err)
		}
		return v.check(lic)
	})
}

func (v *Validator) verify(token string) (*License, error) {
	if strings.HasPrefix(token, "v4.") {
		if v.key == nil {
			return nil, fmt.Errorf("verify license: no v4 public key configured: %w", keys.ErrNilKey)
		}
		return VerifyToken(token, v.key, v.cfg.tokenOptions()...)
	}
	if v.cfg.legacyKey != nil {
		return VerifyLegacy([]byte(token), v.cfg.legacyKey)
	}
	return nil, fmt.Errorf("verify license: %w: not a v4 token", ErrMalformedToken)
}

func (v *Validator) check(l *License) Status {
	if l == nil {
		return noLicense()
	}

	now := v.cfg.clock()
	if l.ExpiredAt(now) {
		return expired(l)
	}
	if nbf := l.claims.NotBefore; !nbf.IsZero() && now.Before(nbf) {
		cerr := &ClaimsError{}
		cerr.add("nbf", "license is not valid before "+nbf.Format(time.RFC3339))
		return invalidSchema(cerr.Errors, cerr)
	}

	if v.cfg.schema != nil {
		res := v.cfg.schema.Validate(l.claims.Features, l.claims.Metadata)
		if !res.Valid {
			return invalidSchema(res.Errors, res.Err())
		}
	}
	return active(l)
}

// statusFromError maps a verification or construction failure to a state.
func statusFromError(err error) Status {
	var cerr *ClaimsError
	if errors.As(err, &cerr) {
		return invalidSchema(cerr.Errors, err)
	}
	if isSignatureFailure(err) {
		return invalidSignature(err)
	}
	return failed(err.Error(), err)
}

// run executes one validation pass, converting panics to StateError and
// recording the outcome.
func (v *Validator) run(fn func() Status) (st Status) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			st = failed("unexpected failure during validation", err)
		}
		v.cfg.metrics.ObserveValidation(st.State, time.Since(start))
		v.log(st)
	}()
	return fn()
}

func (v *Validator) log(st Status) {
	fields := logrus.Fields{"state": st.State.String()}
	if st.License != nil {
		fields["license_id"] = st.License.ID()
		fields["app_id"] = st.License.AppID()
	}
	entry := v.cfg.logger.WithFields(fields)

	switch st.State {
	case StateActive, StateNoLicense:
		entry.Debug("license validated")
	case StateError:
		entry.WithError(st.Err).Error("license validation failed")
	default:
		entry.WithError(st.Err).Warn("license rejected")
	}
}
