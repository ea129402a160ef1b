package legacy

import (
	"errors"

	"github.com/licensekit/licensekit-go/internal/crypto"
)

var (
	// ErrCurveMismatch is returned when two keys do not share every domain
	// parameter of their curve.
	ErrCurveMismatch = errors.New("curve mismatch")

	// ErrPadding is returned when CBC plaintext padding is malformed.
	ErrPadding = crypto.ErrPadding

	// ErrMalformedSignature is returned when a DER signature cannot be parsed.
	ErrMalformedSignature = errors.New("malformed signature")

	// ErrSignatureInvalid is returned when a legacy signature does not verify.
	ErrSignatureInvalid = errors.New("signature invalid")

	// ErrMalformedEnvelope is returned when a hybrid or signed envelope cannot
	// be decoded.
	ErrMalformedEnvelope = errors.New("malformed envelope")

	// ErrDecryptionFailed is returned when a hybrid envelope does not
	// authenticate.
	ErrDecryptionFailed = errors.New("envelope decryption failed")
)
