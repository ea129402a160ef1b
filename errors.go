package licensekit

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/licensekit/licensekit-go/keys"
	"github.com/licensekit/licensekit-go/legacy"
	"github.com/licensekit/licensekit-go/paserk"
	"github.com/licensekit/licensekit-go/paseto"
	"github.com/licensekit/licensekit-go/schema"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrLicenseFormat is returned when a license container cannot be decoded.
	ErrLicenseFormat = errors.New("invalid license format")

	// ErrInvalidClaims is returned when license claims break a construction
	// rule, such as a malformed app_id or type.
	ErrInvalidClaims = errors.New("invalid license claims")

	// ErrNoLicense is returned by Store operations when nothing is stored.
	ErrNoLicense = errors.New("no license")

	// ErrStorage is returned when the storage collaborator reports failure.
	ErrStorage = errors.New("license storage failed")
)

// Errors of the lower layers, re-exported so callers only need this package.
var (
	ErrKeyFormat          = keys.ErrKeyFormat
	ErrUnsupportedKey     = keys.ErrUnsupportedKey
	ErrUseAfterDispose    = keys.ErrUseAfterDispose
	ErrMalformedToken     = paseto.ErrMalformedToken
	ErrHeaderMismatch     = paseto.ErrHeaderMismatch
	ErrSignatureInvalid   = paseto.ErrSignatureInvalid
	ErrDecryptionFailed   = paseto.ErrDecryptionFailed
	ErrWrongPassword      = paserk.ErrWrongPassword
	ErrCorruptWrapping    = paserk.ErrCorruptWrapping
	ErrCurveMismatch      = legacy.ErrCurveMismatch
	ErrMalformedSignature = legacy.ErrMalformedSignature
	ErrPadding            = legacy.ErrPadding
	ErrSchema             = schema.ErrSchema
)

// FormatError describes why license bytes could not be decoded.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid license format: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid license format: %s", e.Reason)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *FormatError) Is(target error) bool {
	return target == ErrLicenseFormat
}

// ClaimsError lists the claims that break construction rules, keyed by
// JSON field name.
type ClaimsError struct {
	Errors map[string][]string
}

func (e *ClaimsError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f, strings.Join(e.Errors[f], ", "))
	}
	return fmt.Sprintf("invalid license claims: %s", strings.Join(parts, "; "))
}

// Is implements errors.Is for sentinel error matching.
func (e *ClaimsError) Is(target error) bool {
	return target == ErrInvalidClaims
}

func (e *ClaimsError) add(field, msg string) {
	if e.Errors == nil {
		e.Errors = make(map[string][]string)
	}
	e.Errors[field] = append(e.Errors[field], msg)
}

// errOrNil returns e as an error only when it holds entries.
func (e *ClaimsError) errOrNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// isSignatureFailure reports whether err means the credential was not
// produced by the holder of the expected key.
func isSignatureFailure(err error) bool {
	return errors.Is(err, paseto.ErrSignatureInvalid) ||
		errors.Is(err, paseto.ErrDecryptionFailed) ||
		errors.Is(err, paseto.ErrMalformedToken) ||
		errors.Is(err, paseto.ErrHeaderMismatch) ||
		errors.Is(err, paseto.ErrFooterMismatch) ||
		errors.Is(err, legacy.ErrSignatureInvalid) ||
		errors.Is(err, legacy.ErrMalformedSignature) ||
		errors.Is(err, legacy.ErrMalformedEnvelope)
}
