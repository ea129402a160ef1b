package paseto

import "errors"

var (
	// ErrMalformedToken is returned when a token cannot be split or decoded.
	ErrMalformedToken = errors.New("malformed token")

	// ErrHeaderMismatch is returned when the version or purpose of a token is
	// not the one the operation expects.
	ErrHeaderMismatch = errors.New("token header mismatch")

	// ErrSignatureInvalid is returned when a v4.public signature does not
	// verify.
	ErrSignatureInvalid = errors.New("token signature invalid")

	// ErrDecryptionFailed is returned when a v4.local authentication tag does
	// not verify. No plaintext is produced in that case.
	ErrDecryptionFailed = errors.New("token decryption failed")

	// ErrFooterMismatch is returned when a caller supplies an expected footer
	// and the token carries a different one.
	ErrFooterMismatch = errors.New("token footer mismatch")
)
