package keys

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKeyFormat is returned when key material is malformed or does not
	// match the expected kind or curve.
	ErrKeyFormat = errors.New("malformed key")

	// ErrUnsupportedKey is returned when an operation is given a key of the
	// wrong kind, such as a legacy key where an Ed25519 key is required.
	ErrUnsupportedKey = errors.New("unsupported key type")

	// ErrUseAfterDispose is returned when a disposed key is used.
	ErrUseAfterDispose = errors.New("key has been disposed")

	// ErrPublicKeyMismatch is returned when the public half supplied with a
	// private key does not match the public key derived from it.
	ErrPublicKeyMismatch = errors.New("public key does not match private key")

	// ErrNilKey is returned when a nil key is passed.
	ErrNilKey = errors.New("key is nil")
)

// FormatError describes why key material could not be imported.
type FormatError struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s key: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %s key: %s", e.Kind, e.Reason)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *FormatError) Is(target error) bool {
	return target == ErrKeyFormat
}

// KindError is returned when an operation receives a key of the wrong kind.
type KindError struct {
	Op   string
	Want []Kind
	Got  Kind
}

func (e *KindError) Error() string {
	want := make([]string, len(e.Want))
	for i, k := range e.Want {
		want[i] = k.String()
	}
	return fmt.Sprintf("%s requires a %s key, got %s", e.Op, strings.Join(want, " or "), e.Got)
}

// Is implements errors.Is for sentinel error matching.
func (e *KindError) Is(target error) bool {
	return target == ErrUnsupportedKey
}
