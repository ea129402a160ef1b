package paserk

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned when a PASERK string cannot be decoded.
	ErrMalformed = errors.New("malformed paserk")

	// ErrWrongType is returned when a PASERK of one type is passed where
	// another is expected.
	ErrWrongType = errors.New("wrong paserk type")

	// ErrWrongPassword is returned when a password-wrapped key does not
	// authenticate under the supplied password.
	ErrWrongPassword = errors.New("wrong password")

	// ErrCorruptWrapping is returned when a wrapped or sealed key is
	// structurally invalid or does not authenticate under the unwrapping key.
	ErrCorruptWrapping = errors.New("corrupt key wrapping")
)

// TypeError reports a PASERK whose header is not the expected one.
type TypeError struct {
	Want []Type
	Got  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("paserk type %q, want %v", e.Got, e.Want)
}

// Is implements errors.Is for sentinel error matching.
func (e *TypeError) Is(target error) bool {
	return target == ErrWrongType
}
