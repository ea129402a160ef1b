package licensekit

import "fmt"

// State identifies the outcome of a validation.
type State int

const (
	StateNoLicense State = iota
	StateActive
	StateExpired
	StateInvalidSignature
	StateInvalidSchema
	StateError
)

func (s State) String() string {
	switch s {
	case StateNoLicense:
		return "no_license"
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	case StateInvalidSignature:
		return "invalid_signature"
	case StateInvalidSchema:
		return "invalid_schema"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Status is the result of one validation pass.
//
// License is set for StateActive and StateExpired. Errors is set for
// StateInvalidSchema. Message is set for StateError. Err carries the cause
// of every failing state.
type Status struct {
	State   State
	License *License
	Errors  map[string][]string
	Message string
	Err     error
}

// Valid reports whether the license may be used.
func (s Status) Valid() bool {
	return s.State == StateActive
}

func (s Status) String() string {
	switch s.State {
	case StateActive, StateExpired:
		return fmt.Sprintf("%s(%s)", s.State, s.License.ID())
	case StateInvalidSchema:
		return fmt.Sprintf("%s(%d fields)", s.State, len(s.Errors))
	case StateError:
		return fmt.Sprintf("%s(%s)", s.State, s.Message)
	}
	return s.State.String()
}

func noLicense() Status {
	return Status{State: StateNoLicense}
}

func active(l *License) Status {
	return Status{State: StateActive, License: l}
}

func expired(l *License) Status {
	return Status{State: StateExpired, License: l, Err: fmt.Errorf("license %s expired at %s", l.ID(), l.ExpiresAt())}
}

func invalidSignature(err error) Status {
	return Status{State: StateInvalidSignature, Err: err}
}

func invalidSchema(errs map[string][]string, err error) Status {
	return Status{State: StateInvalidSchema, Errors: errs, Err: err}
}

func failed(msg string, err error) Status {
	return Status{State: StateError, Message: msg, Err: err}
}
