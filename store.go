package licensekit

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Storage persists opaque license bytes. Implementations report success
// only; the reason for a failure is theirs to log.
type Storage interface {
	Save(data []byte) bool
	Load() ([]byte, bool)
	Exists() bool
	Delete() bool
}

// Store keeps one license in a Storage and validates it on load.
type Store struct {
	storage   Storage
	validator *Validator
}

// NewStore returns a Store over s using v to validate loaded licenses.
// It panics if s or v is nil.
func NewStore(s Storage, v *Validator) *Store {
	if s == nil || v == nil {
		panic("licensekit: NewStore requires a storage and a validator")
	}
	return &Store{storage: s, validator: v}
}

// Save writes l in a license container.
func (s *Store) Save(l *License) error {
	if l == nil {
		return fmt.Errorf("save license: %w", ErrNoLicense)
	}
	mode := ContainerToken
	if l.Legacy() {
		mode = ContainerPayload
	}
	data, err := EncodeContainer(mode, []byte(l.token))
	if err != nil {
		return fmt.Errorf("save license: %w", err)
	}
	if !s.storage.Save(data) {
		return fmt.Errorf("save license %s: %w", l.ID(), ErrStorage)
	}
	s.validator.cfg.logger.WithFields(logrus.Fields{
		"license_id": l.ID(),
		"app_id":     l.AppID(),
	}).Debug("license saved")
	return nil
}

// Load reads and validates the stored license. Nothing stored yields
// StateNoLicense; an unreadable container yields StateError.
func (s *Store) Load() Status {
	if !s.storage.Exists() {
		return s.validator.ValidateLicense(nil)
	}
	data, ok := s.storage.Load()
	if !ok {
		return s.validator.run(func() Status {
			return failed("license storage could not be read", ErrStorage)
		})
	}
	c, err := DecodeContainer(data)
	if err != nil {
		return s.validator.run(func() Status {
			return failed("stored license is not a valid container", err)
		})
	}
	return s.validator.Validate(string(c.Data))
}

// Exists reports whether a license is stored.
func (s *Store) Exists() bool {
	return s.storage.Exists()
}

// Remove deletes the stored license.
func (s *Store) Remove() error {
	if !s.storage.Delete() {
		return fmt.Errorf("remove license: %w", ErrStorage)
	}
	return nil
}
